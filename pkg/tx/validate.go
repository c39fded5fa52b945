package tx

import (
	"errors"
	"fmt"

	"github.com/hashvote/hashvote/pkg/types"
)

// Protocol-level structural limits. Not mandated by the data model
// itself, but needed to bound resource use against a malicious peer.
const (
	MaxTxInputs    = 4096
	MaxTxOutputs   = 4096
	MaxOutputData  = 64 * 1024
	MaxTxSizeBytes = 1024 * 1024
)

// Validation errors.
var (
	ErrNoOutputs          = errors.New("transaction has no outputs")
	ErrDuplicateInput     = errors.New("duplicate input")
	ErrOutputOverflow     = errors.New("output values overflow")
	ErrMixedOutput        = errors.New("output has both a nonzero amount and a data payload")
	ErrMissingPubKey      = errors.New("input missing public key")
	ErrMissingSig         = errors.New("input missing signature")
	ErrInvalidSig         = errors.New("invalid signature")
	ErrTooManyInputs      = errors.New("too many inputs")
	ErrTooManyOutputs     = errors.New("too many outputs")
	ErrOutputDataTooLarge = errors.New("output data too large")
	ErrCoinbaseHasInputs  = errors.New("coinbase transaction must have zero inputs")
)

// Validate checks transaction structure and the standalone rules that
// do not require a UTXO snapshot. It does not
// check UTXO existence, keyhash ownership, signatures, or the
// input/output balance — see ValidateWithUTXOs for those.
func (tx *Transaction) Validate() error {
	if len(tx.Outputs) == 0 {
		return ErrNoOutputs
	}
	if len(tx.Inputs) > MaxTxInputs {
		return fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(tx.Inputs), MaxTxInputs)
	}
	if len(tx.Outputs) > MaxTxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(tx.Outputs), MaxTxOutputs)
	}

	seen := make(map[types.Outpoint]bool, len(tx.Inputs))
	for i, in := range tx.Inputs {
		if seen[in.PrevOut] {
			return fmt.Errorf("input %d: %w", i, ErrDuplicateInput)
		}
		seen[in.PrevOut] = true
	}

	if !tx.IsCoinbase() {
		for i, in := range tx.Inputs {
			if len(in.PubKey) == 0 {
				return fmt.Errorf("input %d: %w", i, ErrMissingPubKey)
			}
			if len(in.Signature) == 0 {
				return fmt.Errorf("input %d: %w", i, ErrMissingSig)
			}
		}
	}

	var totalOutput uint64
	for i, out := range tx.Outputs {
		if out.IsData() {
			if out.Value != 0 {
				return fmt.Errorf("output %d: %w", i, ErrMixedOutput)
			}
			if len(out.Data) > MaxOutputData {
				return fmt.Errorf("output %d: %w: %d bytes, max %d", i, ErrOutputDataTooLarge, len(out.Data), MaxOutputData)
			}
			continue
		}
		if totalOutput+out.Value < totalOutput {
			return fmt.Errorf("output %d: %w", i, ErrOutputOverflow)
		}
		totalOutput += out.Value
	}

	return nil
}

// VerifySignatures checks that every non-coinbase input carries a
// signature valid over the canonical serialization of this
// transaction's outputs.
func (tx *Transaction) VerifySignatures() error {
	if tx.IsCoinbase() {
		return nil
	}
	hash := signingHash(tx)
	for i, in := range tx.Inputs {
		if !verifySignature(hash, in.Signature, in.PubKey) {
			return fmt.Errorf("input %d: %w", i, ErrInvalidSig)
		}
	}
	return nil
}
