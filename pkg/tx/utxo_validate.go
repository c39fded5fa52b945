package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashvote/hashvote/pkg/crypto"
	"github.com/hashvote/hashvote/pkg/types"
)

// UTXO-aware validation errors.
var (
	ErrInputNotFound   = errors.New("input UTXO not found")
	ErrInsufficientFee = errors.New("insufficient fee")
	ErrInputOverflow   = errors.New("input values overflow")
	ErrKeyHashMismatch = errors.New("pubkey does not hash to the UTXO's owner keyhash")
)

// UTXOProvider provides read-only access to a UTXO snapshot for
// transaction validation. Callers validating a block apply each
// transaction's effects to the snapshot before validating the next,
// so that an input spending an output produced earlier in the same
// block succeeds, and a double-spend within the block is rejected by
// GetUTXO returning false for an outpoint already consumed.
type UTXOProvider interface {
	GetUTXO(outpoint types.Outpoint) (Output, bool)
}

// ValidateWithUTXOs performs full validation of a transaction against a
// UTXO snapshot: every input exists and is unspent,
// the claimed pubkey hashes to the UTXO's owner keyhash, every
// signature verifies, and total input >= total output. Returns the
// fee (0 for a coinbase, which has no inputs to sum).
func (tx *Transaction) ValidateWithUTXOs(provider UTXOProvider) (uint64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	if tx.IsCoinbase() {
		return 0, nil
	}

	var totalInput uint64
	for i, in := range tx.Inputs {
		utxo, ok := provider.GetUTXO(in.PrevOut)
		if !ok {
			return 0, fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrInputNotFound)
		}

		if crypto.KeyHash(in.PubKey) != utxo.KeyHash {
			return 0, fmt.Errorf("input %d: %w", i, ErrKeyHashMismatch)
		}

		if totalInput > math.MaxUint64-utxo.Value {
			return 0, fmt.Errorf("input %d: %w", i, ErrInputOverflow)
		}
		totalInput += utxo.Value
	}

	if err := tx.VerifySignatures(); err != nil {
		return 0, err
	}

	totalOutput, err := tx.TotalNumericOutputValue()
	if err != nil {
		return 0, fmt.Errorf("output overflow: %w", err)
	}
	if totalInput < totalOutput {
		return 0, fmt.Errorf("%w: inputs=%d outputs=%d", ErrInsufficientFee, totalInput, totalOutput)
	}

	return totalInput - totalOutput, nil
}

func signingHash(tx *Transaction) []byte {
	h := crypto.DoubleSha256(tx.SigningBytes())
	return h[:]
}

func verifySignature(hash []byte, signature, pubKey []byte) bool {
	return crypto.VerifySignature(hash, signature, pubKey)
}
