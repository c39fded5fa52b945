package block

import (
	"errors"
	"fmt"

	"github.com/hashvote/hashvote/pkg/types"
)

// Structural validation errors. These cover everything that can be
// checked from the block alone, without chain or UTXO context; parent
// linkage, per-transaction UTXO checks and the coinbase amount live in
// the chain validator.
var (
	ErrNilHeader        = errors.New("block has nil header")
	ErrBadVersion       = errors.New("unsupported block header version")
	ErrZeroTime         = errors.New("block time is zero")
	ErrNoTransactions   = errors.New("block has no transactions")
	ErrNoCoinbase       = errors.New("first transaction must be the coinbase")
	ErrMultipleCoinbase = errors.New("block has more than one coinbase transaction")
	ErrBadMerkleRoot    = errors.New("merkle root does not match transactions")
	ErrInsufficientWork = errors.New("header hash does not meet target")
)

// Validate checks everything about a block that can be verified without
// consulting the chain or a UTXO snapshot: header well-formedness, the
// proof-of-work condition, coinbase placement and count, the merkle
// root, and per-transaction structural validity.
func (b *Block) Validate() error {
	if b.Header == nil {
		return ErrNilHeader
	}
	if b.Header.Version != HeaderVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrBadVersion, b.Header.Version, HeaderVersion)
	}
	if b.Header.Time == 0 {
		return ErrZeroTime
	}
	if !b.Header.MeetsTarget() {
		return ErrInsufficientWork
	}
	if len(b.Transactions) == 0 {
		return ErrNoTransactions
	}
	if !b.Transactions[0].IsCoinbase() {
		return ErrNoCoinbase
	}
	for i, t := range b.Transactions[1:] {
		if t.IsCoinbase() {
			return fmt.Errorf("tx %d: %w", i+1, ErrMultipleCoinbase)
		}
	}

	txHashes := make([]types.Hash, len(b.Transactions))
	for i, t := range b.Transactions {
		txHashes[i] = t.Hash()
	}
	want := ComputeMerkleRoot(txHashes)
	if b.Header.MerkleRoot != want {
		return fmt.Errorf("%w: header=%s computed=%s", ErrBadMerkleRoot, b.Header.MerkleRoot, want)
	}

	for i, t := range b.Transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tx %d: %w", i, err)
		}
	}

	return nil
}
