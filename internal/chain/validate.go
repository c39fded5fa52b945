package chain

import (
	"errors"
	"fmt"

	"github.com/hashvote/hashvote/pkg/block"
)

// Chain/UTXO-context validation errors. Structural errors (nil header,
// bad merkle root, PoW failure, coinbase placement) come from
// block.Block.Validate and are wrapped here.
var (
	ErrBadParentHash = errors.New("block parent_hash does not match chain tip")
	ErrBadCoinbase   = errors.New("coinbase output does not equal reward plus fees")
	ErrEmptyChain    = errors.New("chain is empty")
	ErrBadGenesis    = errors.New("chain does not start with the agreed genesis block")
)

// ValidateBlock checks blk against the chain's current tip and a UTXO
// snapshot taken at that tip: proof of work, parent linkage, merkle
// root, coinbase placement and arithmetic, and every transaction
// applied left to right so earlier in-block outputs are spendable
// later. On success it returns the UTXO set that results from
// applying blk, leaving the input snapshot untouched.
func ValidateBlock(tip *block.Block, utxo UTXOSet, blk *block.Block, reward uint64) (UTXOSet, error) {
	if err := blk.Validate(); err != nil {
		return nil, err
	}

	wantParent := tip.Hash()
	if blk.Header.ParentHash != wantParent {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrBadParentHash, blk.Header.ParentHash, wantParent)
	}

	next := utxo.Clone()
	var totalFees uint64
	coinbase := blk.Transactions[0]
	for i, t := range blk.Transactions[1:] {
		fee, err := t.ValidateWithUTXOs(next)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i+1, err)
		}
		next.Apply(t)
		totalFees += fee
	}

	want := reward + totalFees
	got, err := coinbase.TotalNumericOutputValue()
	if err != nil {
		return nil, fmt.Errorf("coinbase: %w", err)
	}
	if got != want {
		return nil, fmt.Errorf("%w: got %d, want %d (reward %d + fees %d)", ErrBadCoinbase, got, want, reward, totalFees)
	}
	next.Apply(coinbase)

	return next, nil
}

// ValidateChain replays blocks from genesis, validating each one in
// turn and rebuilding the UTXO set. The chain is valid iff every block
// validates and blocks[0] is the agreed genesis constant.
func ValidateChain(blocks []*block.Block, reward uint64) (UTXOSet, error) {
	if len(blocks) == 0 {
		return nil, ErrEmptyChain
	}
	if !IsGenesis(blocks[0]) {
		return nil, ErrBadGenesis
	}

	utxo := NewUTXOSet()
	for i := 1; i < len(blocks); i++ {
		next, err := ValidateBlock(blocks[i-1], utxo, blocks[i], reward)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		utxo = next
	}
	return utxo, nil
}
