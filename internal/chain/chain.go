// Package chain implements the in-memory blockchain engine: genesis,
// UTXO maintenance, block/chain validation, the difficulty schedule,
// and longest-valid-chain election. It holds no network or concurrency
// concerns of its own; Chain is mutex-guarded by its owner (a miner or
// the coordinator).
package chain

import (
	"fmt"

	"github.com/hashvote/hashvote/pkg/block"
	"github.com/hashvote/hashvote/pkg/tx"
)

// Chain is an owned, in-memory copy of the blockchain plus its derived
// UTXO set. Nothing is persisted; loss on process exit is acceptable.
type Chain struct {
	blocks []*block.Block
	utxo   UTXOSet
}

// New returns a chain containing only the genesis block.
func New() *Chain {
	return &Chain{
		blocks: []*block.Block{Genesis()},
		utxo:   NewUTXOSet(),
	}
}

// Tip returns the current last block.
func (c *Chain) Tip() *block.Block {
	return c.blocks[len(c.blocks)-1]
}

// Height returns the number of blocks in the chain, genesis included.
func (c *Chain) Height() int {
	return len(c.blocks)
}

// Blocks returns a copy of the chain's blocks, safe for the caller to
// retain and send over the wire.
func (c *Chain) Blocks() []*block.Block {
	out := make([]*block.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// UTXOSnapshot returns a copy of the current UTXO set, safe to validate
// transactions against without risk of a concurrent mutation.
func (c *Chain) UTXOSnapshot() UTXOSet {
	return c.utxo.Clone()
}

// Append validates blk against the current tip and UTXO set and, on
// success, appends it and applies its effects to the UTXO set.
func (c *Chain) Append(blk *block.Block) error {
	next, err := ValidateBlock(c.Tip(), c.utxo, blk, BlockReward)
	if err != nil {
		return err
	}
	c.blocks = append(c.blocks, blk)
	c.utxo = next
	return nil
}

// Replace validates candidate wholesale and, if it validates, replaces
// this chain's blocks and UTXO set with it. Used for join/integrity/
// chain-message handling, never for a single block append.
func (c *Chain) Replace(candidate []*block.Block) error {
	utxo, err := ValidateChain(candidate, BlockReward)
	if err != nil {
		return fmt.Errorf("replace chain: %w", err)
	}
	c.blocks = append([]*block.Block(nil), candidate...)
	c.utxo = utxo
	return nil
}

// SpentByBlock returns the transactions that blk consumes
// from a mempool, i.e. every transaction it carries except the
// coinbase (which never lived in the pool).
func SpentByBlock(blk *block.Block) []*tx.Transaction {
	if len(blk.Transactions) <= 1 {
		return nil
	}
	return blk.Transactions[1:]
}
