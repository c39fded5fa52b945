package chain

import (
	"github.com/hashvote/hashvote/pkg/block"
	"github.com/hashvote/hashvote/pkg/types"
)

// BlockReward is the fixed coinbase reward paid to the miner of a block,
// on top of the sum of transaction fees it collects.
const BlockReward = 50 * 100000000 // 50 BTC-equivalent, in satoshis

// Genesis returns the fixed genesis block every participant must agree
// on: all-zeros parent hash, no transactions (so an all-zeros merkle
// root), and the easiest possible target. It is a fresh value each
// call; callers must not mutate the result in place.
func Genesis() *block.Block {
	header := &block.Header{
		Version:    block.HeaderVersion,
		ParentHash: types.Hash{},
		MerkleRoot: types.Hash{},
		Time:       0,
		Target:     MaxTarget,
		Nonce:      0,
	}
	return block.NewBlock(header, nil)
}

// IsGenesis reports whether blk is byte-identical to the agreed genesis
// constant.
func IsGenesis(blk *block.Block) bool {
	if blk == nil || blk.Header == nil {
		return false
	}
	return blk.Hash() == Genesis().Hash() && len(blk.Transactions) == 0
}
