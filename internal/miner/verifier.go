package miner

import (
	"github.com/hashvote/hashvote/internal/chain"
	"github.com/hashvote/hashvote/pkg/block"
)

// Verifier decides whether a candidate block proposed by another miner
// should receive a yes vote. Swapping the verifier is the whole of the
// honest/selfish strategy hook: just a different value at miner
// startup.
type Verifier interface {
	Verify(tip *block.Block, utxo chain.UTXOSet, blk *block.Block) bool
}

// HonestVerifier runs full block validation against the miner's local
// chain state and votes yes iff it passes.
type HonestVerifier struct{}

// Verify implements Verifier.
func (HonestVerifier) Verify(tip *block.Block, utxo chain.UTXOSet, blk *block.Block) bool {
	_, err := chain.ValidateBlock(tip, utxo, blk, chain.BlockReward)
	return err == nil
}

// SelfishVerifier always rejects every foreign block, without running
// validation at all. Once half or more of the connected miners are
// selfish, no honest proposal can gain a strict majority and the chain
// stops growing.
type SelfishVerifier struct{}

// Verify implements Verifier.
func (SelfishVerifier) Verify(*block.Block, chain.UTXOSet, *block.Block) bool {
	return false
}
