package chain

import "github.com/hashvote/hashvote/pkg/block"

// LongestValid selects the longest chain among candidates that
// validates, breaking ties in favor of local (the chain the caller
// currently holds), for stability under idempotent retransmission. It
// returns (nil, false) if no candidate, including local, validates.
func LongestValid(candidates [][]*block.Block, local []*block.Block) ([]*block.Block, bool) {
	best := local
	bestOK := validates(local)
	var bestLen int
	if bestOK {
		bestLen = len(local)
	}

	for _, cand := range candidates {
		if !validates(cand) {
			continue
		}
		if !bestOK || len(cand) > bestLen {
			best = cand
			bestLen = len(cand)
			bestOK = true
		}
	}

	if !bestOK {
		return nil, false
	}
	return best, true
}

func validates(blocks []*block.Block) bool {
	_, err := ValidateChain(blocks, BlockReward)
	return err == nil
}
