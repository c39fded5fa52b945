package chain

import (
	"math/big"

	"github.com/hashvote/hashvote/pkg/types"
)

// difficultyShift is the fixed constant k in target(N) = maxTarget >>
// (k * ceil(log2(N+1))).
const difficultyShift = 4

// maxTargetInt is 2^256 - 1, the easiest possible target.
var maxTargetInt = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MaxTarget is the easiest possible target, used for the genesis block
// and as the ceiling that TargetForMinerCount shifts down from.
var MaxTarget = bigToHash(maxTargetInt)

// TargetForMinerCount computes the single target the coordinator hands
// to every miner at the start of a round, as a function of the number
// of currently-connected miners: harder target for more miners.
// A count below one is treated as one, so an empty or single-miner
// deployment sits at the easiest tier rather than at no difficulty at
// all.
func TargetForMinerCount(n int) types.Hash {
	if n < 1 {
		n = 1
	}
	shift := uint(difficultyShift * ceilLog2(n+1))
	t := new(big.Int).Rsh(maxTargetInt, shift)
	return bigToHash(t)
}

// ceilLog2 returns ceil(log2(n)) for n >= 1.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	bits := 0
	v := n - 1
	for v > 0 {
		v >>= 1
		bits++
	}
	return bits
}

func bigToHash(v *big.Int) types.Hash {
	var h types.Hash
	b := v.Bytes()
	if len(b) > len(h) {
		b = b[len(b)-len(h):]
	}
	copy(h[len(h)-len(b):], b)
	return h
}
