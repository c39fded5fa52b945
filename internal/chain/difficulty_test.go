package chain

import "testing"

func TestTargetForMinerCount_MonotonicallyHarder(t *testing.T) {
	prev := MaxTarget
	for _, n := range []int{0, 1, 2, 3, 4, 8, 16, 100} {
		target := TargetForMinerCount(n)
		if cmpHash(target, prev) > 0 {
			t.Fatalf("target for N=%d is easier than a smaller miner count", n)
		}
		prev = target
	}
}

func TestTargetForMinerCount_ZeroAndOneAreEasiest(t *testing.T) {
	t0 := TargetForMinerCount(0)
	t1 := TargetForMinerCount(1)
	if t0 != t1 {
		t.Errorf("N=0 and N=1 should yield the same (lowest difficulty) target")
	}
}

func TestCeilLog2(t *testing.T) {
	cases := map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4}
	for n, want := range cases {
		if got := ceilLog2(n); got != want {
			t.Errorf("ceilLog2(%d) = %d, want %d", n, got, want)
		}
	}
}

// cmpHash compares two hashes as big-endian integers: -1, 0, 1.
func cmpHash(a, b [32]byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
