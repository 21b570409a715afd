package vmm

import (
	"testing"

	"corekernel/kernel/mem"
)

func TestLevelIndexExtractsDisjointBits(t *testing.T) {
	// Setting only the bits belonging to level n must leave every other
	// level's index at zero.
	for n := 1; n <= levelCount; n++ {
		va := uintptr(3) << (uint(mem.PageShift) + uint(n-1)*entryBits)
		for m := 1; m <= levelCount; m++ {
			got := levelIndex(va, m)
			if m == n {
				if got != 3 {
					t.Fatalf("level %d: got index %d, want 3", m, got)
				}
			} else if got != 0 {
				t.Fatalf("level %d leaked bits from level %d: got %d", m, n, got)
			}
		}
	}
}

func TestTableAddrRootIsVaIndependent(t *testing.T) {
	a := tableAddr(levelCount, 0)
	b := tableAddr(levelCount, ^uintptr(0))
	if a != b {
		t.Fatalf("root table address depends on va: %x vs %x", a, b)
	}
}

func TestTableAddrUsesRecursiveIndexAtEveryLevel(t *testing.T) {
	va := uintptr(0x1234000)
	for level := 1; level < levelCount; level++ {
		addr := tableAddr(level, va)
		// The topmost index field of the computed address must be
		// recursiveIndex for every level strictly below the root.
		top := levelIndex(addr, levelCount)
		if top != recursiveIndex {
			t.Fatalf("level %d: top index = %d, want recursiveIndex %d", level, top, recursiveIndex)
		}
	}
}
