package vmm

import "corekernel/kernel/mem"

// levelIndex extracts the n-th level index (1 = closest to the page offset,
// levelCount = topmost) from a virtual address.
func levelIndex(va uintptr, n int) uintptr {
	shift := uint(mem.PageShift) + uint(n-1)*entryBits
	return (va >> shift) & (entriesPerTable - 1)
}

// tableAddr computes the virtual address of the table that, at the given
// level, holds the entry governing va. level == levelCount returns the
// address of the root table itself (the recursive self-map). level == 0 is
// not a table address; callers treat it as va itself.
//
// The formula is the standard recursive self-map trick generalized to an
// arbitrary hierarchy depth: the top `level` index fields are all set to
// recursiveIndex, and the remaining fields copy va's own index bits for the
// levels above the one being addressed. This lets the same code serve both
// the 2-level i386 hierarchy and the 4-level amd64 one; see the repository's
// design notes for why this replaces a typed per-level hierarchy.
func tableAddr(level int, va uintptr) uintptr {
	var addr uintptr
	for j := levelCount; j >= 1; j-- {
		var field uintptr
		if j > levelCount-level {
			field = recursiveIndex
		} else {
			field = levelIndex(va, level+j)
		}
		addr = (addr << entryBits) | field
	}
	addr <<= uint(mem.PageShift)
	return canonicalize(addr)
}
