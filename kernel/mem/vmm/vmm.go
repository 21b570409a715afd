// Package vmm implements the recursively self-mapped paging hierarchy and
// the virtual-memory allocator that serves the kernel's heap out of it.
package vmm

import (
	"unsafe"

	"corekernel/kernel"
	"corekernel/kernel/cpu"
	"corekernel/kernel/mem"
	"corekernel/kernel/mem/pmm"
)

var (
	errMapFailed   = &kernel.Error{Module: "vmm", Message: "Map: out of physical memory while creating a page table"}
	errNotMapped   = &kernel.Error{Module: "vmm", Message: "Translate: address is not mapped"}
)

func tableAt(virtAddr uintptr) *[entriesPerTable]pteEntry {
	return (*[entriesPerTable]pteEntry)(unsafe.Pointer(virtAddr))
}

// Init installs the recursive self-map entry into the currently active root
// table. It must run once, early in boot, after the root table's physical
// frame has been allocated and loaded into CR3 but before any other code in
// this package is used.
func Init(rootTablePhysAddr uintptr) {
	root := tableAt(tableAddr(levelCount, 0))
	root[recursiveIndex].setFrame(pmm.Frame(rootTablePhysAddr>>mem.PageShift), true)
	cpu.FlushTLBEntry(tableAddr(levelCount, 0))
}

// Map installs a mapping from virtAddr to frame, creating any missing
// intermediate tables along the way. Existing intermediate tables are left
// untouched; only the final level-1 entry is overwritten if already present.
func Map(virtAddr uintptr, frame pmm.Frame, writable bool) error {
	for level := levelCount; level > 1; level-- {
		parent := tableAt(tableAddr(level, virtAddr))
		idx := levelIndex(virtAddr, level)

		if !parent[idx].present() {
			childFrame, err := pmm.AllocFrame()
			if err != nil {
				return errMapFailed
			}
			parent[idx].setFrame(childFrame, true)

			// The child table's recursive address only becomes
			// dereferencable once the parent entry above is
			// present; zero it now that it is.
			mem.Memset(tableAddr(level-1, virtAddr), 0, mem.PageSize)
		}
	}

	leaf := tableAt(tableAddr(1, virtAddr))
	leaf[levelIndex(virtAddr, 1)].setFrame(frame, writable)
	cpu.FlushTLBEntry(virtAddr)
	return nil
}

// Unmap clears the mapping at virtAddr. It is a no-op if any intermediate
// table on the path is absent; this kernel never reclaims intermediate
// tables, so Unmap only ever removes the leaf entry (see the growth-only
// note where Free calls this).
func Unmap(virtAddr uintptr) {
	for level := levelCount; level > 1; level-- {
		parent := tableAt(tableAddr(level, virtAddr))
		if !parent[levelIndex(virtAddr, level)].present() {
			return
		}
	}

	leaf := tableAt(tableAddr(1, virtAddr))
	leaf[levelIndex(virtAddr, 1)].clear()
	cpu.FlushTLBEntry(virtAddr)
}

// Translate returns the physical frame backing virtAddr, if any.
func Translate(virtAddr uintptr) (pmm.Frame, error) {
	for level := levelCount; level > 1; level-- {
		parent := tableAt(tableAddr(level, virtAddr))
		if !parent[levelIndex(virtAddr, level)].present() {
			return pmm.InvalidFrame, errNotMapped
		}
	}

	leaf := tableAt(tableAddr(1, virtAddr))
	entry := leaf[levelIndex(virtAddr, 1)]
	if !entry.present() {
		return pmm.InvalidFrame, errNotMapped
	}
	return entry.frame(), nil
}
