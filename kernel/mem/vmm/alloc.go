package vmm

import "corekernel/kernel"
import "corekernel/kernel/mem"
import "corekernel/kernel/mem/pmm"

var errOutOfVirtualSpace = &kernel.Error{Module: "vmm", Message: "heap: no free virtual address range large enough for this request"}

// probe inspects the mapping state at virtAddr without creating any missing
// table, returning how many pages are covered by what it found and whether
// that span is mapped. When an intermediate table is absent, the entire
// subtree below it is necessarily unmapped, so probe reports the whole
// subtree's page count at once instead of being walked page by page.
func probe(virtAddr uintptr) (pages uintptr, used bool) {
	for level := levelCount; level > 1; level-- {
		parent := tableAt(tableAddr(level, virtAddr))
		if !parent[levelIndex(virtAddr, level)].present() {
			return uintptr(1) << uint(entryBits*(level-1)), false
		}
	}

	leaf := tableAt(tableAddr(1, virtAddr))
	return 1, leaf[levelIndex(virtAddr, 1)].present()
}

// findFreeRange sweeps the kernel heap's virtual address range looking for
// `pages` contiguous unmapped pages, using two running counters: the start
// of the current candidate run and its accumulated length.
func findFreeRange(pages uintptr) (uintptr, error) {
	addr := heapStart
	end := heapStart + heapSize

	var runStart uintptr
	var runLen uintptr

	for addr < end {
		skip, used := probe(addr)
		if used {
			addr += skip * uintptr(mem.PageSize)
			runLen = 0
			continue
		}

		if runLen == 0 {
			runStart = addr
		}
		runLen += skip
		addr += skip * uintptr(mem.PageSize)

		if runLen >= pages {
			return runStart, nil
		}
	}

	return 0, errOutOfVirtualSpace
}

func pageCount(size mem.Size) uintptr {
	return uintptr((size + mem.PageSize - 1) / mem.PageSize)
}

// EarlyReserveRegion finds size bytes' worth of free virtual address space
// and returns its start address without mapping any frames into it. It
// exists for kernel/goruntime, which must hand the Go allocator an address
// range before any backing memory is committed (runtime.sysReserve).
//
// Because this kernel tracks "free" purely as "unmapped" (there is no
// separate reservation bitmap), the returned range only stays exclusively
// ours as long as nothing else calls Allocate before the caller finishes
// mapping it in. That holds for every caller in this kernel: sysReserve only
// ever runs single-threaded during early runtime bootstrap.
func EarlyReserveRegion(size mem.Size) (uintptr, error) {
	return findFreeRange(pageCount(size))
}

// Allocate reserves size bytes of virtual address space backed by
// (not necessarily physically contiguous) frames, and returns its start
// address.
func Allocate(size mem.Size) (uintptr, error) {
	pages := pageCount(size)
	addr, err := findFreeRange(pages)
	if err != nil {
		return 0, err
	}

	for i := uintptr(0); i < pages; i++ {
		frame, err := pmm.AllocFrame()
		if err != nil {
			return 0, err
		}
		if err := Map(addr+i*uintptr(mem.PageSize), frame, true); err != nil {
			return 0, err
		}
	}

	return addr, nil
}

// AllocateContiguous behaves like Allocate but additionally guarantees that
// the backing frames are physically contiguous, for use by code (such as DMA
// buffers) that needs a single physical run.
func AllocateContiguous(size mem.Size) (uintptr, error) {
	pages := pageCount(size)
	addr, err := findFreeRange(pages)
	if err != nil {
		return 0, err
	}

	firstFrame, err := pmm.AllocFrames(int(pages))
	if err != nil {
		return 0, err
	}

	for i := uintptr(0); i < pages; i++ {
		frame := pmm.Frame(uint64(firstFrame) + uint64(i))
		if err := Map(addr+i*uintptr(mem.PageSize), frame, true); err != nil {
			return 0, err
		}
	}

	return addr, nil
}

// Free releases the mapping and backing frames for a range previously
// returned by Allocate or AllocateContiguous. Intermediate tables are never
// reclaimed; only leaf frames are returned to the physical allocator, so
// repeated allocate/free cycles grow the table footprint monotonically but
// never shrink it.
func Free(addr uintptr, size mem.Size) error {
	pages := pageCount(size)
	for i := uintptr(0); i < pages; i++ {
		va := addr + i*uintptr(mem.PageSize)
		frame, err := Translate(va)
		if err != nil {
			continue
		}
		Unmap(va)
		if err := pmm.FreeFrame(frame); err != nil {
			return err
		}
	}
	return nil
}
