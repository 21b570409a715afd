package pmm

import (
	"corekernel/kernel"
	"corekernel/kernel/hal/multiboot"
	"corekernel/kernel/mem"
	"corekernel/kernel/mem/bitmap"
	"corekernel/kernel/sync"
)

// bootstrapFrameCount is the number of frames tracked by the allocator
// before the real memory map has been parsed. It must be small enough that
// the backing array can live in .bss without relying on any memory that is
// itself managed by this allocator.
const bootstrapFrameCount = 2048

// reservedLowFrames is the number of frames at the bottom of physical memory
// that are never handed out; they hold the real-mode IVT, BIOS data area,
// and (on this kernel) the statically linked kernel image itself.
const reservedLowFrames = 1024

// maxTrackableFrames bounds the size of the full-memory-map bitmap's backing
// array; it covers 4GiB of RAM at 4KiB pages.
const maxTrackableFrames = 1 << 20

var bootstrapWords [bootstrapFrameCount / 64]uint64
var fullWords [maxTrackableFrames / 64]uint64

var (
	lock        sync.Spinlock
	bm          *bitmap.Bitmap
	freeCount   uint64
	totalFrames uint64
)

var (
	errOutOfMemory    = &kernel.Error{Module: "pmm", Message: "out of physical memory"}
	errOutOfContig    = &kernel.Error{Module: "pmm", Message: "out of contiguous physical memory"}
	errBadCount       = &kernel.Error{Module: "pmm", Message: "AllocFrames requires count > 0"}
	errFrameOOR       = &kernel.Error{Module: "pmm", Message: "FreeFrame: frame out of range"}
	errDoubleFree     = &kernel.Error{Module: "pmm", Message: "FreeFrame: double free"}
)

// InitBootstrapAllocator brings up a small, statically sized frame bitmap
// that is usable before the bootloader's memory map has been parsed. The
// first reservedLowFrames frames are marked used unconditionally.
func InitBootstrapAllocator() {
	lock.Acquire()
	defer lock.Release()

	bm = bitmap.New(bootstrapWords[:])
	bm.SetOnes(0, reservedLowFrames)
	totalFrames = uint64(bm.Len())
	freeCount = countFree(bm)
}

// InitFromMemoryMap replaces the bootstrap bitmap with one sized to the
// highest address reported by the Multiboot memory map. Every frame starts
// out used; frames covered by an available region are then freed; finally,
// every frame the bootstrap bitmap already had marked used (the reserved
// low frames, plus any frame AllocFrame/AllocFrames handed out between
// InitBootstrapAllocator and this call, e.g. for vmm.Init's page tables) is
// replayed back in, so that in-place update never forgets a phase-1
// allocation by blindly trusting a rebuild from the memory map alone.
func InitFromMemoryMap() {
	lock.Acquire()
	defer lock.Release()

	old := bm

	var highest uint64
	multiboot.VisitMemRegions(func(e *multiboot.MemoryMapEntry) bool {
		end := frameIndex(e.PhysAddress + e.Length)
		if end > highest {
			highest = end
		}
		return true
	})

	neededWords := (highest + 63) / 64
	if neededWords > uint64(len(fullWords)) {
		neededWords = uint64(len(fullWords))
	}
	if neededWords == 0 {
		neededWords = bootstrapFrameCount / 64
	}

	next := bitmap.New(fullWords[:neededWords])
	next.SetOnes(0, next.Len())

	multiboot.VisitMemRegions(func(e *multiboot.MemoryMapEntry) bool {
		if e.Type != multiboot.MemAvailable {
			return true
		}

		lo := frameIndex(e.PhysAddress)
		hi := frameIndex(e.PhysAddress + e.Length)
		if hi > uint64(next.Len()) {
			hi = uint64(next.Len())
		}
		if lo < hi {
			next.SetZeros(int(lo), int(hi))
		}
		return true
	})

	if old != nil {
		next.MergeUsedFrom(old)
	} else {
		// Defensive only: InitFromMemoryMap is always called after
		// InitBootstrapAllocator in kmain.Kmain, so old is never nil
		// in practice.
		reserved := reservedLowFrames
		if reserved > next.Len() {
			reserved = next.Len()
		}
		next.SetOnes(0, reserved)
	}

	bm = next
	totalFrames = uint64(bm.Len())
	freeCount = countFree(bm)
}

func frameIndex(physAddr uint64) uint64 {
	return physAddr >> mem.PageShift
}

func countFree(bm *bitmap.Bitmap) uint64 {
	var free uint64
	it := bm.ConsecutiveZeros(1)
	for {
		r, ok := it.Next()
		if !ok {
			return free
		}
		free += uint64(r.Len())
	}
}

// AllocFrame reserves and returns a single free frame.
func AllocFrame() (Frame, error) {
	lock.Acquire()
	defer lock.Release()

	it := bm.ConsecutiveZeros(1)
	r, ok := it.Next()
	if !ok {
		return InvalidFrame, errOutOfMemory
	}

	bm.SetOnes(r.Start, r.Start+1)
	freeCount--
	return Frame(r.Start), nil
}

// AllocFrames reserves count contiguous frames and returns the first one.
func AllocFrames(count int) (Frame, error) {
	lock.Acquire()
	defer lock.Release()

	if count <= 0 {
		return InvalidFrame, errBadCount
	}

	it := bm.ConsecutiveZeros(count)
	r, ok := it.Next()
	if !ok {
		return InvalidFrame, errOutOfContig
	}

	bm.SetOnes(r.Start, r.Start+count)
	freeCount -= uint64(count)
	return Frame(r.Start), nil
}

// FreeFrame releases a previously allocated frame back to the allocator.
func FreeFrame(f Frame) error {
	lock.Acquire()
	defer lock.Release()

	idx := int(f)
	if idx < 0 || idx >= bm.Len() {
		return errFrameOOR
	}
	if !bm.Get(idx) {
		return errDoubleFree
	}

	bm.SetZeros(idx, idx+1)
	freeCount++
	return nil
}

// FreeFrameCount returns the number of frames currently available.
func FreeFrameCount() uint64 {
	return freeCount
}

// TotalFrameCount returns the number of frames currently tracked by the
// allocator (bootstrap or full, depending on which init ran last).
func TotalFrameCount() uint64 {
	return totalFrames
}
