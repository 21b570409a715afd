package pmm

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"corekernel/kernel/hal/multiboot"
)

func resetBootstrap(t *testing.T) {
	t.Helper()
	for i := range bootstrapWords {
		bootstrapWords[i] = 0
	}
	InitBootstrapAllocator()
}

func TestBootstrapInitReservesLowFrames(t *testing.T) {
	resetBootstrap(t)

	if got, want := TotalFrameCount(), uint64(bootstrapFrameCount); got != want {
		t.Fatalf("TotalFrameCount() = %d, want %d", got, want)
	}
	if got, want := FreeFrameCount(), uint64(bootstrapFrameCount-reservedLowFrames); got != want {
		t.Fatalf("FreeFrameCount() = %d, want %d", got, want)
	}

	f, err := AllocFrame()
	if err != nil {
		t.Fatalf("AllocFrame returned error: %v", err)
	}
	if f < reservedLowFrames {
		t.Fatalf("AllocFrame returned a reserved frame: %d", f)
	}
}

func TestAllocFrameThenFreeFrameRoundTrips(t *testing.T) {
	resetBootstrap(t)

	before := FreeFrameCount()
	f, err := AllocFrame()
	if err != nil {
		t.Fatalf("AllocFrame returned error: %v", err)
	}
	if FreeFrameCount() != before-1 {
		t.Fatalf("FreeFrameCount did not decrease after AllocFrame")
	}

	if err := FreeFrame(f); err != nil {
		t.Fatalf("FreeFrame returned error: %v", err)
	}
	if FreeFrameCount() != before {
		t.Fatalf("FreeFrameCount did not return to baseline after FreeFrame")
	}
}

func TestFreeFrameDoubleFreeIsRejected(t *testing.T) {
	resetBootstrap(t)

	f, err := AllocFrame()
	if err != nil {
		t.Fatalf("AllocFrame returned error: %v", err)
	}
	if err := FreeFrame(f); err != nil {
		t.Fatalf("FreeFrame returned error: %v", err)
	}
	if err := FreeFrame(f); err == nil {
		t.Fatal("expected an error on double free")
	}
}

func TestAllocFramesContiguous(t *testing.T) {
	resetBootstrap(t)

	f, err := AllocFrames(8)
	if err != nil {
		t.Fatalf("AllocFrames returned error: %v", err)
	}
	for i := 0; i < 8; i++ {
		if !bm.Get(int(f) + i) {
			t.Fatalf("frame %d was not marked used", int(f)+i)
		}
	}
}

func TestAllocFramesRejectsNonPositiveCount(t *testing.T) {
	resetBootstrap(t)

	if _, err := AllocFrames(0); err == nil {
		t.Fatal("expected an error for count == 0")
	}
}

func TestAllocFrameExhaustion(t *testing.T) {
	resetBootstrap(t)

	for {
		if _, err := AllocFrame(); err != nil {
			break
		}
	}
	if FreeFrameCount() != 0 {
		t.Fatalf("FreeFrameCount() = %d, want 0 after exhaustion", FreeFrameCount())
	}
	if _, err := AllocFrame(); err == nil {
		t.Fatal("expected an error once the allocator is exhausted")
	}
}

// mmapTestInfo and mmapTestEntries back a synthetic Multiboot v1 info
// structure and memory map for InitFromMemoryMap tests. They are
// package-level arrays rather than make()'d slices so their address stays
// within the 32-bit range the wire format's addr/mmapAddr fields require on
// a normal (non-PIE) linked test binary.
var (
	mmapTestInfo    [68]byte
	mmapTestEntries [48]byte
)

// buildMultibootMap encodes two available E820-style regions into
// mmapTestEntries and mmapTestInfo and returns the info pointer to hand to
// multiboot.SetInfoPtr: [0, 0x100000) (256 frames, entirely inside the
// forced-reserved low range) and [0x200000, 0x800000) (1536 frames,
// [512, 2048)). Together with reservedLowFrames this yields a top frame of
// 2048 and 2048-1024 free frames once InitFromMemoryMap runs, matching the
// scenario the bootstrap-then-full-map protocol is meant to produce.
func buildMultibootMap(t *testing.T) uintptr {
	t.Helper()

	const flagMmap = 1 << 6

	putEntry := func(b []byte, physAddr, length uint64, typ multiboot.MemoryEntryType) {
		binary.LittleEndian.PutUint32(b[0:4], 20) // size excludes itself
		binary.LittleEndian.PutUint64(b[4:12], physAddr)
		binary.LittleEndian.PutUint64(b[12:20], length)
		binary.LittleEndian.PutUint32(b[20:24], uint32(typ))
	}

	putEntry(mmapTestEntries[0:24], 0, 0x100000, multiboot.MemAvailable)
	putEntry(mmapTestEntries[24:48], 0x200000, 0x600000, multiboot.MemAvailable)

	entriesAddr := uint32(uintptr(unsafe.Pointer(&mmapTestEntries[0])))

	for i := range mmapTestInfo {
		mmapTestInfo[i] = 0
	}
	binary.LittleEndian.PutUint32(mmapTestInfo[0:4], flagMmap)
	binary.LittleEndian.PutUint32(mmapTestInfo[44:48], uint32(len(mmapTestEntries)))
	binary.LittleEndian.PutUint32(mmapTestInfo[48:52], entriesAddr)

	return uintptr(unsafe.Pointer(&mmapTestInfo[0]))
}

func TestInitFromMemoryMapFreesAvailableRegions(t *testing.T) {
	resetBootstrap(t)
	defer multiboot.SetInfoPtr(0)

	multiboot.SetInfoPtr(buildMultibootMap(t))
	InitFromMemoryMap()

	const topFrame = 2048
	if got, want := TotalFrameCount(), uint64(topFrame); got != want {
		t.Fatalf("TotalFrameCount() = %d, want %d", got, want)
	}
	if got, want := FreeFrameCount(), uint64(topFrame-reservedLowFrames); got != want {
		t.Fatalf("FreeFrameCount() = %d, want %d", got, want)
	}

	f, err := AllocFrame()
	if err != nil {
		t.Fatalf("AllocFrame returned error: %v", err)
	}
	if f < reservedLowFrames {
		t.Fatalf("AllocFrame returned a reserved frame: %d", f)
	}
}

// TestInitFromMemoryMapPreservesPhase1Allocations guards against rebuilding
// the bitmap purely from the memory map and losing track of a frame handed
// out between InitBootstrapAllocator and InitFromMemoryMap (e.g. for an
// early page table), which would otherwise let AllocFrame hand it out a
// second time.
func TestInitFromMemoryMapPreservesPhase1Allocations(t *testing.T) {
	resetBootstrap(t)
	defer multiboot.SetInfoPtr(0)

	held, err := AllocFrame()
	if err != nil {
		t.Fatalf("AllocFrame returned error: %v", err)
	}

	multiboot.SetInfoPtr(buildMultibootMap(t))
	InitFromMemoryMap()

	if !bm.Get(int(held)) {
		t.Fatalf("frame %d was allocated before InitFromMemoryMap but came back free after it", held)
	}
}
