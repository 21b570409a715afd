package vmm

import (
	"testing"

	"corekernel/kernel/mem/pmm"
)

func TestPTEEntrySetFrameRoundTrips(t *testing.T) {
	var e pteEntry
	if e.present() {
		t.Fatal("zero-value entry reports present")
	}

	e.setFrame(pmm.Frame(0x1234), true)
	if !e.present() {
		t.Fatal("entry does not report present after setFrame")
	}
	if got := e.frame(); got != pmm.Frame(0x1234) {
		t.Fatalf("frame() = %d, want 0x1234", got)
	}

	e.clear()
	if e.present() {
		t.Fatal("entry still reports present after clear")
	}
}

func TestPTEEntryWritableFlag(t *testing.T) {
	var ro, rw pteEntry
	ro.setFrame(pmm.Frame(1), false)
	rw.setFrame(pmm.Frame(1), true)

	if ro&flagWritable != 0 {
		t.Fatal("read-only entry has the writable bit set")
	}
	if rw&flagWritable == 0 {
		t.Fatal("writable entry is missing the writable bit")
	}
}
