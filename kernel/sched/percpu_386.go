//go:build 386

package sched

import (
	"unsafe"

	"corekernel/kernel/gdt"
)

// SetCurrent installs s as this CPU's scheduler. i386 has no per-segment
// base MSR, so GS already points (via gdt.Init) at a small per-CPU block;
// SetCurrent writes s's address into that block instead of moving GS
// itself. Current recovers it the same way on both architectures, by
// loading [gs:0].
func SetCurrent(s *Scheduler) {
	gdt.SetPerCPUSelf(uintptr(unsafe.Pointer(s)))
}

func setKernelStackTop(top uintptr) {
	gdt.SetKernelStack(uint32(top))
}
