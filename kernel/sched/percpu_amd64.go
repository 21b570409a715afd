//go:build amd64

package sched

import (
	"unsafe"

	"corekernel/kernel/cpu"
	"corekernel/kernel/gdt"
)

// gsBaseMSR is IA32_GS_BASE. amd64 has a genuine per-segment base register,
// so SetCurrent points GS straight at the Scheduler itself rather than at a
// separate per-CPU block.
const gsBaseMSR = 0xC0000101

// SetCurrent installs s as this CPU's scheduler. Current recovers it by
// loading [gs:0], which after this call reads s.self: s's own address,
// written by New.
func SetCurrent(s *Scheduler) {
	cpu.WriteMSR(gsBaseMSR, uint64(uintptr(unsafe.Pointer(s))))
}

func setKernelStackTop(top uintptr) {
	gdt.SetKernelStack(uint64(top))
}
