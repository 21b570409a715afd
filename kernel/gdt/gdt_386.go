//go:build 386

package gdt

import (
	"unsafe"

	"corekernel/kernel/cpu"
)

// tss32 mirrors the 32-bit task state segment. Only esp0/ss0 are used by
// this kernel, to supply the stack used on a ring3->ring0 transition.
type tss32 struct {
	prevTaskLink uint32
	esp0         uint32
	ss0          uint32
	esp1         uint32
	ss1          uint32
	esp2         uint32
	ss2          uint32
	cr3          uint32
	eip          uint32
	eflags       uint32
	eax, ecx, edx, ebx uint32
	esp, ebp, esi, edi uint32
	es, cs, ss, ds, fs, gs uint32
	ldt          uint32
	trap         uint16
	ioMapBase    uint16
}

// perCPU holds the value loaded into GS so kernel/sched's Current() can
// dereference [gs:0] uniformly on an architecture that has no per-segment
// base MSR.
type perCPU struct {
	self uintptr // must stay first: [gs:0] reads this field
}

// GSSelector is the 7th GDT slot, dedicated to the per-CPU data segment on
// i386 in place of amd64's WRMSR(IA32_GS_BASE).
const GSSelector = 0x30

var table [7]uint64
var tss tss32
var cpu0 perCPU

// pseudoDescriptor is handed to LGDT from &pd.limit; the leading pad puts
// base directly after limit, the packed layout the instruction reads.
type pseudoDescriptor struct {
	_     uint16
	limit uint16
	base  uint32
}

var pd pseudoDescriptor

// Init builds the GDT and TSS, installs them, reloads every segment
// register plus the task register, and points GS at the per-CPU block.
func Init(kernelStackTop uint32) {
	table[0] = 0
	table[1] = encodeDescriptor(0, 0xfffff, accessPresent|accessDescType|accessExecutable|accessRW, true, false)
	table[2] = encodeDescriptor(0, 0xfffff, accessPresent|accessDescType|accessRW, true, false)
	table[3] = encodeDescriptor(0, 0xfffff, accessPresent|accessRing3|accessDescType|accessExecutable|accessRW, true, false)
	table[4] = encodeDescriptor(0, 0xfffff, accessPresent|accessRing3|accessDescType|accessRW, true, false)

	tss = tss32{ss0: KDataSelector, esp0: kernelStackTop}
	table[5] = encodeDescriptor(uint32(uintptr(unsafe.Pointer(&tss))), uint32(unsafe.Sizeof(tss)-1), accessPresent|accessTSS, false, false)

	table[6] = encodeDescriptor(uint32(uintptr(unsafe.Pointer(&cpu0))), uint32(unsafe.Sizeof(cpu0)-1), accessPresent|accessDescType|accessRW, false, false)

	pd.limit = uint16(unsafe.Sizeof(table) - 1)
	pd.base = uint32(uintptr(unsafe.Pointer(&table[0])))

	cpu.LoadGDT(uintptr(unsafe.Pointer(&pd.limit)))
	cpu.ReloadSegments(KCodeSelector, KDataSelector)
	cpu.LoadTR(TSSSelector)

	cpu.LoadGS(GSSelector)
	cpu0.self = uintptr(unsafe.Pointer(&cpu0))
}

// SetKernelStack updates the stack pointer loaded by the CPU on the next
// ring3->ring0 transition.
func SetKernelStack(esp0 uint32) {
	tss.esp0 = esp0
}

// SetPerCPUSelf stores addr in the per-CPU block that GS points at. i386 has
// no per-segment base MSR, so kernel/sched's Scheduler.Current reaches the
// running scheduler by loading [gs:0]. Init seeds that field with the
// block's own address; this function overwrites it.
func SetPerCPUSelf(addr uintptr) {
	cpu0.self = addr
}
