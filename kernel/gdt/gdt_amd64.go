//go:build amd64

package gdt

import (
	"unsafe"

	"corekernel/kernel/cpu"
)

// tss64 mirrors the 64-bit task state segment. This kernel uses RSP0 (the
// stack pointer loaded on a ring3->ring0 transition) and IST1, which the
// double-fault gate forces the CPU onto unconditionally; the remaining IST
// slots stay zero. The hardware segment starts at reserved0; the leading pad
// puts the 8-byte fields at their hardware offsets from there.
type tss64 struct {
	_         uint32
	reserved0 uint32
	rsp0      uint64
	rsp1      uint64
	rsp2      uint64
	reserved1 uint64
	ist       [7]uint64
	reserved2 uint64
	reserved3 uint16
	ioMapBase uint16
}

// table entry 5 holds the TSS's low descriptor, entry 6 its high half, since
// a 64-bit TSS descriptor is 16 bytes wide.
var table [8]uint64
var tss tss64

// doubleFaultStack backs IST1, the only interrupt stack table entry this
// kernel wires up. The double-fault gate (idt_amd64.go) forces the CPU to
// switch to this stack on entry regardless of what the interrupted code's
// own stack pointer was doing, so a stack-overflow-induced double fault
// does not double fault again trying to push its own frame.
const doubleFaultStackSize = 4096
var doubleFaultStack [doubleFaultStackSize]byte

// pseudoDescriptor is handed to LGDT from &pd.limit; the leading pad puts
// base directly after limit, the packed layout the instruction reads.
type pseudoDescriptor struct {
	_     [3]uint16
	limit uint16
	base  uint64
}

var pd pseudoDescriptor

// Init builds the GDT and TSS, installs them, and reloads every segment
// register plus the task register to point at the new table.
func Init(kernelStackTop uint64) {
	table[0] = 0 // null
	table[1] = encodeDescriptor(0, 0xfffff, accessPresent|accessDescType|accessExecutable|accessRW, true, true)
	table[2] = encodeDescriptor(0, 0xfffff, accessPresent|accessDescType|accessRW, true, false)
	table[3] = encodeDescriptor(0, 0xfffff, accessPresent|accessRing3|accessDescType|accessExecutable|accessRW, true, true)
	table[4] = encodeDescriptor(0, 0xfffff, accessPresent|accessRing3|accessDescType|accessRW, true, false)

	tss = tss64{rsp0: kernelStackTop}
	tss.ist[0] = uint64(uintptr(unsafe.Pointer(&doubleFaultStack[0])) + doubleFaultStackSize)
	base := uint64(uintptr(unsafe.Pointer(&tss.reserved0)))
	limit := uint32(unsafe.Sizeof(tss) - unsafe.Offsetof(tss.reserved0) - 1)

	low := uint64(limit & 0xffff)
	low |= (base & 0xffffff) << 16
	low |= uint64(accessPresent|accessTSS) << 40
	low |= uint64((limit>>16)&0xf) << 48
	low |= ((base >> 24) & 0xff) << 56

	high := (base >> 32) & 0xffffffff

	table[5] = low
	table[6] = high

	pd.limit = uint16(unsafe.Sizeof(table) - 1)
	pd.base = uint64(uintptr(unsafe.Pointer(&table[0])))

	cpu.LoadGDT(uintptr(unsafe.Pointer(&pd.limit)))
	cpu.ReloadSegments(KCodeSelector, KDataSelector)
	cpu.LoadTR(TSSSelector)
}

// SetKernelStack updates the stack pointer loaded by the CPU on the next
// ring3->ring0 transition. The scheduler calls this whenever it switches to
// a new runnable so that a nested interrupt lands on that runnable's own
// kernel stack.
func SetKernelStack(rsp0 uint64) {
	tss.rsp0 = rsp0
}
