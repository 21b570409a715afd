//go:build amd64

package idt

import (
	"unsafe"

	"corekernel/kernel/cpu"
)

// Frame is the saved register state visible to a Handler, in the layout the
// assembly trampoline in idt_amd64.s pushes it.
type Frame struct {
	R15, R14, R13, R12, R11, R10, R9, R8 uint64
	Rbp, Rdi, Rsi, Rdx, Rcx, Rbx, Rax    uint64

	vector    uint64
	errorCode uint64

	rip, cs, rflags, rsp, ss uint64
}

// Vector reports which interrupt vector delivered this frame.
func (f *Frame) Vector() uint64 { return f.vector }

// ErrorCode reports the hardware-pushed error code, or zero for vectors
// that don't have one.
func (f *Frame) ErrorCode() uint64 { return f.errorCode }

// InstructionPointer reports the address execution will resume at once the
// handler returns (or the faulting address, for exceptions).
func (f *Frame) InstructionPointer() uint64 { return f.rip }

// gateEntry is a 64-bit interrupt gate descriptor.
type gateEntry struct {
	offsetLow   uint16
	selector    uint16
	istFlags    uint16
	offsetMid   uint16
	offsetHigh  uint32
	reserved    uint32
}

const gateTypeInterrupt = 0xE
const gatePresent = 1 << 15

func makeGate(handlerAddr uintptr, selector uint16, ist uint16) gateEntry {
	return gateEntry{
		offsetLow:  uint16(handlerAddr),
		selector:   selector,
		istFlags:   gatePresent | (gateTypeInterrupt << 8) | ist,
		offsetMid:  uint16(handlerAddr >> 16),
		offsetHigh: uint32(handlerAddr >> 32),
	}
}

var table [VectorCount]gateEntry

// pseudoDescriptor is handed to LIDT from &pd.limit; the leading pad puts
// base directly after limit, the packed layout the instruction reads.
type pseudoDescriptor struct {
	_     [3]uint16
	limit uint16
	base  uint64
}

var pd pseudoDescriptor

// Init builds the IDT from the assembly trampolines, remaps the PIC clear
// of the CPU exception range, and loads the table.
func Init(codeSelector uint16) {
	installDefaultExceptionHandlers()

	for v := 0; v < VectorCount; v++ {
		fn := isrStubs[v]
		addr := *(*uintptr)(unsafe.Pointer(&fn))
		var ist uint16
		if v == doubleFaultVector {
			ist = 1 // IST1, set up by gdt.Init
		}
		table[v] = makeGate(addr, codeSelector, ist)
	}

	pd.limit = uint16(unsafe.Sizeof(table) - 1)
	pd.base = uint64(uintptr(unsafe.Pointer(&table[0])))

	remapPIC()
	cpu.LoadIDT(uintptr(unsafe.Pointer(&pd.limit)))
}
