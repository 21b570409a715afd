//go:build 386

package idt

import (
	"unsafe"

	"corekernel/kernel/cpu"
)

// Frame is the saved register state visible to a Handler, in the layout the
// assembly trampoline in idt_386.s pushes it.
type Frame struct {
	Edi, Esi, Ebp, espDummy, Ebx, Edx, Ecx, Eax uint32

	vector    uint32
	errorCode uint32

	eip, cs, eflags uint32
}

// Vector reports which interrupt vector delivered this frame.
func (f *Frame) Vector() uint64 { return uint64(f.vector) }

// ErrorCode reports the hardware-pushed error code, or zero for vectors
// that don't have one.
func (f *Frame) ErrorCode() uint64 { return uint64(f.errorCode) }

// InstructionPointer reports the address execution will resume at once the
// handler returns (or the faulting address, for exceptions).
func (f *Frame) InstructionPointer() uint64 { return uint64(f.eip) }

// gateEntry is a 32-bit interrupt gate descriptor.
type gateEntry struct {
	offsetLow  uint16
	selector   uint16
	zero       uint8
	typeAttr   uint8
	offsetHigh uint16
}

const gateTypeInterrupt = 0xE
const gatePresent = 1 << 7

func makeGate(handlerAddr uintptr, selector uint16) gateEntry {
	return gateEntry{
		offsetLow:  uint16(handlerAddr),
		selector:   selector,
		typeAttr:   gatePresent | gateTypeInterrupt,
		offsetHigh: uint16(handlerAddr >> 16),
	}
}

var table [VectorCount]gateEntry

// pseudoDescriptor is handed to LIDT from &pd.limit; the leading pad puts
// base directly after limit, the packed layout the instruction reads.
type pseudoDescriptor struct {
	_     uint16
	limit uint16
	base  uint32
}

var pd pseudoDescriptor

// Init builds the IDT from the assembly trampolines, remaps the PIC clear
// of the CPU exception range, and loads the table.
func Init(codeSelector uint16) {
	installDefaultExceptionHandlers()

	for v := 0; v < VectorCount; v++ {
		fn := isrStubs[v]
		addr := *(*uintptr)(unsafe.Pointer(&fn))
		table[v] = makeGate(addr, codeSelector)
	}

	pd.limit = uint16(unsafe.Sizeof(table) - 1)
	pd.base = uint32(uintptr(unsafe.Pointer(&table[0])))

	remapPIC()
	cpu.LoadIDT(uintptr(unsafe.Pointer(&pd.limit)))
}
