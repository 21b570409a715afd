// Package idt builds the interrupt descriptor table, reprograms the legacy
//8259 PICs, and dispatches CPU exceptions and hardware IRQs to registered
// Go handlers.
package idt

import "corekernel/kernel/kfmt"

// VectorCount is the number of vectors this kernel installs: the 32 CPU
// exception vectors followed by the 16 remapped legacy IRQ vectors.
const VectorCount = 48

// IRQBase is the vector the first legacy IRQ (the PIT timer, IRQ0) is
// remapped to, clear of the CPU exception range.
const IRQBase = 32

// doubleFaultVector is the CPU exception that must not recurse and (on
// 64-bit) must run on its own interrupt stack; see idt_amd64.go.
const doubleFaultVector = 8

// Handler is called with the saved register state for a given vector. For
// exceptions that push a hardware error code, Frame.ErrorCode carries it;
// other vectors see it as zero.
type Handler func(frame *Frame)

var handlers [VectorCount]Handler

// HandleException registers fn for the given CPU exception vector (0-31).
func HandleException(vector int, fn Handler) {
	handlers[vector] = fn
}

// HandleIRQ registers fn for the given legacy IRQ line (0-15), automatically
// translating it to its remapped vector.
func HandleIRQ(irq int, fn Handler) {
	handlers[IRQBase+irq] = fn
}

var unhandled = func(frame *Frame) {
	kfmt.Panicf("unhandled interrupt: vector=%d error=%x rip=%x", frame.Vector(), frame.ErrorCode(), frame.InstructionPointer())
}

// doubleFault is fatal: per spec 4.6/4.7, a double fault must not recurse,
// and this kernel does not attempt to resume whatever put the CPU in a
// state where a double fault could occur. It runs on IST1 on 64-bit
// (idt_amd64.go), so even a double fault caused by kernel stack overflow
// reaches this handler on a healthy stack.
var doubleFault = func(frame *Frame) {
	kfmt.Panicf("double fault: error=%x rip=%x", frame.ErrorCode(), frame.InstructionPointer())
}

// logAndReturn is installed for every CPU exception vector except double
// fault. It satisfies spec 7's "recoverable-but-logged" category: emit a
// one-line trace and return control to the interrupted code, rather than
// halting.
var logAndReturn = func(frame *Frame) {
	kfmt.Printf("exception: vector=%d error=%x rip=%x\n", frame.Vector(), frame.ErrorCode(), frame.InstructionPointer())
}

// installDefaultExceptionHandlers installs the default handler set described in spec 4.6: every CPU
// exception vector logs and returns, except double fault which is fatal.
// Architecture-specific Init (idt_386.go, idt_amd64.go) calls this before
// building gate descriptors so callers that register their own handler
// afterward (none currently do, for exceptions) can still override it.
func installDefaultExceptionHandlers() {
	for v := 0; v < IRQBase; v++ {
		handlers[v] = logAndReturn
	}
	handlers[doubleFaultVector] = doubleFault
}

// dispatch is called by the assembly trampoline (commonstub in idt_386.s /
// idt_amd64.s, through the ·dispatch symbol) for every vector. It is written
// in Go rather than in assembly, keeping all handler bookkeeping in Go. For
// IRQ vectors the EOI is sent before the handler runs, so a handler that
// switches away (the IRQ0 yield) does not leave the PIC waiting.
func dispatch(frame *Frame) {
	vector := int(frame.Vector())
	if vector >= IRQBase {
		sendEOI(vector - IRQBase)
	}
	h := handlers[vector]
	if h == nil {
		unhandled(frame)
		return
	}
	h(frame)
}
