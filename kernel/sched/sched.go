// Package sched implements the single-CPU cooperative scheduler (spec C8)
// on top of the hand-rolled stack-switching contexts in context_386.s /
// context_amd64.s (spec C7). Runnables share one address space and the
// kernel-mode CPU state; only callee-saved registers survive a swap, and
// the queue is a plain FIFO with no priorities.
//
// Correctness here is architectural (real stack layout, a real GS segment,
// a real timer IRQ) rather than something a hosted `go test` binary can
// exercise: swapping contexts on the host's own goroutine stack would
// corrupt the test binary. The scenarios this package must satisfy are
// therefore verified in QEMU rather than as Go tests, mirroring how
// kernel/cpu, kernel/gdt, and kernel/idt carry no _test.go files either:
//
//   - three runnables that each Yield 5 times then return interleave as
//     A0 B0 C0 A1 B1 C1 ... A4 B4 C4 and Run exits cleanly afterward.
//   - a runnable preempted mid busy-loop by IRQ0 resumes with its
//     callee-saved registers bit-exactly preserved.
//   - a finished runnable's stack is freed before Run advances to the next
//     entry, with no use-after-free on the vacated stack.
package sched

import (
	"unsafe"

	"corekernel/kernel"
	"corekernel/kernel/idt"
	"corekernel/kernel/mem"
	"corekernel/kernel/mem/vmm"
	"corekernel/kernel/sync"
)

// stackSize is the fixed size of every runnable's stack (spec 3: Runnable).
const stackSize = 16 * mem.Kb

type runState uint8

const (
	stateReady runState = iota
	stateRunning
	stateDone
)

// Runnable is the scheduler's unit of work: an owned stack, a saved stack
// pointer, and a one-shot closure to run on first entry.
type Runnable struct {
	fn        func()
	stackAddr uintptr
	sp        uintptr
	state     runState
}

// Scheduler owns exactly one run-queue. self must stay the first field: it
// is what Current recovers after loading [gs:0], per the per-CPU anchor
// convention in percpu_386.go / percpu_amd64.go.
type Scheduler struct {
	self    uintptr
	queue   []*Runnable
	current *Runnable
	loopSP  uintptr
}

var errSpawnOOM = &kernel.Error{Module: "sched", Message: "spawn: out of virtual memory for a new stack"}

// New constructs a scheduler for the current CPU. It does not install it as
// the active per-CPU scheduler; call SetCurrent once kernel/gdt has brought
// up segmentation.
func New() *Scheduler {
	s := &Scheduler{}
	s.self = uintptr(unsafe.Pointer(s))
	return s
}

// Spawn constructs a Runnable around fn and appends it to the back of the
// run-queue. fn runs the first time the scheduler loop switches into this
// runnable; when it returns, the runnable transitions to Done and its stack
// is reclaimed.
func (s *Scheduler) Spawn(fn func()) error {
	stackAddr, err := vmm.Allocate(stackSize)
	if err != nil {
		return errSpawnOOM
	}

	r := &Runnable{fn: fn, stackAddr: stackAddr, state: stateReady}
	r.sp = bootstrapStack(stackAddr+uintptr(stackSize), entryTrampolineAddr())
	s.queue = append(s.queue, r)
	return nil
}

// Run drains the run-queue: pop the front runnable, swap into it, and when
// control returns here (the runnable yielded or finished) loop until the
// queue is empty. While running, it installs itself as kernel/sync's
// contention backoff so a spinning Spinlock gives other runnables a turn
// instead of burning the CPU.
func (s *Scheduler) Run() {
	sync.SetYieldFn(s.Yield)
	defer sync.SetYieldFn(nil)

	for len(s.queue) > 0 {
		r := s.queue[0]
		s.queue = s.queue[1:]

		s.current = r
		r.state = stateRunning
		setKernelStackTop(r.stackAddr + uintptr(stackSize))

		contextSwap(r.sp, &s.loopSP)
		if r.state == stateDone {
			vmm.Free(r.stackAddr, stackSize)
		}
	}
}

// Yield pushes the currently running runnable to the back of the queue and
// swaps back into the scheduler loop. It has the same contract whether
// called cooperatively from kernel code or from the IRQ0 timer handler
// installed by InstallTimerTick: in both cases it executes on the
// yielding/interrupted runnable's own stack, and the interrupted runnable
// resumes exactly where it left off the next time the scheduler reaches it.
func (s *Scheduler) Yield() {
	r := s.current
	if r == nil {
		// Nothing is running (e.g. IRQ0 fired in the narrow window
		// between runnables); nothing to reschedule.
		return
	}
	r.state = stateReady
	s.queue = append(s.queue, r)
	contextSwap(s.loopSP, &r.sp)
}

// finish is invoked by runEntry once a runnable's closure returns. It marks
// the runnable Done and discards the context for good: the nil save slot
// means this call never returns. The stack is still in use here, so Run
// frees it once control is back on the loop's own stack.
func (s *Scheduler) finish() {
	r := s.current
	r.state = stateDone
	s.current = nil
	contextSwap(s.loopSP, nil)
}

// runEntry is the Go half of the entry trampoline (the asm half lands here
// via CALL on a runnable's first swap-in). It reads the running runnable off
// the per-CPU scheduler, invokes its closure, and hands off to finish, which
// never returns.
//
//go:nosplit
func runEntry() {
	s := Current()
	r := s.current
	r.fn()
	s.finish()
}

// Current returns the scheduler installed on this CPU via SetCurrent. It
// returns nil only when [gs:0] reads zero; before SetCurrent, [gs:0] does not
// hold a scheduler (on i386 it holds the per-CPU block's own address).
func Current() *Scheduler {
	addr := readGS0()
	if addr == 0 {
		return nil
	}
	return (*Scheduler)(unsafe.Pointer(addr))
}

// InstallTimerTick wires s's cooperative yield to IRQ0 (the PIT timer), so
// that a runnable's quantum is bounded even if it never calls Yield itself.
// The handler runs after dispatch has sent the EOI, per spec 4.6/4.8.
func InstallTimerTick(s *Scheduler) {
	idt.HandleIRQ(0, func(*idt.Frame) {
		s.Yield()
	})
}
