//go:build 386

package sched

import "unsafe"

// calleeSavedWords is the number of registers context_386.s pushes before
// recording the stack pointer: BX, BP, SI, DI.
const calleeSavedWords = 4
const wordSize = 4

// contextSwap saves the caller's stack pointer into *saveSlot (unless nil),
// switches SP to loadSP, and resumes whatever context that stack holds. The
// first time it is used against a Runnable's stack, that's bootstrapStack's
// layout below; every time after, it's wherever a previous contextSwap call
// against that same stack left off.
func contextSwap(loadSP uintptr, saveSlot *uintptr)

// entryTrampoline is where a Runnable's stack, freshly laid out by
// bootstrapStack, resumes on its first contextSwap. See context_386.s.
func entryTrampoline()

// readGS0 loads the word at [gs:0], the per-CPU scheduler anchor set up by
// SetCurrent.
func readGS0() uintptr

// bootstrapStack lays out a fresh stack so that contextSwap(sp, ...) lands
// in entryTrampoline with its callee-saved registers zeroed: entry sits on
// top (popped last, by RET), with calleeSavedWords zero slots below it
// (popped first, into BX/BP/SI/DI, which runEntry never reads before
// overwriting).
func bootstrapStack(stackTop, entry uintptr) uintptr {
	sp := stackTop
	sp -= wordSize
	*(*uintptr)(unsafe.Pointer(sp)) = entry
	for i := 0; i < calleeSavedWords; i++ {
		sp -= wordSize
		*(*uintptr)(unsafe.Pointer(sp)) = 0
	}
	return sp
}

func entryTrampolineAddr() uintptr {
	fn := entryTrampoline
	return *(*uintptr)(unsafe.Pointer(&fn))
}
