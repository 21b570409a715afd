package main

import "corekernel/kernel/kmain"

var (
	multibootMagic   uint32
	multibootInfoPtr uintptr
	kernelStackTop   uintptr
)

// main makes a dummy call to the actual kernel entry point. It is
// intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code, which it cannot see is reachable: the rt0 assembly stub
// (outside this module's scope) is what actually calls kmain.Kmain, with the
// Multiboot magic and info pointer it received from the bootloader and the
// stack top it prepared for Kmain's initial, pre-TSS execution.
//
// Globals are passed as arguments to Kmain to prevent the compiler from
// inlining this call and dropping Kmain from the generated object file.
func main() {
	kmain.Kmain(multibootMagic, multibootInfoPtr, kernelStackTop)
}
