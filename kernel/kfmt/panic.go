package kfmt

import (
	_ "unsafe" // for go:linkname

	"corekernel/kernel/cpu"
)

// cpuHaltFn is the halt routine Panic, Panicf and runtimePanic loop on. It is
// a variable so the halt step can be replaced without touching those callers.
var cpuHaltFn = cpu.Halt

// Panic prints a banner describing err and halts the CPU. It never returns.
func Panic(err error) {
	Printf("\n--- kernel panic ---\n%s\n", err)
	for {
		cpuHaltFn()
	}
}

// Panicf formats its arguments like Printf, prints the result as a panic
// banner and halts the CPU. It never returns.
func Panicf(format string, args ...interface{}) {
	Printf("\n--- kernel panic ---\n")
	Printf(format, args...)
	Printf("\n")
	for {
		cpuHaltFn()
	}
}

// runtimePanic is linked against the Go runtime's internal panic entry point
// so that an ordinary `panic("...")` anywhere in the kernel is routed through
// the same halt path as an explicit call to Panic. The runtime calls this
// with the formatted panic message already assembled.
//
//go:linkname runtimePanic runtime.throw
func runtimePanic(s string) {
	Printf("\n--- runtime panic ---\n%s\n", s)
	for {
		cpuHaltFn()
	}
}
