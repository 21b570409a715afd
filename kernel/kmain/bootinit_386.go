//go:build 386

package kmain

import "corekernel/kernel/gdt"

func gdtInit(kernelStackTop uintptr) {
	gdt.Init(uint32(kernelStackTop))
}
