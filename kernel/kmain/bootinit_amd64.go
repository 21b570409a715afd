//go:build amd64

package kmain

import "corekernel/kernel/gdt"

func gdtInit(kernelStackTop uintptr) {
	gdt.Init(uint64(kernelStackTop))
}
