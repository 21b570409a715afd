// Package kmain ties together the boot-time bring-up sequence (frame
// allocator, paging, segmentation, interrupts, the Go runtime shims and the
// cooperative scheduler) behind the single entry point the assembly rt0
// stub calls once it has handed off from the bootloader.
package kmain

import (
	"corekernel/kernel"
	"corekernel/kernel/cpu"
	"corekernel/kernel/gdt"
	"corekernel/kernel/goruntime"
	"corekernel/kernel/hal/multiboot"
	"corekernel/kernel/idt"
	"corekernel/kernel/kfmt"
	"corekernel/kernel/mem/pmm"
	"corekernel/kernel/mem/vmm"
	"corekernel/kernel/sched"
)

// multibootMagic is the value the Multiboot v1 bootloader leaves in EAX;
// the rt0 stub forwards it unchanged.
const multibootMagic = 0x2BADB002

var errBadMultibootMagic = &kernel.Error{Module: "kmain", Message: "boot: wrong multiboot magic, refusing to continue"}
var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// Kmain is the only Go symbol the rt0 assembly stub calls. By the time it is
// invoked, the stub has already enabled paging with an identity-plus-high-half
// mapping, loaded a provisional GDT, relocated the stack and disabled
// interrupts.
//
// Kmain is not expected to return: it ends by running the scheduler loop
// until the run-queue is drained, which the idle runnable spawned below
// ensures never happens. If it ever does return, that is itself treated as
// a fatal condition.
//
//go:noinline
func Kmain(multibootMagicSeen uint32, multibootInfoPtr uintptr, kernelStackTop uintptr) {
	if multibootMagicSeen != multibootMagic {
		kfmt.Panic(errBadMultibootMagic)
	}
	multiboot.SetInfoPtr(multibootInfoPtr)

	// Phase 1: a statically sized bitmap that needs no heap, just large
	// enough to back the page tables phase 2's own bitmap will need.
	pmm.InitBootstrapAllocator()

	// The rt0 stub's own page tables are already active; recursively
	// self-map their root so every later edit goes through vmm's fixed
	// virtual addresses instead of physical pointers.
	vmm.Init(cpu.ActivePDT())

	// Phase 2: replace the bootstrap bitmap with one sized to the real
	// memory map, preserving the frames phase 1 (and any mappings vmm.Init
	// created) already claimed as used.
	pmm.InitFromMemoryMap()

	gdtInit(kernelStackTop)
	idt.Init(gdt.KCodeSelector)

	if err := goruntime.Init(); err != nil {
		kfmt.Panic(err)
	}

	s := sched.New()
	sched.SetCurrent(s)
	sched.InstallTimerTick(s)

	freeFrames, totalFrames := pmm.FreeFrameCount(), pmm.TotalFrameCount()
	if err := s.Spawn(func() {
		kfmt.Printf("corekernel booting (%d frames free of %d)\n", freeFrames, totalFrames)
		for {
			sched.Current().Yield()
		}
	}); err != nil {
		kfmt.Panic(err)
	}

	cpu.EnableInterrupts()

	s.Run()

	kfmt.Panic(errKmainReturned)
}
