//go:build 386

package idt

// isrN is the assembly trampoline for vector N, defined in idt_386.s. Each
// one pushes a dummy error code if the CPU doesn't supply one, pushes its
// own vector number, and jumps to the shared save/dispatch/restore path.

func isr0()
func isr1()
func isr2()
func isr3()
func isr4()
func isr5()
func isr6()
func isr7()
func isr8()
func isr9()
func isr10()
func isr11()
func isr12()
func isr13()
func isr14()
func isr15()
func isr16()
func isr17()
func isr18()
func isr19()
func isr20()
func isr21()
func isr22()
func isr23()
func isr24()
func isr25()
func isr26()
func isr27()
func isr28()
func isr29()
func isr30()
func isr31()
func isr32()
func isr33()
func isr34()
func isr35()
func isr36()
func isr37()
func isr38()
func isr39()
func isr40()
func isr41()
func isr42()
func isr43()
func isr44()
func isr45()
func isr46()
func isr47()

// isrStubs lets Init recover each trampoline's code address without 48 hand
// written constants: a bodyless Go func value's backing word is its entry
// point, so *(*uintptr)(unsafe.Pointer(&fn)) recovers it.
var isrStubs = [VectorCount]func(){
	isr0,
	isr1,
	isr2,
	isr3,
	isr4,
	isr5,
	isr6,
	isr7,
	isr8,
	isr9,
	isr10,
	isr11,
	isr12,
	isr13,
	isr14,
	isr15,
	isr16,
	isr17,
	isr18,
	isr19,
	isr20,
	isr21,
	isr22,
	isr23,
	isr24,
	isr25,
	isr26,
	isr27,
	isr28,
	isr29,
	isr30,
	isr31,
	isr32,
	isr33,
	isr34,
	isr35,
	isr36,
	isr37,
	isr38,
	isr39,
	isr40,
	isr41,
	isr42,
	isr43,
	isr44,
	isr45,
	isr46,
	isr47,
}
