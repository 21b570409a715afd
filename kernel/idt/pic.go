package idt

import "corekernel/kernel/cpu"

// Legacy 8259 PIC I/O ports.
const (
	masterCommandPort = 0x20
	masterDataPort    = 0x21
	slaveCommandPort  = 0xA0
	slaveDataPort     = 0xA1

	icw1Init    = 0x10
	icw1ICW4    = 0x01
	icw4_8086   = 0x01
	picEOI      = 0x20
)

// remapPIC reprograms the master/slave 8259 pair so that IRQs 0-15 raise
// vectors IRQBase..IRQBase+15 instead of colliding with the CPU exception
// range (their power-on default, vectors 8-15, overlaps the exception
// vectors the CPU itself uses).
func remapPIC() {
	cpu.Outb(masterCommandPort, icw1Init|icw1ICW4)
	cpu.Outb(slaveCommandPort, icw1Init|icw1ICW4)

	cpu.Outb(masterDataPort, IRQBase)      // ICW2: master offset
	cpu.Outb(slaveDataPort, IRQBase+8)     // ICW2: slave offset

	cpu.Outb(masterDataPort, 1<<2)         // ICW3: slave attached to IRQ2
	cpu.Outb(slaveDataPort, 2)             // ICW3: slave's cascade identity

	cpu.Outb(masterDataPort, icw4_8086)
	cpu.Outb(slaveDataPort, icw4_8086)

	// Unmask every line; individual drivers mask the ones they don't use.
	cpu.Outb(masterDataPort, 0)
	cpu.Outb(slaveDataPort, 0)
}

func sendEOI(irq int) {
	if irq >= 8 {
		cpu.Outb(slaveCommandPort, picEOI)
	}
	cpu.Outb(masterCommandPort, picEOI)
}

// MaskIRQ disables a single legacy IRQ line.
func MaskIRQ(irq int) {
	port := uint16(masterDataPort)
	line := uint(irq)
	if irq >= 8 {
		port = slaveDataPort
		line -= 8
	}
	cpu.Outb(port, cpu.Inb(port)|(1<<line))
}

// UnmaskIRQ enables a single legacy IRQ line.
func UnmaskIRQ(irq int) {
	port := uint16(masterDataPort)
	line := uint(irq)
	if irq >= 8 {
		port = slaveDataPort
		line -= 8
	}
	cpu.Outb(port, cpu.Inb(port)&^(1<<line))
}
