package cpu

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution.
func Halt()

// FlushTLBEntry flushes a TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT sets the root page table directory to point to the specified
// physical address and flushes the TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address of the currently active page table.
func ActivePDT() uintptr

// ReadCR2 returns the faulting linear address recorded by the last page
// fault.
func ReadCR2() uintptr

// LoadGDT loads a new global descriptor table from the 10-byte pseudo
// descriptor at ptr (2-byte limit, 8-byte base).
func LoadGDT(ptr uintptr)

// LoadIDT loads a new interrupt descriptor table from the 10-byte pseudo
// descriptor at ptr.
func LoadIDT(ptr uintptr)

// LoadTR loads the task register with the given GDT selector.
func LoadTR(selector uint16)

// ReloadSegments reloads the data segment registers with dataSel and the
// code segment with codeSel via a far return.
func ReloadSegments(codeSel, dataSel uint16)

// WriteMSR writes value to the model-specific register numbered msr.
func WriteMSR(msr uint32, value uint64)

// ReadMSR reads the model-specific register numbered msr.
func ReadMSR(msr uint32) uint64

// ID executes CPUID with the given leaf and returns the four result
// registers.
func ID(leaf uint32) (eax, ebx, ecx, edx uint32)

// Outb writes a byte to an I/O port.
func Outb(port uint16, value uint8)

// Inb reads a byte from an I/O port.
func Inb(port uint16) uint8

// IsIntel reports whether the CPU identifies itself as a GenuineIntel part.
func IsIntel() bool {
	_, b, c, d := ID(0)
	return b == 0x756e6547 && d == 0x49656e69 && c == 0x6c65746e
}
