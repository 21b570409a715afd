// Package pmm manages physical memory frame allocations.
package pmm

import (
	"math"

	"corekernel/kernel/mem"
)

// Frame describes a physical memory page index.
type Frame uint64

// InvalidFrame is returned by the allocator when it cannot satisfy a
// request.
const InvalidFrame = Frame(math.MaxUint64)

// IsValid reports whether f names a real frame.
func (f Frame) IsValid() bool {
	return f != InvalidFrame
}

// Address returns the physical address of the start of this frame.
func (f Frame) Address() uintptr {
	return uintptr(f) << mem.PageShift
}
