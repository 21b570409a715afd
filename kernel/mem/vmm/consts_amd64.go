//go:build amd64

package vmm

// levelCount is the depth of the paging hierarchy: PML4, PDPT, PD, PT.
const levelCount = 4

// entryBits is log2(entriesPerTable); each level consumes this many bits of
// the virtual address.
const entryBits = 9

// entriesPerTable is the number of page-table entries per table.
const entriesPerTable = 1 << entryBits

// recursiveIndex is the fixed top-level slot whose entry points back at the
// table that holds it, giving every table in the hierarchy a stable virtual
// address. 0x1FE (510), not 0x1FF, to match this kernel's chosen layout; see
// the open-question note in the repository root documentation.
const recursiveIndex = 0x1FE

// canonicalHoleBit is the first bit (0-based) that must be sign-extended to
// produce a canonical amd64 virtual address.
const canonicalHoleBit = 47

// heapStart and heapSize bound the virtual address range the global heap
// allocator sweeps for free pages. This range sits in the canonical lower
// half, well below the recursive self-map window that occupies the top of
// the address space.
const heapStart = uintptr(0x0000600000000000)
const heapSize = uintptr(0x0000000100000000) // 4GiB of heap address space
