//go:build 386

package vmm

// levelCount is the depth of the paging hierarchy: page directory, page
// table.
const levelCount = 2

// entryBits is log2(entriesPerTable); each level consumes this many bits of
// the virtual address.
const entryBits = 10

// entriesPerTable is the number of page-table entries per table.
const entriesPerTable = 1 << entryBits

// recursiveIndex is the fixed top-level slot whose entry points back at the
// table that holds it.
const recursiveIndex = 0x3FF

// heapStart and heapSize bound the virtual address range the global heap
// allocator sweeps for free pages, placed below the recursive self-map
// window at the top 4MiB of the 32-bit address space.
const heapStart = uintptr(0xC0000000)
const heapSize = uintptr(0x30000000) // 768MiB of heap address space
