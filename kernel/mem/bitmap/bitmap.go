// Package bitmap implements a flat bit-vector used by the physical frame
// allocator to track free/used frames. Bits are packed into uint64 words,
// bit 0 of word 0 is the lowest-addressed bit.
package bitmap

import "math/bits"

const bitsPerWord = 64

// Bitmap is a fixed-size vector of bits backed by a uint64 slice.
type Bitmap struct {
	words []uint64
}

// New wraps an existing word slice as a Bitmap. The caller owns the backing
// storage; New does not copy it.
func New(words []uint64) *Bitmap {
	return &Bitmap{words: words}
}

// Len returns the bitmap's capacity in bits.
func (b *Bitmap) Len() int {
	return len(b.words) * bitsPerWord
}

// Get reports whether bit index is set.
func (b *Bitmap) Get(index int) bool {
	if index < 0 || index >= b.Len() {
		panic("bitmap: index out of range")
	}
	return b.words[index/bitsPerWord]&(1<<uint(index%bitsPerWord)) != 0
}

// SetOnes sets every bit in the half-open range [lo, hi) to 1. It panics if
// the range is empty or extends past the bitmap's capacity.
func (b *Bitmap) SetOnes(lo, hi int) {
	b.setRange(lo, hi, true)
}

// SetZeros clears every bit in the half-open range [lo, hi) to 0. It panics
// under the same conditions as SetOnes.
func (b *Bitmap) SetZeros(lo, hi int) {
	b.setRange(lo, hi, false)
}

func (b *Bitmap) setRange(lo, hi int, ones bool) {
	if hi <= lo {
		panic("bitmap: empty range")
	}
	if lo < 0 || hi > b.Len() {
		panic("bitmap: range out of bounds")
	}

	startWord := lo / bitsPerWord
	endWord := (hi - 1) / bitsPerWord
	for w := startWord; w <= endWord; w++ {
		mask := ^uint64(0)
		if w == startWord {
			mask &= ^uint64(0) << uint(lo%bitsPerWord)
		}
		if w == endWord {
			if rem := uint(hi % bitsPerWord); rem != 0 {
				mask &= ^(^uint64(0) << rem)
			}
		}

		if ones {
			b.words[w] |= mask
		} else {
			b.words[w] &^= mask
		}
	}
}

// MergeUsedFrom ORs every bit set in other into b, word at a time, over the
// range common to both bitmaps' capacities. It is used to replay one
// bitmap's used bits into a differently sized replacement instead of
// discarding them: see pmm.InitFromMemoryMap's two-phase init.
func (b *Bitmap) MergeUsedFrom(other *Bitmap) {
	n := len(b.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for w := 0; w < n; w++ {
		b.words[w] |= other.words[w]
	}
}

// Range is a half-open bit index interval [Start, End).
type Range struct {
	Start, End int
}

// Len reports the number of bits covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// ZeroRun lazily walks a Bitmap emitting runs of consecutive zero bits that
// are at least fits bits long. Runs are produced in increasing start order
// and never overlap. Emission is greedy: a zero stretch that crosses word
// boundaries is emitted at the first word end where it reaches fits, so a
// long zero stretch can come out as several adjacent runs rather than one
// maximal run.
type ZeroRun struct {
	bm         *Bitmap
	blockIndex int
	block      uint64
	index      int
	fits       int
}

// ConsecutiveZeros returns an iterator over runs of at least fits
// consecutive zero bits. It panics if fits is not positive.
func (b *Bitmap) ConsecutiveZeros(fits int) *ZeroRun {
	if fits <= 0 {
		panic("bitmap: fits must be positive")
	}
	return &ZeroRun{bm: b, block: b.wordAt(0), fits: fits}
}

func (b *Bitmap) wordAt(i int) uint64 {
	if i < len(b.words) {
		return b.words[i]
	}
	return 0
}

// Next returns the next qualifying run, or false once the bitmap is
// exhausted.
func (it *ZeroRun) Next() (Range, bool) {
	for it.blockIndex < len(it.bm.words) {
		if it.block == 0 {
			index := it.index
			nextIndex := (it.blockIndex + 1) * bitsPerWord
			if nextIndex-index >= it.fits {
				it.index = nextIndex
				it.blockIndex++
				it.block = it.bm.wordAt(it.blockIndex)
				return Range{index, nextIndex}, true
			}
		}

		for it.block != 0 {
			index := it.index
			nextIndex := it.blockIndex*bitsPerWord + bits.TrailingZeros64(it.block)
			it.index = nextIndex + 1
			it.block &= it.block - 1 // clear the lowest set bit
			if nextIndex-index >= it.fits {
				return Range{index, nextIndex}, true
			}
		}

		index := it.index
		nextIndex := it.index + bits.LeadingZeros64(it.bm.words[it.blockIndex])
		it.blockIndex++
		if nextIndex-index >= it.fits {
			it.index = nextIndex
			it.block = it.bm.wordAt(it.blockIndex)
			return Range{index, nextIndex}, true
		}
		it.block = it.bm.wordAt(it.blockIndex)
	}

	return Range{}, false
}
