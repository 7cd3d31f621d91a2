// Package bloom implements the bit array of a classical Bloom filter.
//
// The array length is a power of two, so every probe reduces into the
// array with a bitwise AND instead of a modulo. Keys are expected to be
// mixed and truncated to 56 bits before they reach this package; the
// probe sequence derives the remaining bit indices by reapplying the last
// two stages of the mixer, which makes the sequence deterministic per key.
package bloom

import (
	"math/bits"

	"github.com/EinfachAndy/bloomset/shared"
)

// Bits is a Bloom bit array of a power of two length with a fixed number
// of probed positions per key.
type Bits struct {
	words []uint64
	// mask is m-1, used for a bitwise AND on the probe state,
	// because the number of bits is a power of two value
	mask uint64
	k    int
}

// New creates a zeroed bit array of m bits, probing k positions per key.
// m must be a power of two and k at least one. The storage comes from
// alloc, which must return zeroed memory. Returns nil if the allocation
// failed.
func New(m uint64, k int, alloc shared.AllocFn) *Bits {
	words := alloc(int((m + 63) / 64))
	if words == nil {
		return nil
	}

	return &Bits{
		words: words,
		mask:  m - 1,
		k:     k,
	}
}

// Add sets the k bits of the given pre-mixed 56-bit key.
func (b *Bits) Add(key uint64) {
	j := key & b.mask
	b.words[j>>6] |= 1 << (j & 63)

	for i := 1; i < b.k; i++ {
		key = shared.Reprobe(key)
		j = key & b.mask
		b.words[j>>6] |= 1 << (j & 63)
	}
}

// Has reports whether all k bits of the given pre-mixed 56-bit key are
// set. It may return a false positive, but false is definitive.
func (b *Bits) Has(key uint64) bool {
	j := key & b.mask
	if b.words[j>>6]&(1<<(j&63)) == 0 {
		return false
	}

	for i := 1; i < b.k; i++ {
		key = shared.Reprobe(key)
		j = key & b.mask
		if b.words[j>>6]&(1<<(j&63)) == 0 {
			return false
		}
	}

	return true
}

// Clear zeroes the bit array. The storage is retained.
func (b *Bits) Clear() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// NumBits returns the number of bits m.
func (b *Bits) NumBits() uint64 {
	return b.mask + 1
}

// Size returns the array size in bytes.
func (b *Bits) Size() uint64 {
	return (b.mask + 1) / 8
}

// OnesCount returns the number of set bits.
func (b *Bits) OnesCount() (n int) {
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Free hands the storage back to the given releaser and leaves the array
// unusable. A nil releaser drops the storage on the floor.
func (b *Bits) Free(free shared.FreeFn) {
	if free != nil {
		free(b.words)
	}
	b.words = nil
}
