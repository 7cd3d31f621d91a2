// Package robin implements an open-addressed hash set of 56-bit keys that
// uses linear probing in combination with robin hood hashing as collision
// strategy. The set tracks the distance from the optimum bucket and
// minimizes the variance over all buckets.
//
// Each slot is a single 64-bit word: the low 56 bits hold the key, the
// high 8 bits hold the distance from the ideal bucket (dib). A dib of zero
// marks a free slot, occupied slots start at one. Keys are expected to be
// mixed before insertion; the set itself does no hashing beyond masking
// the key into the slot array.
//
// The set has a fixed capacity. The caller keeps the load factor at or
// below one half and swaps in a larger set before an insertion would
// exceed it, which also bounds every probe chain.
package robin

import (
	"github.com/EinfachAndy/bloomset/shared"
)

const (
	dibShift = shared.KeyBits
	keyMask  = shared.KeyMask
)

// Set is a fixed-capacity robin hood hash set of 56-bit keys.
type Set struct {
	slots []uint64
	// length stores the current inserted elements
	length uint64
	// capMinus1 is used for a bitwise AND on the key,
	// because the size of the underlying array is a power of two value
	capMinus1 uint64
}

// NewSet creates a set with the given power of two slot count. The slot
// storage comes from alloc, which must return zeroed memory. Returns nil
// if the allocation failed.
func NewSet(nbuckets uint64, alloc shared.AllocFn) *Set {
	slots := alloc(int(nbuckets))
	if slots == nil {
		return nil
	}

	return &Set{
		slots:     slots,
		capMinus1: nbuckets - 1,
	}
}

// Add inserts the given pre-mixed key, which must already be truncated
// to 56 bits.
// Returns true, if the key is a new item in the set.
func (s *Set) Add(key uint64) bool {
	var (
		idx = key & s.capMinus1
		dib = uint64(1)
	)

	for {
		slot := s.slots[idx]
		stored := slot >> dibShift

		if stored == 0 {
			// emplace the element, a free slot was found
			s.slots[idx] = dib<<dibShift | key
			s.length++
			return true
		}

		if slot&keyMask == key {
			return false // already inserted
		}

		if stored < dib {
			// swap values, apply the Robin Hood creed:
			// "takes from the rich and gives to the poor".
			// rich means, low dib
			// poor means, higher dib
			s.slots[idx] = dib<<dibShift | key
			key = slot & keyMask
			dib = stored
		}

		// next index
		dib++
		idx = (idx + 1) & s.capMinus1
	}
}

// Has reports whether the given pre-mixed 56-bit key is in the set.
func (s *Set) Has(key uint64) bool {
	idx := key & s.capMinus1

	for dib := uint64(1); ; dib++ {
		slot := s.slots[idx]
		if slot>>dibShift < dib {
			// insertion would have stolen this slot,
			// the key cannot be further along the chain
			return false
		}
		if slot&keyMask == key {
			return true
		}
		// next index
		idx = (idx + 1) & s.capMinus1
	}
}

// Each calls 'fn' on every key in the set in no particular order.
// If 'fn' returns true, the iteration stops.
func (s *Set) Each(fn func(key uint64) bool) {
	for _, slot := range s.slots {
		if slot>>dibShift != 0 {
			if stop := fn(slot & keyMask); stop {
				// stop iteration
				return
			}
		}
	}
}

// Clear removes all keys from the set. The slot storage is retained.
func (s *Set) Clear() {
	for i := range s.slots {
		s.slots[i] = 0
	}

	s.length = 0
}

// Len returns the number of keys in the set.
func (s *Set) Len() uint64 {
	return s.length
}

// Buckets returns the number of slots.
func (s *Set) Buckets() uint64 {
	return s.capMinus1 + 1
}

// Load return the current load of the set.
func (s *Set) Load() float32 {
	return float32(s.length) / float32(len(s.slots))
}

// Free hands the slot storage back to the given releaser and leaves the
// set unusable. A nil releaser drops the storage on the floor.
func (s *Set) Free(free shared.FreeFn) {
	if free != nil {
		free(s.slots)
	}
	s.slots = nil
	s.length = 0
}
