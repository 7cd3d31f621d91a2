package robin

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EinfachAndy/bloomset/shared"
)

func newTestSet(t *testing.T, nbuckets uint64) *Set {
	t.Helper()
	s := NewSet(nbuckets, shared.DefaultAlloc)
	require.NotNil(t, s)
	return s
}

// checkInvariant verifies for every occupied slot that the stored dib
// matches the distance from the ideal bucket and that the slot before it
// on the probe chain is at most one step richer.
func checkInvariant(t *testing.T, s *Set) {
	t.Helper()

	for i, slot := range s.slots {
		dib := slot >> dibShift
		if dib == 0 {
			continue
		}

		ideal := (slot & keyMask) & s.capMinus1
		want := (uint64(i)-ideal)&s.capMinus1 + 1
		if dib != want {
			t.Fatalf("slot %d: dib %d, distance from ideal bucket %d", i, dib, want)
		}

		if dib >= 2 {
			prev := s.slots[(uint64(i)-1)&s.capMinus1]
			if prev>>dibShift < dib-1 {
				t.Fatalf("slot %d: dib %d after a slot with dib %d",
					i, dib, prev>>dibShift)
			}
		}
	}
}

func TestAddHas(t *testing.T) {
	s := newTestSet(t, 16)

	assert.True(t, s.Add(1))
	assert.True(t, s.Add(2))
	assert.False(t, s.Add(1))

	assert.True(t, s.Has(1))
	assert.True(t, s.Has(2))
	assert.False(t, s.Has(3))
	assert.Equal(t, uint64(2), s.Len())
}

func TestDuplicateOccupiesOneSlot(t *testing.T) {
	s := newTestSet(t, 16)

	require.True(t, s.Add(12031))
	require.False(t, s.Add(12031))

	occupied := 0
	for _, slot := range s.slots {
		if slot>>dibShift != 0 {
			occupied++
		}
	}
	assert.Equal(t, 1, occupied)
	assert.Equal(t, uint64(1), s.Len())
}

func TestZeroKey(t *testing.T) {
	// a zero key must be distinguishable from a free slot, the dib byte
	// is the occupancy marker
	s := newTestSet(t, 16)

	assert.False(t, s.Has(0))
	assert.True(t, s.Add(0))
	assert.True(t, s.Has(0))
	assert.False(t, s.Add(0))
	assert.Equal(t, uint64(1), s.Len())
}

func TestRobinHoodInvariant(t *testing.T) {
	const nbuckets = 1024
	s := newTestSet(t, nbuckets)
	r := rand.New(rand.NewSource(0x0b1))

	for s.Len() < nbuckets/2 {
		s.Add(r.Uint64() & keyMask)
		checkInvariant(t, s)
	}
}

func TestCollidingIdealBuckets(t *testing.T) {
	// keys with the same low bits all hash to one bucket and must chain
	// with increasing distances
	s := newTestSet(t, 16)

	for i := uint64(0); i < 8; i++ {
		require.True(t, s.Add(i<<4|5))
	}
	for i := uint64(0); i < 8; i++ {
		assert.True(t, s.Has(i<<4|5))
	}
	assert.False(t, s.Has(8<<4|5))

	checkInvariant(t, s)
}

func TestClear(t *testing.T) {
	s := newTestSet(t, 16)

	for i := uint64(1); i <= 6; i++ {
		s.Add(i)
	}
	require.Equal(t, uint64(6), s.Len())

	s.Clear()

	assert.Equal(t, uint64(0), s.Len())
	assert.Equal(t, uint64(16), s.Buckets())
	for i := uint64(1); i <= 6; i++ {
		assert.False(t, s.Has(i))
	}
}

func TestEach(t *testing.T) {
	s := newTestSet(t, 32)

	want := map[uint64]bool{}
	for i := uint64(0); i < 16; i++ {
		key := i * 0x9e3779b9
		want[key] = true
		s.Add(key)
	}

	got := map[uint64]bool{}
	s.Each(func(key uint64) bool {
		got[key] = true
		return false
	})
	assert.Equal(t, want, got)

	// early stop
	seen := 0
	s.Each(func(key uint64) bool {
		seen++
		return true
	})
	assert.Equal(t, 1, seen)
}

func TestAllocFailure(t *testing.T) {
	s := NewSet(16, func(words int) []uint64 { return nil })
	assert.Nil(t, s)
}

func TestLoadFactor(t *testing.T) {
	s := newTestSet(t, 16)
	assert.Equal(t, float32(0), s.Load())

	for i := uint64(1); i <= 8; i++ {
		s.Add(i)
	}
	assert.Equal(t, float32(0.5), s.Load())
}

func TestFree(t *testing.T) {
	var freed [][]uint64
	s := newTestSet(t, 16)
	s.Add(1)

	s.Free(func(words []uint64) { freed = append(freed, words) })

	require.Len(t, freed, 1)
	assert.Len(t, freed[0], 16)
}
