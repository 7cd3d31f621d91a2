// Package bloomset implements an approximate membership set that adapts
// its representation to the population it actually sees.
//
// A filter is configured with a capacity n and a target false-positive
// rate p. It starts out as an exact robin hood hash set, so small
// populations pay only for the keys they insert and lookups are exact.
// Once the hash set would outgrow the memory of the Bloom filter sized
// for (n, p), the set is converted into that Bloom filter. The conversion
// is one-way: from then on a lookup of a key that was added always
// returns true, but a lookup of a key that was never added may return
// true with probability close to p (a false positive). False negatives
// are impossible in either mode.
//
// Keys are opaque 64-bit integers. Every key is scrambled internally, so
// sequential or otherwise structured keys are fine. Non-integer keys must
// be reduced to 64 bits first; the hasher subpackage and the *String and
// *Bytes methods cover the common cases.
//
// A filter is not safe for concurrent use.
package bloomset

import (
	"errors"
	"fmt"
	"math"

	"github.com/EinfachAndy/bloomset/bloom"
	"github.com/EinfachAndy/bloomset/hasher"
	"github.com/EinfachAndy/bloomset/robin"
	"github.com/EinfachAndy/bloomset/shared"
)

var (
	// ErrOutOfMemory signals that the configured allocator could not
	// serve a grow request. The filter is left in its previous state.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrOutOfRange signals an out of range configuration value.
	ErrOutOfRange = errors.New("out of range")
)

// Config is used by the factory to create and configure a filter.
type Config struct {
	// Capacity is the expected upper bound of distinct keys. Values below
	// 16 are raised to 16. The Bloom representation is sized from it.
	Capacity uint64
	// FPRate is the target false-positive rate after conversion, in the
	// open range (0.0,1.0).
	FPRate float64
	// Alloc provides storage for both representations. It must return
	// zeroed slices and nil when no memory is available.
	// If unset the Go heap is used.
	Alloc shared.AllocFn
	// Free releases storage obtained from Alloc. May be nil.
	Free shared.FreeFn
}

// Filter is a dual-mode membership set. The zero value is not usable,
// use one of the constructors.
type Filter struct {
	n uint64
	p float64
	// m and k are the Bloom geometry derived from (n, p): total bits and
	// probed positions per key. Fixed at construction.
	m uint64
	k int

	// Exactly one of table and bits is non-nil once a key was added.
	table *robin.Set
	bits  *bloom.Bits

	alloc shared.AllocFn
	free  shared.FreeFn
}

// New creates a filter for the given capacity and target false-positive
// rate. It panics if fpRate is outside the open range (0.0,1.0).
func New(capacity uint64, fpRate float64) *Filter {
	return MustNew(Config{Capacity: capacity, FPRate: fpRate})
}

// MustNew same as 'NewWithConfig' but panics if and only if an error occurs.
func MustNew(cfg Config) *Filter {
	f, err := NewWithConfig(cfg)
	if err != nil {
		panic(err.Error())
	}
	return f
}

// NewWithConfig creates a filter from the given configuration. No storage
// is allocated until the first insertion.
// Returns ErrOutOfRange if the false-positive rate is not in (0.0,1.0).
func NewWithConfig(cfg Config) (*Filter, error) {
	if math.IsNaN(cfg.FPRate) || cfg.FPRate <= 0.0 || cfg.FPRate >= 1.0 {
		return nil, fmt.Errorf("%f: %w", cfg.FPRate, ErrOutOfRange)
	}

	if cfg.Alloc == nil {
		cfg.Alloc = shared.DefaultAlloc
	}

	n := cfg.Capacity
	if n < shared.MinCapacity {
		n = shared.MinCapacity
	}
	m, k := deriveParams(n, cfg.FPRate)

	return &Filter{
		n:     n,
		p:     cfg.FPRate,
		m:     m,
		k:     k,
		alloc: cfg.Alloc,
		free:  cfg.Free,
	}, nil
}

// Add inserts the given key. Inserting a key that is already a member
// stores nothing new, but when the hash set is at half load the grow (or
// conversion) still runs first. Returns ErrOutOfMemory if the allocator could not serve a
// required grow; the filter then still holds every previously added key
// and the failed key is not inserted.
func (f *Filter) Add(key uint64) error {
	h := shared.Mix13(key) & shared.KeyMask

	if f.bits != nil {
		f.bits.Add(h)
		return nil
	}

	if f.table == nil || f.table.Len() == f.table.Buckets()/2 {
		if err := f.grow(); err != nil {
			return fmt.Errorf("add: %w", err)
		}
		if f.bits != nil {
			// the grow converted the set, the key goes into the bit array
			f.bits.Add(h)
			return nil
		}
	}

	f.table.Add(h)
	return nil
}

// Has reports whether the given key is a member. Before the conversion
// the answer is exact. Afterwards false is definitive and true may be a
// false positive.
func (f *Filter) Has(key uint64) bool {
	h := shared.Mix13(key) & shared.KeyMask

	if f.bits != nil {
		return f.bits.Has(h)
	}
	if f.table == nil {
		return false
	}
	return f.table.Has(h)
}

// AddBytes inserts a byte-slice key, derived with XXH3.
func (f *Filter) AddBytes(key []byte) error {
	return f.Add(hasher.Bytes(key))
}

// HasBytes reports whether a byte-slice key is a member.
func (f *Filter) HasBytes(key []byte) bool {
	return f.Has(hasher.Bytes(key))
}

// AddString inserts a string key, derived with XXH3.
func (f *Filter) AddString(key string) error {
	return f.Add(hasher.String(key))
}

// HasString reports whether a string key is a member.
func (f *Filter) HasString(key string) bool {
	return f.Has(hasher.String(key))
}

// grow installs the first hash table, doubles the current one, or
// converts it into the Bloom representation once the doubled table would
// meet or exceed the Bloom byte size. On failure the filter is unchanged.
func (f *Filter) grow() error {
	if f.table == nil {
		table := robin.NewSet(shared.MinBuckets, f.alloc)
		if table == nil {
			return ErrOutOfMemory
		}
		f.table = table
		return nil
	}

	nbuckets := f.table.Buckets() * 2
	if nbuckets*8 >= f.m/8 {
		return f.upgrade()
	}

	table := robin.NewSet(nbuckets, f.alloc)
	if table == nil {
		return ErrOutOfMemory
	}

	f.table.Each(func(key uint64) bool {
		table.Add(key)
		return false
	})
	f.table.Free(f.free)
	f.table = table

	return nil
}

// upgrade converts the hash set into the Bloom representation. The stored
// keys are already mixed and truncated, they feed the probe sequence
// unchanged so prior memberships survive the conversion.
func (f *Filter) upgrade() error {
	bits := bloom.New(f.m, f.k, f.alloc)
	if bits == nil {
		return ErrOutOfMemory
	}

	f.table.Each(func(key uint64) bool {
		bits.Add(key)
		return false
	})
	f.table.Free(f.free)
	f.table = nil
	f.bits = bits

	return nil
}

// Clear removes all keys. The filter keeps its current representation
// and storage: a converted filter stays converted.
func (f *Filter) Clear() {
	if f.bits != nil {
		f.bits.Clear()
		return
	}
	if f.table != nil {
		f.table.Clear()
	}
}

// Upgraded reports whether the filter has converted to the Bloom
// representation and membership answers are approximate.
func (f *Filter) Upgraded() bool {
	return f.bits != nil
}

// Memsize returns the current storage footprint in bytes.
func (f *Filter) Memsize() uint64 {
	if f.bits != nil {
		return f.bits.Size()
	}
	if f.table != nil {
		return f.table.Buckets() * 8
	}
	return 0
}

// Count returns the number of live keys in the exact representation.
// After the conversion the exact count is gone and Count returns 0,
// see Cardinality for an estimate.
func (f *Filter) Count() uint64 {
	if f.table != nil {
		return f.table.Len()
	}
	return 0
}

// Load return the current load of the hash set, or 0 after conversion.
func (f *Filter) Load() float32 {
	if f.table == nil {
		return 0
	}
	return f.table.Load()
}

// Empty reports whether no key is observable.
func (f *Filter) Empty() bool {
	if f.bits != nil {
		return f.bits.OnesCount() == 0
	}
	if f.table != nil {
		return f.table.Len() == 0
	}
	return true
}

// Capacity returns the configured capacity, clamped to the minimum of 16.
func (f *Filter) Capacity() uint64 {
	return f.n
}

// TargetFPRate returns the configured false-positive rate.
func (f *Filter) TargetFPRate() float64 {
	return f.p
}

// NumBits returns the number of bits m of the Bloom representation the
// filter converts to.
func (f *Filter) NumBits() uint64 {
	return f.m
}

// NumHashes returns the number of probed bit positions per key.
func (f *Filter) NumHashes() int {
	return f.k
}

// Destroy releases both storages through the configured releaser. The
// filter must not be used afterwards.
func (f *Filter) Destroy() {
	if f.table != nil {
		f.table.Free(f.free)
		f.table = nil
	}
	if f.bits != nil {
		f.bits.Free(f.free)
		f.bits = nil
	}
}
