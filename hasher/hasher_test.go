package hasher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zeebo/xxh3"

	"github.com/EinfachAndy/bloomset/hasher"
)

func TestIntegerKeysPassThrough(t *testing.T) {
	assert.Equal(t, uint64(12031), hasher.GetHasher[uint64]()(12031))
	assert.Equal(t, uint64(77), hasher.GetHasher[int]()(77))
	assert.Equal(t, uint64(42), hasher.GetHasher[uint32]()(42))
	assert.Equal(t, uint64(7), hasher.GetHasher[int16]()(7))
	assert.Equal(t, uint64(255), hasher.GetHasher[uint8]()(255))
}

func TestStringKeys(t *testing.T) {
	hash := hasher.GetHasher[string]()

	assert.Equal(t, xxh3.HashString("foo"), hash("foo"))
	assert.Equal(t, hasher.String("foo"), hash("foo"))
	assert.Equal(t, hasher.Bytes([]byte("foo")), hash("foo"))
	assert.NotEqual(t, hash("foo"), hash("bar"))
}

func TestFloatKeys(t *testing.T) {
	hash := hasher.GetHasher[float64]()

	assert.Equal(t, hash(1.5), hash(1.5))
	assert.NotEqual(t, hash(1.5), hash(2.5))

	// distinct bit patterns, same numeric value
	assert.NotEqual(t, hash(0.0), hash(negZero()))
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestUnsupportedKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		hasher.GetHasher[struct{ a, b int }]()
	})
}
