// Package hasher derives 64-bit filter keys from application values.
// The filter scrambles every key itself, so integer keys pass through
// unchanged and only variable-length values need a real hash, which is
// XXH3 here.
package hasher

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/zeebo/xxh3"
)

// HashFn is a function that returns the 64-bit filter key for 't'.
type HashFn[T any] func(t T) uint64

// Bytes returns the filter key for a byte slice.
func Bytes(b []byte) uint64 {
	return xxh3.Hash(b)
}

// String returns the filter key for a string.
func String(s string) uint64 {
	return xxh3.HashString(s)
}

// GetHasher returns a hasher for the golang default types.
func GetHasher[Key any]() HashFn[Key] {
	var key Key
	kind := reflect.ValueOf(&key).Elem().Type().Kind()

	switch kind {
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		switch unsafe.Sizeof(key) {
		case 4:
			return *(*func(Key) uint64)(unsafe.Pointer(&hashDword))
		case 8:
			return *(*func(Key) uint64)(unsafe.Pointer(&hashQword))

		default:
			panic("unsupported integer byte size")
		}

	case reflect.Int8, reflect.Uint8:
		return *(*func(Key) uint64)(unsafe.Pointer(&hashByte))
	case reflect.Int16, reflect.Uint16:
		return *(*func(Key) uint64)(unsafe.Pointer(&hashWord))
	case reflect.Int32, reflect.Uint32:
		return *(*func(Key) uint64)(unsafe.Pointer(&hashDword))
	case reflect.Int64, reflect.Uint64:
		return *(*func(Key) uint64)(unsafe.Pointer(&hashQword))
	case reflect.Float32:
		return *(*func(Key) uint64)(unsafe.Pointer(&hashFloat32))
	case reflect.Float64:
		return *(*func(Key) uint64)(unsafe.Pointer(&hashFloat64))
	case reflect.String:
		return *(*func(Key) uint64)(unsafe.Pointer(&hashString))

	default:
		panic(fmt.Sprintf("unsupported key type %T of kind %v", key, kind))
	}
}

var hashByte = func(in uint8) uint64 {
	return uint64(in)
}

var hashWord = func(in uint16) uint64 {
	return uint64(in)
}

var hashDword = func(in uint32) uint64 {
	return uint64(in)
}

var hashQword = func(in uint64) uint64 {
	return in
}

var hashFloat32 = func(in float32) uint64 {
	p := unsafe.Pointer(&in)
	return uint64(*(*uint32)(p))
}

var hashFloat64 = func(in float64) uint64 {
	p := unsafe.Pointer(&in)
	return *(*uint64)(p)
}

var hashString = func(s string) uint64 {
	return xxh3.HashString(s)
}
