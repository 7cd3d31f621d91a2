package shared

// Multipliers of the mix13 finalizer, see:
//   - https://zimbry.blogspot.com/2011/09/better-bit-mixing-improving-on.html
const (
	mixMul1 = 0xbf58476d1ce4e5b9
	mixMul2 = 0x94d049bb133111eb
)

// Mix13 scrambles a 64-bit key with the mix13 variant of the splitmix64
// finalizer. The mapping is bijective, so distinct keys stay distinct.
func Mix13(key uint64) uint64 {
	key ^= key >> 30
	key *= mixMul1
	key ^= key >> 27
	key *= mixMul2
	key ^= key >> 31
	return key
}

// Reprobe runs the last two mix13 stages. The Bloom probe sequence applies
// it once per additional hash to derive the next bit index from the
// previous probe state.
func Reprobe(key uint64) uint64 {
	key *= mixMul2
	key ^= key >> 31
	return key
}
