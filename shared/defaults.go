package shared

const (
	// MinCapacity is the lower clamp for the configured capacity of a
	// filter. Smaller capacities are silently raised to this value.
	MinCapacity = 16

	// MinBuckets is the slot count of the first hash table. Tables always
	// hold a power of two number of slots, so the bucket index can be
	// computed with a bitwise AND.
	MinBuckets = 16

	// KeyBits is the number of key bits stored in a slot. The remaining
	// 8 bits of the slot word hold the distance from the ideal bucket.
	KeyBits = 56

	// KeyMask extracts the key payload from a slot word.
	KeyMask = 1<<KeyBits - 1
)
