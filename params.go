package bloomset

import (
	"math"

	"github.com/EinfachAndy/bloomset/shared"
)

// deriveParams computes the Bloom geometry for the clamped capacity n and
// the false-positive rate p. The textbook optimum
//
//	m = n * ln(p) / ln(1 / 2^ln(2))
//
// is rounded up to a power of two so probes reduce with a bitmask, and
// the number of hashes is rescaled by the rounding factor to keep the
// achieved rate close to p.
func deriveParams(n uint64, p float64) (m uint64, k int) {
	mraw := float64(n) * math.Log(p) / math.Log(1/math.Pow(2, math.Ln2))
	kraw := math.Round(mraw / float64(n) * math.Ln2)

	m = shared.NextPowerOf2(uint64(math.Ceil(mraw)))
	if m < 2 {
		m = 2
	}

	k = int(math.Round(mraw / float64(m) * kraw))
	if k < 1 {
		k = 1
	}

	return m, k
}

// Cardinality estimates the number of distinct keys added. Before the
// conversion the count is exact. Afterwards the return value is the
// maximum likelihood estimate from the bit population,
//
//	n ≈ -(m/k) * ln(1 - ones/m)
//
// which becomes +Inf when every bit is set.
func (f *Filter) Cardinality() float64 {
	if f.bits == nil {
		if f.table == nil {
			return 0
		}
		return float64(f.table.Len())
	}

	ones := f.bits.OnesCount()
	if ones == 0 {
		return 0
	}

	m := float64(f.m)
	return -m / float64(f.k) * math.Log1p(-float64(ones)/m)
}

// FPRate estimates the false-positive rate of the Bloom representation
// after nkeys distinct keys have been added:
//
//	(1 - e^(-k*nkeys/m))^k
func (f *Filter) FPRate(nkeys uint64) float64 {
	if nkeys == 0 {
		return 0
	}

	k := float64(f.k)
	return math.Pow(1-math.Exp(-k*float64(nkeys)/float64(f.m)), k)
}
