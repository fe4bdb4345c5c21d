package bloom

import "math"

// OptimalM returns ceil(-n * ln(p) / (ln 2)^2), the bit length for n items
// at false positive rate p.
func OptimalM(n uint64, p float64) uint64 {
	return uint64(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))
}

// OptimalK returns ceil(-ln(p) / ln 2).
func OptimalK(p float64) uint32 {
	return uint32(math.Ceil(-math.Log(p) / math.Ln2))
}
