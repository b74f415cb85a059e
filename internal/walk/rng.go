package walk

import (
	"hash/fnv"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Seed fully determines a walk's pseudo-random draws.
type Seed string

// SeedFromInt returns the seed for an integer, formatted in base 10.
// SeedFromInt(42) and Seed("42") are the same seed.
func SeedFromInt(n int64) Seed {
	return Seed(strconv.FormatInt(n, 10))
}

func (s Seed) normalized() string {
	return norm.NFC.String(string(s))
}

// Rand is a seeded xorshift128+ generator.
//
// Rand is not safe for concurrent use; each Walker owns one.
type Rand struct {
	s0, s1 uint64
}

// NewRand creates a generator seeded from seed. Seeds are compared in
// NFC form, so canonically equivalent spellings give the same draws.
func NewRand(seed Seed) *Rand {
	h := fnv.New64a()
	h.Write([]byte(seed.normalized()))
	state := h.Sum64()

	r := &Rand{}
	r.s0 = splitmix64(&state)
	r.s1 = splitmix64(&state)
	if r.s0 == 0 && r.s1 == 0 {
		// xorshift never leaves the all-zero state.
		r.s0 = 1
	}
	return r
}

// splitmix64 advances state and returns the next SplitMix64 output.
func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Uint64 returns the next xorshift128+ output.
func (r *Rand) Uint64() uint64 {
	s1 := r.s0
	s0 := r.s1
	result := s0 + s1
	r.s0 = s0
	s1 ^= s1 << 23
	r.s1 = s1 ^ s0 ^ (s1 >> 18) ^ (s0 >> 5)
	return result
}

// Float64 returns a uniform value in [0, 1) built from the top 53 bits.
func (r *Rand) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}
