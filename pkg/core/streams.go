// Package core holds host-side random helpers shared by grid seeding and
// the tools.
package core

import "math/rand/v2"

// Streams derives independent, reproducible generators from one seed. Each
// stream index selects its own PCG sequence.
type Streams struct {
	seed uint64
}

// NewStreams returns the stream family for seed.
func NewStreams(seed int64) Streams {
	return Streams{seed: uint64(seed)}
}

// Rand returns the generator for stream i. Calling it twice with the same i
// yields generators producing the same values.
func (s Streams) Rand(i uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, i))
}

// FillUniform fills buf with i.i.d. uniform values in [0, 1).
func FillUniform(r *rand.Rand, buf []float32) {
	for i := range buf {
		buf[i] = r.Float32()
	}
}
