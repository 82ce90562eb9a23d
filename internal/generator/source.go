package generator

import (
	"math"
	"math/rand/v2"
)

// Reading is one synthetic sample for every sensor type.
type Reading struct {
	Temperature       float64
	Humidity          float64
	SoundLevel        float64
	DustConcentration float64
}

// Source produces a deterministic sequence of plausible readings.
//
// Two sources built with the same seed yield the same sequence.
// A Source is not safe for concurrent use.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a Source seeded with seed.
func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Next returns the next reading:
//
//	temperature        20 + U[-5, 10)   in [15, 30)
//	humidity           50 + U[-10, 30)  in [40, 80)
//	sound_level        40 + U[0, 40)    in [40, 80)
//	dust_concentration 20 + U[0, 30)    in [20, 50)
func (s *Source) Next() Reading {
	return Reading{
		Temperature:       s.sample(20, -5, 10),
		Humidity:          s.sample(50, -10, 30),
		SoundLevel:        s.sample(40, 0, 40),
		DustConcentration: s.sample(20, 0, 30),
	}
}

// sample returns base + U[lo, hi), kept strictly below base+hi.
func (s *Source) sample(base, lo, hi float64) float64 {
	v := base + lo + s.rng.Float64()*(hi-lo)
	// Rounding can land exactly on the open bound.
	if upper := base + hi; v >= upper {
		v = math.Nextafter(upper, math.Inf(-1))
	}
	return v
}
