package economy

import (
	"math/rand/v2"

	"breadbot/internal/domain"
)

// mathRand backs the engine's draws with math/rand/v2.
type mathRand struct{ r *rand.Rand }

// NewRand returns the production random source.
func NewRand() domain.RandomSource {
	return mathRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRand returns a deterministic source for replays and tests.
func NewSeededRand(seed uint64) domain.RandomSource {
	return mathRand{r: rand.New(rand.NewPCG(seed, seed))}
}

func (m mathRand) IntN(n int) int        { return m.r.IntN(n) }
func (m mathRand) Chance(p float64) bool { return m.r.Float64() < p }
