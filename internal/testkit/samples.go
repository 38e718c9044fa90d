package testkit

import (
	"math/rand"

	"gocompare/domain/comparison"
)

// Generator draws reproducible synthetic samples from a seeded source.
// A Generator is not safe for concurrent use; give each goroutine its own seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Normal draws n values from N(mu, sigma^2)
func (g *Generator) Normal(n int, mu, sigma float64) comparison.Sample {
	return g.draw(n, func() float64 { return mu + sigma*g.rng.NormFloat64() })
}

// Exponential draws n values from Exp(rate)
func (g *Generator) Exponential(n int, rate float64) comparison.Sample {
	return g.draw(n, func() float64 { return g.rng.ExpFloat64() / rate })
}

// Uniform draws n values from U(lo, hi)
func (g *Generator) Uniform(n int, lo, hi float64) comparison.Sample {
	return g.draw(n, func() float64 { return lo + (hi-lo)*g.rng.Float64() })
}

// Constant returns n copies of v
func (g *Generator) Constant(n int, v float64) comparison.Sample {
	return g.draw(n, func() float64 { return v })
}

func (g *Generator) draw(n int, next func() float64) comparison.Sample {
	values := make([]float64, n)
	for i := range values {
		values[i] = next()
	}
	return comparison.MustSample(values...)
}

// AcceptanceRate runs trial for i in [0, trials) and returns the share of trials that
// reported true. The first error aborts the run.
func AcceptanceRate(trials int, trial func(i int) (bool, error)) (float64, error) {
	if trials <= 0 {
		return 0, nil
	}
	accepted := 0
	for i := 0; i < trials; i++ {
		ok, err := trial(i)
		if err != nil {
			return 0, err
		}
		if ok {
			accepted++
		}
	}
	return float64(accepted) / float64(trials), nil
}
