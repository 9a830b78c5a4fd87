package timeseries

import (
	"math"
	"math/rand"
	"time"
)

// SyntheticConfig describes a generated series: a linear trend plus a
// sinusoidal seasonal cycle plus gaussian noise.
type SyntheticConfig struct {
	Name      string
	Start     time.Time
	Freq      int
	Base      float64 // level at the first observation
	Trend     float64 // increment per observation
	Amplitude float64 // seasonal swing
	Period    int     // observations per seasonal cycle
	Noise     float64 // noise standard deviation
	Seed      int64
}

// Generator produces deterministic synthetic series from a seeded source.
type Generator struct {
	cfg SyntheticConfig
	rng *rand.Rand
}

// NewGenerator builds a generator. Zero-value fields get monthly defaults.
func NewGenerator(cfg SyntheticConfig) *Generator {
	if cfg.Name == "" {
		cfg.Name = "synthetic"
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if cfg.Freq <= 0 {
		cfg.Freq = 12
	}
	if cfg.Period <= 0 {
		cfg.Period = cfg.Freq
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Additive generates n observations of base + trend·t + seasonal + noise.
func (g *Generator) Additive(n int) *Series {
	values := make([]float64, n)
	for i := range values {
		seasonal := g.cfg.Amplitude * math.Sin(2*math.Pi*float64(i)/float64(g.cfg.Period))
		values[i] = g.cfg.Base + g.cfg.Trend*float64(i) + seasonal + g.rng.NormFloat64()*g.cfg.Noise
	}
	return New(g.cfg.Name, g.cfg.Start, g.cfg.Freq, values)
}

// Multiplicative generates a strictly positive series whose log is the
// additive pattern, matching data a log transform is meant for.
func (g *Generator) Multiplicative(n int) *Series {
	s := g.Additive(n)
	for i, v := range s.Values {
		s.Values[i] = math.Exp(v)
	}
	return s
}
