package sim

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Population is the mass distribution over the proteoform space, indexed
// by proteoform ID.
type Population []float64

func (p Population) Clone() Population {
	c := make(Population, len(p))
	copy(c, p)
	return c
}

func (p Population) Total() float64 {
	return floats.Sum(p)
}

func (p Population) IsValid() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Normalize rescales the population so its total equals ref, guarding
// the division against a fully decayed population.
func (p Population) Normalize(ref float64) {
	total := floats.Sum(p)
	floats.Scale(ref/math.Max(total, massEpsilon), p)
}

// Metric observes the population once per completed step and reduces the
// run to a scalar.
type Metric interface {
	Name() string
	Observe(step int, pop Population)
	Value() float64
	Reset()
}

// Observer receives each completed step.
type Observer interface {
	OnStep(step int, pop Population)
}

// Config drives one evolution run.
type Config struct {
	Steps          int
	Ensemble       int
	ResamplePeriod int
	Initial        int     // proteoform ID carrying all initial mass
	Mass           float64 // reference total mass, conserved every step
}

func DefaultConfig() Config {
	return Config{
		Steps:          1000,
		Ensemble:       10,
		ResamplePeriod: 100,
		Mass:           100,
	}
}

// Result retains the full trajectory history for the diagnostics layer.
// History[0] is the initial population; History[s] the population after
// step s.
type Result struct {
	History    []Population
	StepsTaken int
	Metrics    map[string]float64
}
