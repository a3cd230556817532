package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/aruna-lab/redoxsim/internal/proteo"
	"github.com/aruna-lab/redoxsim/internal/sim"
)

// MeanOxidationLevel computes Σ k(i)·S[i] / T over the population.
func MeanOxidationLevel(pop sim.Population, space *proteo.Space) float64 {
	total := floats.Sum(pop)
	if total <= 0 {
		return 0
	}

	weighted := 0.0
	for id, mass := range pop {
		weighted += float64(space.Oxidation(id)) * mass
	}
	return weighted / total
}

// MeanOxidation is the per-step mean oxidation level metric.
type MeanOxidation struct {
	space  *proteo.Space
	series []float64
}

func NewMeanOxidation(space *proteo.Space) *MeanOxidation {
	return &MeanOxidation{
		space:  space,
		series: make([]float64, 0, 1024),
	}
}

func (m *MeanOxidation) Name() string { return "mean_oxidation" }

func (m *MeanOxidation) Observe(step int, pop sim.Population) {
	m.series = append(m.series, MeanOxidationLevel(pop, m.space))
}

func (m *MeanOxidation) Value() float64 {
	if len(m.series) == 0 {
		return 0
	}
	return floats.Sum(m.series) / float64(len(m.series))
}

func (m *MeanOxidation) Reset() { m.series = m.series[:0] }

func (m *MeanOxidation) Series() []float64 { return m.series }
