package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/aruna-lab/redoxsim/internal/sim"
)

// logEpsilon keeps log arguments strictly positive.
const logEpsilon = 1e-10

// ShannonEntropy computes −Σ p·log(p+ε) over the normalized population.
// A fully concentrated population scores 0; a uniform one log(N).
func ShannonEntropy(pop sim.Population) float64 {
	total := floats.Sum(pop)
	if total <= 0 {
		return 0
	}

	h := 0.0
	for _, mass := range pop {
		p := mass / total
		if p > 0 {
			h -= p * math.Log(p+logEpsilon)
		}
	}
	// The ε inside the log can push a fully concentrated population a
	// hair below zero.
	return math.Max(h, 0)
}

// Entropy is the per-step Shannon entropy metric. It retains its series
// for the metrics export and reduces to the run mean.
type Entropy struct {
	series []float64
}

func NewEntropy() *Entropy {
	return &Entropy{series: make([]float64, 0, 1024)}
}

func (e *Entropy) Name() string { return "entropy" }

func (e *Entropy) Observe(step int, pop sim.Population) {
	e.series = append(e.series, ShannonEntropy(pop))
}

func (e *Entropy) Value() float64 {
	if len(e.series) == 0 {
		return 0
	}
	return floats.Sum(e.series) / float64(len(e.series))
}

func (e *Entropy) Reset() { e.series = e.series[:0] }

// Series returns the entropy at every observed step.
func (e *Entropy) Series() []float64 { return e.series }
