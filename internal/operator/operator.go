package operator

import (
	"fmt"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/aruna-lab/redoxsim/internal/topology"
)

// Matrix is a row-stochastic transition operator over the proteoform
// space. Entry Rows[i][j] is the one-step probability of moving from
// state i to state j; barred transitions stay exactly zero.
type Matrix struct {
	N    int
	Rows [][]float64
}

// RowSum returns the total probability mass of row i.
func (m *Matrix) RowSum(i int) float64 {
	return floats.Sum(m.Rows[i])
}

// Factory draws fresh randomized operators over a fixed topology. The
// generation parameters are tunable so a bifurcation sweep can use them
// as control values:
//
//	oxbias     in [0,1]: weight bias toward oxidizing transitions
//	selfweight >= 0:     scale on the self-loop weight (self loops only)
type Factory struct {
	topo   *topology.Topology
	rng    *rand.Rand
	params map[string]float64
}

func NewFactory(topo *topology.Topology, rng *rand.Rand) *Factory {
	return &Factory{
		topo: topo,
		rng:  rng,
		params: map[string]float64{
			"oxbias":     0.5,
			"selfweight": 1.0,
		},
	}
}

func (f *Factory) GetParams() map[string]float64 {
	out := make(map[string]float64, len(f.params))
	for k, v := range f.params {
		out[k] = v
	}
	return out
}

func (f *Factory) SetParam(name string, value float64) error {
	if _, ok := f.params[name]; !ok {
		return fmt.Errorf("operator: unknown parameter %q", name)
	}
	if name == "oxbias" && (value < 0 || value > 1) {
		return fmt.Errorf("operator: oxbias %f out of [0,1]", value)
	}
	if value < 0 {
		return fmt.Errorf("operator: parameter %s must be non-negative, got %f", name, value)
	}
	f.params[name] = value
	return nil
}

// Generate draws one operator with entirely fresh random weights,
// uncorrelated with any previous draw.
func (f *Factory) Generate() *Matrix {
	space := f.topo.Space()
	n := space.Size()
	oxbias := f.params["oxbias"]
	selfweight := f.params["selfweight"]

	m := &Matrix{
		N:    n,
		Rows: make([][]float64, n),
	}

	for i := 0; i < n; i++ {
		row := make([]float64, n)
		k := space.Oxidation(i)

		for _, j := range f.topo.Allowed(i) {
			w := f.rng.Float64()
			switch {
			case j == i:
				w *= selfweight
			case space.Oxidation(j) > k:
				w *= 2 * oxbias
			default:
				w *= 2 * (1 - oxbias)
			}
			row[j] = w
		}

		sum := floats.Sum(row)
		if sum <= 0 {
			// Cannot happen under the ±1 topology with interior bias
			// values, but a dead row must never survive normalization.
			slog.Warn("degenerate operator row, substituting uniform distribution",
				"row", i, "state", space.Label(i))
			uniform := 1 / float64(n)
			for j := range row {
				row[j] = uniform
			}
		} else {
			floats.Scale(1/sum, row)
		}

		m.Rows[i] = row
	}

	return m
}

// GenerateEnsemble draws size independent operators.
func (f *Factory) GenerateEnsemble(size int) []*Matrix {
	ensemble := make([]*Matrix, size)
	for i := range ensemble {
		ensemble[i] = f.Generate()
	}
	return ensemble
}
