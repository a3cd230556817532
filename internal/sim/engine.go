package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/aruna-lab/redoxsim/internal/operator"
	"github.com/aruna-lab/redoxsim/internal/topology"
)

// massEpsilon guards every division by a population total.
const massEpsilon = 1e-12

// Engine propagates a population distribution under an ensemble of
// stochastic operators, resampling the whole ensemble every
// ResamplePeriod steps to model non-stationary kinetics.
type Engine struct {
	topo      *topology.Topology
	factory   *operator.Factory
	metrics   []Metric
	observers []Observer
}

func New(topo *topology.Topology, factory *operator.Factory) *Engine {
	return &Engine{
		topo:    topo,
		factory: factory,
	}
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("sim: step count must be positive, got %d", cfg.Steps)
	}
	if cfg.Ensemble < 1 {
		return fmt.Errorf("sim: ensemble size must be at least 1, got %d", cfg.Ensemble)
	}
	if cfg.ResamplePeriod < 1 {
		return fmt.Errorf("sim: resample period must be at least 1, got %d", cfg.ResamplePeriod)
	}
	if !e.topo.Space().Contains(cfg.Initial) {
		return fmt.Errorf("%w: %d (space has %d states)", ErrBadInitial, cfg.Initial, e.topo.Space().Size())
	}
	if cfg.Mass <= 0 || math.IsNaN(cfg.Mass) || math.IsInf(cfg.Mass, 0) {
		return fmt.Errorf("sim: initial mass must be positive and finite, got %f", cfg.Mass)
	}
	return nil
}

// Run executes cfg.Steps evolution steps from a population with all mass
// on cfg.Initial. The full per-step history is retained in the result.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := e.validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	n := e.topo.Space().Size()
	pop := make(Population, n)
	pop[cfg.Initial] = cfg.Mass

	result := &Result{
		History: make([]Population, 0, cfg.Steps+1),
		Metrics: make(map[string]float64),
	}
	result.History = append(result.History, pop.Clone())

	ensemble := e.factory.GenerateEnsemble(cfg.Ensemble)
	scratch := make(Population, n)

	for step := 1; step <= cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if step > 1 && (step-1)%cfg.ResamplePeriod == 0 {
			ensemble = e.factory.GenerateEnsemble(cfg.Ensemble)
		}

		Apply(scratch, pop, ensemble, cfg.Mass)
		pop, scratch = scratch, pop

		if !pop.IsValid() {
			return result, &StepError{Step: step, Population: pop.Clone(), Wrapped: ErrNonFinite}
		}

		for _, m := range e.metrics {
			m.Observe(step, pop)
		}
		for _, o := range e.observers {
			o.OnStep(step, pop)
		}

		result.History = append(result.History, pop.Clone())
		result.StepsTaken++
	}

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// Apply performs one evolution step from src into dst and renormalizes
// dst to the reference mass. The total of src is split across the
// ensemble's equal conceptual sub-pools; state i feeds target j the mass
// src[i] * P[i,j] * (src[i] / subpool), the quadratic source weighting
// being the model's non-linear coupling. Accumulation order is fixed
// (operator, then row, then column) so seeded runs reproduce bit for bit.
func Apply(dst, src Population, ensemble []*operator.Matrix, ref float64) {
	for j := range dst {
		dst[j] = 0
	}

	total := src.Total()
	subpool := math.Max(total/float64(len(ensemble)), massEpsilon)

	for _, m := range ensemble {
		for i, mass := range src {
			if mass == 0 {
				continue
			}
			scaled := mass * mass / subpool
			row := m.Rows[i]
			for j, p := range row {
				if p == 0 {
					continue
				}
				dst[j] += scaled * p
			}
		}
	}

	dst.Normalize(ref)
}
