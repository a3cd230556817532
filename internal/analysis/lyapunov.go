package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/aruna-lab/redoxsim/internal/operator"
	"github.com/aruna-lab/redoxsim/internal/sim"
	"github.com/aruna-lab/redoxsim/internal/topology"
)

// distFloor keeps log(distance) finite when the twins coincide.
const distFloor = 1e-12

// LyapunovConfig drives a twin-trajectory divergence run.
type LyapunovConfig struct {
	Steps          int
	Ensemble       int
	ResamplePeriod int
	Initial        int
	Mass           float64
	Perturbation   float64 // mass moved between the designated states at t=0
	PerturbFrom    int
	PerturbTo      int
	RenormEvery    int // 0 disables the periodic twin renormalization
}

// Lyapunov estimates the largest Lyapunov exponent by measuring the
// divergence of a perturbed twin trajectory. At every resampling
// boundary both twins receive the exact same operator draws, so the
// estimate measures coupled divergence: sensitivity to the initial
// perturbation alone, not to operator noise.
//
// The estimate is the mean of log(Euclidean distance) over all steps.
// Any non-finite intermediate aborts with the offending step and
// population attached.
func Lyapunov(topo *topology.Topology, factory *operator.Factory, cfg LyapunovConfig) (float64, error) {
	space := topo.Space()
	if cfg.Steps <= 0 {
		return 0, fmt.Errorf("analysis: step count must be positive, got %d", cfg.Steps)
	}
	if cfg.Ensemble < 1 {
		return 0, fmt.Errorf("analysis: ensemble size must be at least 1, got %d", cfg.Ensemble)
	}
	if cfg.ResamplePeriod < 1 {
		return 0, fmt.Errorf("analysis: resample period must be at least 1, got %d", cfg.ResamplePeriod)
	}
	if cfg.Mass <= 0 {
		return 0, fmt.Errorf("analysis: mass must be positive, got %f", cfg.Mass)
	}
	if cfg.Perturbation <= 0 {
		return 0, fmt.Errorf("analysis: perturbation must be positive, got %g", cfg.Perturbation)
	}
	for _, id := range []int{cfg.Initial, cfg.PerturbFrom, cfg.PerturbTo} {
		if !space.Contains(id) {
			return 0, fmt.Errorf("%w: %d", sim.ErrBadInitial, id)
		}
	}
	if cfg.PerturbFrom == cfg.PerturbTo {
		return 0, fmt.Errorf("analysis: perturbation source and target coincide at %d", cfg.PerturbFrom)
	}

	n := space.Size()
	base := make(sim.Population, n)
	base[cfg.Initial] = cfg.Mass

	// Twin with ε mass moved between the designated states, clamped so
	// no entry goes negative and the total stays put.
	twin := base.Clone()
	delta := math.Min(cfg.Perturbation, twin[cfg.PerturbFrom])
	twin[cfg.PerturbFrom] -= delta
	twin[cfg.PerturbTo] += delta

	baseScratch := make(sim.Population, n)
	twinScratch := make(sim.Population, n)

	ensemble := factory.GenerateEnsemble(cfg.Ensemble)

	sumLog := 0.0
	for step := 1; step <= cfg.Steps; step++ {
		if step > 1 && (step-1)%cfg.ResamplePeriod == 0 {
			ensemble = factory.GenerateEnsemble(cfg.Ensemble)
		}

		sim.Apply(baseScratch, base, ensemble, cfg.Mass)
		base, baseScratch = baseScratch, base

		sim.Apply(twinScratch, twin, ensemble, cfg.Mass)
		twin, twinScratch = twinScratch, twin

		if !base.IsValid() {
			return 0, &sim.StepError{Step: step, Population: base.Clone(), Wrapped: sim.ErrNonFinite}
		}
		if !twin.IsValid() {
			return 0, &sim.StepError{Step: step, Population: twin.Clone(), Wrapped: sim.ErrNonFinite}
		}

		if cfg.RenormEvery > 0 && step%cfg.RenormEvery == 0 {
			twin.Normalize(cfg.Mass)
		}

		dist := floats.Distance(base, twin, 2)
		if math.IsNaN(dist) || math.IsInf(dist, 0) {
			return 0, &sim.StepError{Step: step, Population: twin.Clone(), Wrapped: sim.ErrNonFinite}
		}
		sumLog += math.Log(math.Max(dist, distFloor))
	}

	lambda := sumLog / float64(cfg.Steps)
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return 0, fmt.Errorf("%w: lyapunov estimate %f", sim.ErrNonFinite, lambda)
	}
	return lambda, nil
}
