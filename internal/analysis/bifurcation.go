package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/aruna-lab/redoxsim/internal/metrics"
	"github.com/aruna-lab/redoxsim/internal/operator"
	"github.com/aruna-lab/redoxsim/internal/sim"
	"github.com/aruna-lab/redoxsim/internal/topology"
)

// SweepPoint holds the attractor slice sampled at one control value.
type SweepPoint struct {
	Param float64
	Tail  []float64 // mean oxidation level over the last Tail steps
}

// SweepConfig drives a bifurcation sweep. Each grid point is a fully
// independent run: its own seeded factory, its own engine, no state
// shared across points.
type SweepConfig struct {
	Run     sim.Config
	Param   string // factory parameter to sweep, e.g. "oxbias"
	Min     float64
	Max     float64
	Points  int
	Tail    int
	Seed    int64
	Workers int // <= 1 runs the grid sequentially
}

// Sweep re-runs the simulation across a control-parameter grid and
// collects the tail of the mean-oxidation series at each value.
func Sweep(ctx context.Context, topo *topology.Topology, cfg SweepConfig) ([]SweepPoint, error) {
	if cfg.Points < 2 {
		return nil, fmt.Errorf("analysis: sweep needs at least 2 grid points, got %d", cfg.Points)
	}
	if cfg.Tail < 1 || cfg.Tail > cfg.Run.Steps {
		return nil, fmt.Errorf("analysis: sweep tail %d out of [1,%d]", cfg.Tail, cfg.Run.Steps)
	}

	step := (cfg.Max - cfg.Min) / float64(cfg.Points-1)
	results := make([]SweepPoint, cfg.Points)
	errs := make([]error, cfg.Points)

	runPoint := func(i int) {
		value := cfg.Min + float64(i)*step

		factory := operator.NewFactory(topo, rand.New(rand.NewSource(cfg.Seed+int64(i))))
		if err := factory.SetParam(cfg.Param, value); err != nil {
			errs[i] = err
			return
		}

		meanox := metrics.NewMeanOxidation(topo.Space())
		engine := sim.New(topo, factory)
		engine.AddMetric(meanox)

		if _, err := engine.Run(ctx, cfg.Run); err != nil {
			errs[i] = fmt.Errorf("sweep %s=%f: %w", cfg.Param, value, err)
			return
		}

		series := meanox.Series()
		tail := make([]float64, cfg.Tail)
		copy(tail, series[len(series)-cfg.Tail:])
		results[i] = SweepPoint{Param: value, Tail: tail}
	}

	if cfg.Workers <= 1 {
		for i := 0; i < cfg.Points; i++ {
			runPoint(i)
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for w := 0; w < cfg.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					runPoint(i)
				}
			}()
		}
		for i := 0; i < cfg.Points; i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
