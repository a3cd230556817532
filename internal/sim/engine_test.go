package sim

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/aruna-lab/redoxsim/internal/operator"
	"github.com/aruna-lab/redoxsim/internal/proteo"
	"github.com/aruna-lab/redoxsim/internal/topology"
)

func newEngine(t *testing.T, r int, selfLoops bool, seed int64) *Engine {
	t.Helper()
	space, err := proteo.NewSpace(r)
	if err != nil {
		t.Fatal(err)
	}
	topo := topology.New(space, selfLoops)
	return New(topo, operator.NewFactory(topo, rand.New(rand.NewSource(seed))))
}

func TestRunInvalidConfig(t *testing.T) {
	e := newEngine(t, 3, false, 1)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero steps", Config{Steps: 0, Ensemble: 10, ResamplePeriod: 100, Mass: 1}},
		{"negative steps", Config{Steps: -5, Ensemble: 10, ResamplePeriod: 100, Mass: 1}},
		{"zero ensemble", Config{Steps: 10, Ensemble: 0, ResamplePeriod: 100, Mass: 1}},
		{"zero period", Config{Steps: 10, Ensemble: 10, ResamplePeriod: 0, Mass: 1}},
		{"initial out of range", Config{Steps: 10, Ensemble: 10, ResamplePeriod: 100, Initial: 8, Mass: 1}},
		{"negative initial", Config{Steps: 10, Ensemble: 10, ResamplePeriod: 100, Initial: -1, Mass: 1}},
		{"zero mass", Config{Steps: 10, Ensemble: 10, ResamplePeriod: 100, Mass: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestInitialMassPlacement(t *testing.T) {
	e := newEngine(t, 3, false, 2)
	cfg := Config{Steps: 1, Ensemble: 10, ResamplePeriod: 100, Initial: 5, Mass: 100}

	result, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	initial := result.History[0]
	for id, mass := range initial {
		want := 0.0
		if id == 5 {
			want = 100
		}
		if mass != want {
			t.Errorf("initial mass at state %d = %f, want %f", id, mass, want)
		}
	}
}

func TestMassConservation(t *testing.T) {
	for _, ensemble := range []int{1, 3, 10} {
		e := newEngine(t, 3, false, 3)
		cfg := Config{Steps: 200, Ensemble: ensemble, ResamplePeriod: 50, Initial: 0, Mass: 100}

		result, err := e.Run(context.Background(), cfg)
		if err != nil {
			t.Fatalf("ensemble=%d: %v", ensemble, err)
		}

		for step, pop := range result.History {
			if total := pop.Total(); math.Abs(total-100) > 1e-6 {
				t.Errorf("ensemble=%d step=%d: total mass %.9f, want 100", ensemble, step, total)
			}
		}
	}
}

func TestHistoryLength(t *testing.T) {
	e := newEngine(t, 2, false, 4)
	cfg := Config{Steps: 137, Ensemble: 4, ResamplePeriod: 25, Mass: 1}

	result, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 137 {
		t.Errorf("steps taken = %d, want 137", result.StepsTaken)
	}
	if len(result.History) != 138 {
		t.Errorf("history length = %d, want 138", len(result.History))
	}
}

func TestSeededDeterminism(t *testing.T) {
	cfg := Config{Steps: 300, Ensemble: 10, ResamplePeriod: 100, Mass: 100}

	a, err := newEngine(t, 3, false, 42).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newEngine(t, 3, false, 42).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	for step := range a.History {
		for id := range a.History[step] {
			if a.History[step][id] != b.History[step][id] {
				t.Fatalf("step %d state %d differs across identically seeded runs", step, id)
			}
		}
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	e := newEngine(t, 3, false, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Steps: 1000, Ensemble: 10, ResamplePeriod: 100, Mass: 1}
	result, err := e.Run(ctx, cfg)
	if err == nil {
		t.Fatal("expected context error")
	}
	if result.StepsTaken != 0 {
		t.Errorf("steps taken after immediate cancel = %d", result.StepsTaken)
	}
}

type countingMetric struct {
	observed int
}

func (c *countingMetric) Name() string            { return "count" }
func (c *countingMetric) Observe(int, Population) { c.observed++ }
func (c *countingMetric) Value() float64          { return float64(c.observed) }
func (c *countingMetric) Reset()                  { c.observed = 0 }

func TestMetricsObservedPerStep(t *testing.T) {
	e := newEngine(t, 2, false, 6)
	metric := &countingMetric{}
	e.AddMetric(metric)

	cfg := Config{Steps: 50, Ensemble: 2, ResamplePeriod: 10, Mass: 1}
	result, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if metric.observed != 50 {
		t.Errorf("metric observed %d steps, want 50", metric.observed)
	}
	if result.Metrics["count"] != 50 {
		t.Errorf("result metric = %f, want 50", result.Metrics["count"])
	}
}

func TestPopulationNormalize(t *testing.T) {
	p := Population{1, 2, 3}
	p.Normalize(12)
	if math.Abs(p.Total()-12) > 1e-9 {
		t.Errorf("total after normalize = %f, want 12", p.Total())
	}

	zero := Population{0, 0}
	zero.Normalize(1)
	if !zero.IsValid() {
		t.Error("normalizing a decayed population produced a non-finite value")
	}
}

func TestPopulationIsValid(t *testing.T) {
	tests := []struct {
		name  string
		pop   Population
		valid bool
	}{
		{"empty", Population{}, true},
		{"normal", Population{1, 0, 2.5}, true},
		{"nan", Population{1, math.NaN()}, false},
		{"inf", Population{math.Inf(1)}, false},
		{"negative", Population{1, -0.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pop.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
