package analysis

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/onsi/gomega"

	"github.com/aruna-lab/redoxsim/internal/metrics"
	"github.com/aruna-lab/redoxsim/internal/operator"
	"github.com/aruna-lab/redoxsim/internal/sim"
)

// Full scenario: three sites, all mass starting on the reduced form,
// a thousand steps with a ten-operator ensemble resampled every hundred.
func TestFullScenario(t *testing.T) {
	g := gomega.NewWithT(t)
	topo := newTopo(t, 3, false)
	space := topo.Space()

	initial, err := space.ParseLabel("000")
	g.Expect(err).NotTo(gomega.HaveOccurred())

	factory := operator.NewFactory(topo, rand.New(rand.NewSource(2024)))
	entropy := metrics.NewEntropy()
	meanox := metrics.NewMeanOxidation(space)

	engine := sim.New(topo, factory)
	engine.AddMetric(entropy)
	engine.AddMetric(meanox)

	cfg := sim.Config{
		Steps:          1000,
		Ensemble:       10,
		ResamplePeriod: 100,
		Initial:        initial,
		Mass:           100,
	}

	result, err := engine.Run(context.Background(), cfg)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(result.StepsTaken).To(gomega.Equal(1000))

	g.Expect(entropy.Series()).To(gomega.HaveLen(1000))
	g.Expect(meanox.Series()).To(gomega.HaveLen(1000))

	for step, h := range entropy.Series() {
		g.Expect(h).To(gomega.BeNumerically(">=", 0), "entropy at step %d", step+1)
	}
	for step, k := range meanox.Series() {
		g.Expect(k).To(gomega.BeNumerically(">=", 0), "mean oxidation at step %d", step+1)
		g.Expect(k).To(gomega.BeNumerically("<=", 3), "mean oxidation at step %d", step+1)
	}

	lyapunovFactory := operator.NewFactory(topo, rand.New(rand.NewSource(2024)))
	lambda, err := Lyapunov(topo, lyapunovFactory, LyapunovConfig{
		Steps:          1000,
		Ensemble:       10,
		ResamplePeriod: 100,
		Initial:        initial,
		Mass:           100,
		Perturbation:   1e-5,
		PerturbFrom:    initial,
		PerturbTo:      topo.Allowed(initial)[0],
		RenormEvery:    50,
	})
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(math.IsNaN(lambda) || math.IsInf(lambda, 0)).To(gomega.BeFalse())

	points, err := ReturnMap(meanox.Series(), 10)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(len(points)).To(gomega.BeNumerically(">", 0))
}
