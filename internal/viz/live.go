package viz

import (
	"fmt"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/aruna-lab/redoxsim/internal/config"
	"github.com/aruna-lab/redoxsim/internal/metrics"
	"github.com/aruna-lab/redoxsim/internal/operator"
	"github.com/aruna-lab/redoxsim/internal/sim"
	"github.com/aruna-lab/redoxsim/internal/topology"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// LiveModel steps the simulation on a timer and renders rolling
// entropy and mean-oxidation sparklines.
type LiveModel struct {
	cfg      *config.Config
	topo     *topology.Topology
	factory  *operator.Factory
	ensemble []*operator.Matrix

	pop     sim.Population
	scratch sim.Population
	initial int
	step    int

	entropyHist []float64
	meanoxHist  []float64

	running bool
	fps     int
	failure error
}

func NewLive(cfg *config.Config, topo *topology.Topology, fps int) (*LiveModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	initial, err := topo.Space().ParseLabel(cfg.Initial)
	if err != nil {
		return nil, err
	}

	factory := operator.NewFactory(topo, rand.New(rand.NewSource(cfg.Seed)))
	if err := factory.SetParam("oxbias", cfg.OxBias); err != nil {
		return nil, err
	}
	if err := factory.SetParam("selfweight", cfg.SelfWeight); err != nil {
		return nil, err
	}

	m := &LiveModel{
		cfg:     cfg,
		topo:    topo,
		factory: factory,
		initial: initial,
		running: true,
		fps:     fps,
	}
	m.reset()
	return m, nil
}

func (m *LiveModel) reset() {
	n := m.topo.Space().Size()
	m.pop = make(sim.Population, n)
	m.pop[m.initial] = m.cfg.Population
	m.scratch = make(sim.Population, n)
	m.ensemble = m.factory.GenerateEnsemble(m.cfg.Ensemble)
	m.step = 0
	m.entropyHist = m.entropyHist[:0]
	m.meanoxHist = m.meanoxHist[:0]
	m.failure = nil
}

func (m *LiveModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *LiveModel) Init() tea.Cmd {
	return m.tick()
}

func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		}

	case TickMsg:
		if m.running && m.failure == nil && m.step < m.cfg.Steps {
			m.advance()
		}
		return m, m.tick()
	}

	return m, nil
}

func (m *LiveModel) advance() {
	m.step++
	if m.step > 1 && (m.step-1)%m.cfg.ResamplePeriod == 0 {
		m.ensemble = m.factory.GenerateEnsemble(m.cfg.Ensemble)
	}

	sim.Apply(m.scratch, m.pop, m.ensemble, m.cfg.Population)
	m.pop, m.scratch = m.scratch, m.pop

	if !m.pop.IsValid() {
		m.failure = &sim.StepError{Step: m.step, Population: m.pop.Clone(), Wrapped: sim.ErrNonFinite}
		return
	}

	m.entropyHist = append(m.entropyHist, metrics.ShannonEntropy(m.pop))
	m.meanoxHist = append(m.meanoxHist, metrics.MeanOxidationLevel(m.pop, m.topo.Space()))
	if len(m.entropyHist) > historyCapacity {
		m.entropyHist = m.entropyHist[1:]
		m.meanoxHist = m.meanoxHist[1:]
	}
}

func (m *LiveModel) View() string {
	header := headerStyle.Render(fmt.Sprintf("redoxsim live · r=%d · ensemble=%d", m.cfg.Sites, m.cfg.Ensemble))

	var graphs string
	if len(m.entropyHist) > 1 {
		graphs = graphStyle.Render(asciigraph.Plot(m.entropyHist,
			asciigraph.Height(8), asciigraph.Width(70), asciigraph.Caption("entropy"))) +
			"\n" +
			graphStyle.Render(asciigraph.Plot(m.meanoxHist,
				asciigraph.Height(8), asciigraph.Width(70), asciigraph.Caption("mean oxidation")))
	} else {
		graphs = graphStyle.Render("collecting samples...")
	}

	stats := fmt.Sprintf("%s%s\n%s%s\n%s%s\n%s%s",
		labelStyle.Render("step"), valueStyle.Render(fmt.Sprintf("%d / %d", m.step, m.cfg.Steps)),
		labelStyle.Render("entropy"), valueStyle.Render(lastValue(m.entropyHist)),
		labelStyle.Render("mean oxidation"), valueStyle.Render(lastValue(m.meanoxHist)),
		labelStyle.Render("total mass"), valueStyle.Render(fmt.Sprintf("%.4f", m.pop.Total())),
	)

	status := ""
	if m.failure != nil {
		status = "\n" + helpStyle.Render(fmt.Sprintf("aborted: %v", m.failure))
	} else if !m.running {
		status = "\n" + helpStyle.Render("paused")
	} else if m.step >= m.cfg.Steps {
		status = "\n" + helpStyle.Render("steps exhausted")
	}

	help := helpStyle.Render("space pause · r reset · q quit")

	return header + "\n" + graphs + "\n" + stats + status + "\n" + help
}

func lastValue(series []float64) string {
	if len(series) == 0 {
		return "-"
	}
	return fmt.Sprintf("%.4f", series[len(series)-1])
}

// RunLive starts the interactive live view.
func RunLive(cfg *config.Config, topo *topology.Topology, fps int) error {
	model, err := NewLive(cfg, topo, fps)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
