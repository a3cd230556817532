package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSites          = 3
	DefaultSteps          = 1000
	DefaultPopulation     = 100.0
	DefaultEnsemble       = 10
	DefaultResamplePeriod = 100
	DefaultOxBias         = 0.5
	DefaultSelfWeight     = 1.0
	DefaultPerturbation   = 1e-5
	DefaultRenormEvery    = 50
	DefaultPoincareLag    = 10
)

type Config struct {
	Sites          int     `yaml:"sites"`
	Initial        string  `yaml:"initial"` // bit-string of length Sites
	Steps          int     `yaml:"steps"`
	Population     float64 `yaml:"population"`
	Ensemble       int     `yaml:"ensemble"`
	ResamplePeriod int     `yaml:"resample_period"`
	SelfLoops      bool    `yaml:"self_loops"`
	OxBias         float64 `yaml:"ox_bias"`
	SelfWeight     float64 `yaml:"self_weight"`
	Seed           int64   `yaml:"seed"`

	Lyapunov    LyapunovConfig    `yaml:"lyapunov"`
	Poincare    PoincareConfig    `yaml:"poincare"`
	Bifurcation BifurcationConfig `yaml:"bifurcation"`
}

type LyapunovConfig struct {
	Perturbation float64 `yaml:"perturbation"`
	RenormEvery  int     `yaml:"renorm_every"`
}

type PoincareConfig struct {
	Lag int `yaml:"lag"`
}

type BifurcationConfig struct {
	Param   string  `yaml:"param"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Points  int     `yaml:"points"`
	Tail    int     `yaml:"tail"`
	Workers int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Sites:          DefaultSites,
		Initial:        "000",
		Steps:          DefaultSteps,
		Population:     DefaultPopulation,
		Ensemble:       DefaultEnsemble,
		ResamplePeriod: DefaultResamplePeriod,
		OxBias:         DefaultOxBias,
		SelfWeight:     DefaultSelfWeight,
		Lyapunov: LyapunovConfig{
			Perturbation: DefaultPerturbation,
			RenormEvery:  DefaultRenormEvery,
		},
		Poincare: PoincareConfig{
			Lag: DefaultPoincareLag,
		},
		Bifurcation: BifurcationConfig{
			Param:  "oxbias",
			Min:    0.05,
			Max:    0.95,
			Points: 25,
			Tail:   50,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects invalid parameter combinations before any simulation
// state is built.
func (c *Config) Validate() error {
	if c.Sites <= 0 {
		return fmt.Errorf("config: sites must be positive, got %d", c.Sites)
	}
	if len(c.Initial) != c.Sites {
		return fmt.Errorf("config: initial proteoform %q does not have %d sites", c.Initial, c.Sites)
	}
	for _, ch := range c.Initial {
		if ch != '0' && ch != '1' {
			return fmt.Errorf("config: initial proteoform %q is not a bit-string", c.Initial)
		}
	}
	if c.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	}
	if c.Population <= 0 {
		return fmt.Errorf("config: population must be positive, got %f", c.Population)
	}
	if c.Ensemble < 1 {
		return fmt.Errorf("config: ensemble size must be at least 1, got %d", c.Ensemble)
	}
	if c.ResamplePeriod < 1 {
		return fmt.Errorf("config: resample period must be at least 1, got %d", c.ResamplePeriod)
	}
	if c.OxBias < 0 || c.OxBias > 1 {
		return fmt.Errorf("config: ox_bias %f out of [0,1]", c.OxBias)
	}
	if c.SelfWeight < 0 {
		return fmt.Errorf("config: self_weight must be non-negative, got %f", c.SelfWeight)
	}
	if c.Lyapunov.Perturbation <= 0 {
		return fmt.Errorf("config: lyapunov perturbation must be positive, got %g", c.Lyapunov.Perturbation)
	}
	if c.Poincare.Lag < 1 {
		return fmt.Errorf("config: poincare lag must be at least 1, got %d", c.Poincare.Lag)
	}
	return nil
}
