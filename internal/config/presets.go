package config

// Presets are ready-made scenarios covering the interesting dynamical
// regimes.
var Presets = map[string]*Config{
	"baseline": {
		Sites: 3, Initial: "000", Steps: 1000, Population: 100,
		Ensemble: 10, ResamplePeriod: 100, OxBias: 0.5, SelfWeight: 1.0,
		Lyapunov: LyapunovConfig{Perturbation: 1e-5, RenormEvery: 50},
		Poincare: PoincareConfig{Lag: 10},
		Bifurcation: BifurcationConfig{
			Param: "oxbias", Min: 0.05, Max: 0.95, Points: 25, Tail: 50,
		},
	},
	"oxidizing": {
		Sites: 4, Initial: "0000", Steps: 2000, Population: 100,
		Ensemble: 10, ResamplePeriod: 100, OxBias: 0.8, SelfWeight: 1.0,
		Lyapunov: LyapunovConfig{Perturbation: 1e-5, RenormEvery: 50},
		Poincare: PoincareConfig{Lag: 20},
		Bifurcation: BifurcationConfig{
			Param: "oxbias", Min: 0.5, Max: 0.95, Points: 20, Tail: 100,
		},
	},
	"sticky": {
		Sites: 3, Initial: "000", Steps: 1500, Population: 100,
		Ensemble: 10, ResamplePeriod: 50, SelfLoops: true,
		OxBias: 0.5, SelfWeight: 3.0,
		Lyapunov: LyapunovConfig{Perturbation: 1e-5, RenormEvery: 50},
		Poincare: PoincareConfig{Lag: 10},
		Bifurcation: BifurcationConfig{
			Param: "selfweight", Min: 0.1, Max: 5.0, Points: 25, Tail: 50,
		},
	},
	"turbulent": {
		Sites: 5, Initial: "00000", Steps: 3000, Population: 1000,
		Ensemble: 20, ResamplePeriod: 25, OxBias: 0.5, SelfWeight: 1.0,
		Lyapunov: LyapunovConfig{Perturbation: 1e-6, RenormEvery: 25},
		Poincare: PoincareConfig{Lag: 25},
		Bifurcation: BifurcationConfig{
			Param: "oxbias", Min: 0.05, Max: 0.95, Points: 40, Tail: 100,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
