package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/aruna-lab/redoxsim/internal/config"
)

// newTestCommand mirrors a diagnostic command's full flag surface so
// buildConfig sees the same flag set it does at runtime.
func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	t.Cleanup(func() {
		preset = ""
		configFile = ""
	})

	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	addLyapunovFlags(cmd)
	addPoincareFlags(cmd)
	addBifurcationFlags(cmd)
	return cmd
}

func TestBuildConfigPresetDiagnostics(t *testing.T) {
	cmd := newTestCommand(t)
	if err := cmd.ParseFlags([]string{"--preset", "sticky", "--tail", "10"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}

	// Preset values survive un-set flags; the explicit flag wins.
	if cfg.Bifurcation.Param != "selfweight" {
		t.Errorf("sweep param = %q, want selfweight from the preset", cfg.Bifurcation.Param)
	}
	if cfg.Bifurcation.Min != 0.1 || cfg.Bifurcation.Max != 5.0 {
		t.Errorf("sweep range [%g, %g], want the preset's [0.1, 5.0]", cfg.Bifurcation.Min, cfg.Bifurcation.Max)
	}
	if cfg.Bifurcation.Tail != 10 {
		t.Errorf("sweep tail = %d, want the explicit flag value 10", cfg.Bifurcation.Tail)
	}
	if !cfg.SelfLoops || cfg.SelfWeight != 3.0 {
		t.Errorf("selfLoops=%v selfWeight=%g, want the preset's true/3.0", cfg.SelfLoops, cfg.SelfWeight)
	}
}

func TestBuildConfigFileDiagnostics(t *testing.T) {
	saved := config.DefaultConfig()
	saved.Seed = 7
	saved.Lyapunov.Perturbation = 1e-3
	saved.Lyapunov.RenormEvery = 5
	saved.Poincare.Lag = 37
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Save(path, saved); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand(t)
	if err := cmd.ParseFlags([]string{"--config", path, "--renorm", "20"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Lyapunov.Perturbation != 1e-3 {
		t.Errorf("perturbation = %g, want the file's 1e-3", cfg.Lyapunov.Perturbation)
	}
	if cfg.Lyapunov.RenormEvery != 20 {
		t.Errorf("renorm = %d, want the explicit flag value 20", cfg.Lyapunov.RenormEvery)
	}
	if cfg.Poincare.Lag != 37 {
		t.Errorf("poincare lag = %d, want the file's 37", cfg.Poincare.Lag)
	}
}
