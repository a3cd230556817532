package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aruna-lab/redoxsim/internal/config"
	"github.com/aruna-lab/redoxsim/internal/proteo"
	"github.com/aruna-lab/redoxsim/internal/sim"
)

// Store persists runs under an explicit base directory; nothing here
// depends on ambient process state.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	Sites          int                `json:"sites"`
	Initial        string             `json:"initial"`
	Steps          int                `json:"steps"`
	Population     float64            `json:"population"`
	Ensemble       int                `json:"ensemble"`
	ResamplePeriod int                `json:"resample_period"`
	SelfLoops      bool               `json:"self_loops"`
	OxBias         float64            `json:"ox_bias"`
	SelfWeight     float64            `json:"self_weight"`
	Seed           int64              `json:"seed"`
	Metrics        map[string]float64 `json:"metrics"`
}

// Save writes one run: metadata.json, the full trajectory history as
// (step, proteoform, mass) rows, and the per-step metric series.
func (s *Store) Save(cfg *config.Config, space *proteo.Space, result *sim.Result, entropy, meanox []float64) (string, error) {
	// Both series come from metrics observed on the same run; a length
	// mismatch means a caller bug, not data worth writing.
	if len(entropy) != len(meanox) {
		return "", fmt.Errorf("store: entropy series has %d samples, mean oxidation %d", len(entropy), len(meanox))
	}

	runID := fmt.Sprintf("r%d_%d", cfg.Sites, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:             runID,
		Timestamp:      time.Now(),
		Sites:          cfg.Sites,
		Initial:        cfg.Initial,
		Steps:          result.StepsTaken,
		Population:     cfg.Population,
		Ensemble:       cfg.Ensemble,
		ResamplePeriod: cfg.ResamplePeriod,
		SelfLoops:      cfg.SelfLoops,
		OxBias:         cfg.OxBias,
		SelfWeight:     cfg.SelfWeight,
		Seed:           cfg.Seed,
		Metrics:        result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := s.writeTrajectory(filepath.Join(runDir, "trajectory.csv"), space, result); err != nil {
		return "", err
	}
	if err := s.writeMetrics(filepath.Join(runDir, "metrics.csv"), entropy, meanox); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Store) writeTrajectory(path string, space *proteo.Space, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"step", "proteoform", "mass"}); err != nil {
		return err
	}

	for step, pop := range result.History {
		for id, mass := range pop {
			row := []string{
				strconv.Itoa(step),
				space.Label(id),
				strconv.FormatFloat(mass, 'f', 9, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}

func (s *Store) writeMetrics(path string, entropy, meanox []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"step", "entropy", "mean_oxidation"}); err != nil {
		return err
	}

	for i := range entropy {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(entropy[i], 'f', 9, 64),
			strconv.FormatFloat(meanox[i], 'f', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (RunMetadata, error) {
	var meta RunMetadata

	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// LoadTrajectory reads back the full (step, proteoform, mass) history
// as one population slice per step.
func (s *Store) LoadTrajectory(runID string) ([][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var history [][]float64
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		step, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("store: bad step at row %d: %w", i, err)
		}
		id, err := strconv.ParseUint(row[1], 2, 32)
		if err != nil {
			return nil, fmt.Errorf("store: bad proteoform at row %d: %w", i, err)
		}
		mass, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("store: bad mass at row %d: %w", i, err)
		}

		for len(history) <= step {
			history = append(history, nil)
		}
		for len(history[step]) <= int(id) {
			history[step] = append(history[step], 0)
		}
		history[step][id] = mass
	}

	return history, nil
}

// LoadMetrics reads back the per-step entropy and mean-oxidation series.
func (s *Store) LoadMetrics(runID string) (entropy, meanox []float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "metrics.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		h, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("store: bad entropy at row %d: %w", i, err)
		}
		k, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("store: bad mean oxidation at row %d: %w", i, err)
		}
		entropy = append(entropy, h)
		meanox = append(meanox, k)
	}

	return entropy, meanox, nil
}
