package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/aruna-lab/redoxsim/internal/sim"
)

// ExportData is the run dump consumed by downstream tooling.
type ExportData struct {
	Meta       RunMetadata `json:"meta"`
	Entropy    []float64   `json:"entropy"`
	MeanOx     []float64   `json:"mean_oxidation"`
	Trajectory [][]float64 `json:"trajectory"`
}

// ExportJSON writes a whole run as one JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result, entropy, meanox []float64) error {
	data := ExportData{
		Meta:       meta,
		Entropy:    entropy,
		MeanOx:     meanox,
		Trajectory: make([][]float64, len(result.History)),
	}
	for i, pop := range result.History {
		data.Trajectory[i] = pop
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportJSONFile is ExportJSON to a file path.
func ExportJSONFile(path string, meta RunMetadata, result *sim.Result, entropy, meanox []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExportJSON(f, meta, result, entropy, meanox)
}
