package viz

import (
	"strings"
	"testing"

	"github.com/aruna-lab/redoxsim/internal/analysis"
)

func TestScatterToASCII(t *testing.T) {
	points := []analysis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0.5, Y: 0.2}}
	out := ScatterToASCII(points, 40, 10)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Errorf("expected 10 rows, got %d", len(lines))
	}
	if !strings.Contains(out, "•") {
		t.Error("expected plotted points")
	}
}

func TestScatterToASCIIEmpty(t *testing.T) {
	if out := ScatterToASCII(nil, 40, 10); out != "no points" {
		t.Errorf("unexpected output for empty input: %q", out)
	}
}

func TestBifurcationToASCII(t *testing.T) {
	points := []analysis.SweepPoint{
		{Param: 0.1, Tail: []float64{1.0, 1.2}},
		{Param: 0.5, Tail: []float64{1.5, 2.5}},
		{Param: 0.9, Tail: []float64{0.5}},
	}
	out := BifurcationToASCII(points, 30, 8)

	if !strings.Contains(out, "•") {
		t.Error("expected plotted points")
	}
}

func TestBifurcationToASCIIEmptyTails(t *testing.T) {
	points := []analysis.SweepPoint{{Param: 0.1}, {Param: 0.2}}
	if out := BifurcationToASCII(points, 30, 8); out != "no points" {
		t.Errorf("unexpected output: %q", out)
	}
}
