package analysis

import "fmt"

// Point is one return-map sample pair (x_t, x_{t+lag}).
type Point struct {
	X, Y float64
}

// ReturnMap produces Poincaré return-map pairs of a scalar trajectory
// observable, sampled at stride lag. The series is typically the
// per-step mean oxidation level.
func ReturnMap(series []float64, lag int) ([]Point, error) {
	if lag < 1 {
		return nil, fmt.Errorf("analysis: return-map lag must be at least 1, got %d", lag)
	}

	points := make([]Point, 0, len(series)/lag)
	for t := 0; t+lag < len(series); t += lag {
		points = append(points, Point{X: series[t], Y: series[t+lag]})
	}
	return points, nil
}
