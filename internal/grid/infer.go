package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/maskroute/internal/model"
)

// ErrUnevenSpacing is returned when point coordinates are not on a regular
// pitch.
var ErrUnevenSpacing = errors.New("coordinates are not evenly spaced")

// ErrIncompleteGrid is returned when the points do not fill every node of
// the inferred array.
var ErrIncompleteGrid = errors.New("points do not form a complete array")

// uniqueSorted collapses values closer than tol and returns them ascending.
func uniqueSorted(values []float64, tol float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var out []float64
	for _, v := range sorted {
		if len(out) > 0 && v-out[len(out)-1] <= tol {
			continue
		}
		out = append(out, v)
	}
	return out
}

// evenPitch returns the common step of ascending values, or 0 for a single
// value.
func evenPitch(axis string, values []float64, tol float64) (float64, error) {
	if len(values) < 2 {
		return 0, nil
	}
	pitch := values[1] - values[0]
	for k := 2; k < len(values); k++ {
		if math.Abs(values[k]-values[k-1]-pitch) > tol {
			return 0, fmt.Errorf("%w: %s step %.4f differs from %.4f", ErrUnevenSpacing, axis, values[k]-values[k-1], pitch)
		}
	}
	return pitch, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// InferFromPoints recovers copies, pitch and centre from a list of pad
// coordinates. A single row or column borrows the pitch of the other axis.
func InferFromPoints(points []model.Point2D, tol float64) (Grid, error) {
	if len(points) == 0 {
		return Grid{}, errors.New("no points to infer a grid from")
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for k, p := range points {
		xs[k], ys[k] = p.X, p.Y
	}
	ux := uniqueSorted(xs, tol)
	uy := uniqueSorted(ys, tol)

	px, err := evenPitch("x", ux, tol)
	if err != nil {
		return Grid{}, err
	}
	py, err := evenPitch("y", uy, tol)
	if err != nil {
		return Grid{}, err
	}
	switch {
	case px == 0 && py == 0:
		return Grid{}, errors.New("cannot infer pitch from a single point")
	case px == 0:
		px = py
	case py == 0:
		py = px
	}

	g, err := New(model.Point2D{X: mean(ux), Y: mean(uy)}, len(ux), len(uy), px, py)
	if err != nil {
		return Grid{}, err
	}

	seen := make(map[[2]int]bool, len(points))
	for _, p := range points {
		i := int(math.Round((p.X - ux[0]) / px))
		j := int(math.Round((p.Y - uy[0]) / py))
		seen[[2]int{i, j}] = true
	}
	if len(seen) != g.Len() {
		return Grid{}, fmt.Errorf("%w: %d distinct pads for a %dx%d array", ErrIncompleteGrid, len(seen), g.Cols, g.Rows)
	}
	return g, nil
}
