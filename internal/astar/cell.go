// Package astar finds 8-connected grid paths around obstacles with a
// bidirectional A* search, plus a single-direction variant that can force
// its first move.
package astar

import (
	"fmt"
	"math"

	"github.com/piwi3910/maskroute/internal/model"
)

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Add returns c + d.
func (c Cell) Add(d Cell) Cell { return Cell{X: c.X + d.X, Y: c.Y + d.Y} }

// Sub returns c - d.
func (c Cell) Sub(d Cell) Cell { return Cell{X: c.X - d.X, Y: c.Y - d.Y} }

// moves lists the eight unit steps clockwise from north. Neighbouring
// entries are 45° apart.
var moves = [8]Cell{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// moveIndex returns the position of a unit step in moves, or -1.
func moveIndex(d Cell) int {
	for k, m := range moves {
		if m == d {
			return k
		}
	}
	return -1
}

// stepCost is 1 for an axis move and √2 for a diagonal one.
func stepCost(d Cell) float64 {
	if d.X != 0 && d.Y != 0 {
		return math.Sqrt2
	}
	return 1
}

// manhattan is the search heuristic. It overestimates diagonal runs, so
// paths are not guaranteed to be globally shortest.
func manhattan(a, b Cell) float64 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return float64(dx + dy)
}

// ToCell snaps a layout coordinate to the grid.
func ToCell(p model.Point2D, spacing float64) Cell {
	return Cell{X: int(math.Round(p.X / spacing)), Y: int(math.Round(p.Y / spacing))}
}

// ToWorld scales grid cells back to layout coordinates.
func ToWorld(cells []Cell, spacing float64) []model.Point2D {
	pts := make([]model.Point2D, len(cells))
	for k, c := range cells {
		pts[k] = model.Point2D{X: float64(c.X) * spacing, Y: float64(c.Y) * spacing}
	}
	return pts
}
