// Package grid models a regular M×N pad array: node indices, world
// positions, and row-major or column-major traversal.
package grid

import (
	"fmt"

	"github.com/piwi3910/maskroute/internal/model"
)

// Grid is an M×N array of nodes centred on Center. Column index i runs along
// X, row index j along Y.
type Grid struct {
	Center model.Point2D `json:"center"`
	Cols   int           `json:"cols"` // M
	Rows   int           `json:"rows"` // N
	PitchX float64       `json:"pitch_x"`
	PitchY float64       `json:"pitch_y"`
}

// Node is one array element.
type Node struct {
	I        int
	J        int
	Position model.Point2D
}

// New returns a grid after checking its dimensions.
func New(center model.Point2D, cols, rows int, pitchX, pitchY float64) (Grid, error) {
	if cols < 1 || rows < 1 {
		return Grid{}, fmt.Errorf("grid needs at least one row and column, got %dx%d", cols, rows)
	}
	if pitchX <= 0 || pitchY <= 0 {
		return Grid{}, fmt.Errorf("grid pitch must be positive, got %.3f x %.3f", pitchX, pitchY)
	}
	return Grid{Center: center, Cols: cols, Rows: rows, PitchX: pitchX, PitchY: pitchY}, nil
}

// FromSettings builds the grid described by escape settings.
func FromSettings(s model.EscapeSettings) (Grid, error) {
	return New(s.Center, s.CopiesX, s.CopiesY, s.PitchX, s.PitchY)
}

// Len returns M·N.
func (g Grid) Len() int { return g.Cols * g.Rows }

// Position returns the world coordinate of node (i, j).
func (g Grid) Position(i, j int) model.Point2D {
	return model.Point2D{
		X: g.Center.X + float64(i)*g.PitchX - float64(g.Cols-1)*g.PitchX/2,
		Y: g.Center.Y + float64(j)*g.PitchY - float64(g.Rows-1)*g.PitchY/2,
	}
}

// Node returns node (i, j).
func (g Grid) Node(i, j int) Node {
	return Node{I: i, J: j, Position: g.Position(i, j)}
}

// Contains reports whether (i, j) indexes a node of the grid.
func (g Grid) Contains(i, j int) bool {
	return i >= 0 && i < g.Cols && j >= 0 && j < g.Rows
}

// RowMajor lists nodes row by row, bottom row first.
func (g Grid) RowMajor() []Node {
	nodes := make([]Node, 0, g.Len())
	for j := 0; j < g.Rows; j++ {
		for i := 0; i < g.Cols; i++ {
			nodes = append(nodes, g.Node(i, j))
		}
	}
	return nodes
}

// ColumnMajor lists nodes column by column, left column first.
func (g Grid) ColumnMajor() []Node {
	nodes := make([]Node, 0, g.Len())
	for i := 0; i < g.Cols; i++ {
		for j := 0; j < g.Rows; j++ {
			nodes = append(nodes, g.Node(i, j))
		}
	}
	return nodes
}

// Row returns row j from left to right.
func (g Grid) Row(j int) []Node {
	row := make([]Node, g.Cols)
	for i := range row {
		row[i] = g.Node(i, j)
	}
	return row
}

// Column returns column i from bottom to top.
func (g Grid) Column(i int) []Node {
	col := make([]Node, g.Rows)
	for j := range col {
		col[j] = g.Node(i, j)
	}
	return col
}

// Bounds returns the corners of the box through the outermost node centres.
func (g Grid) Bounds() (min, max model.Point2D) {
	return g.Position(0, 0), g.Position(g.Cols-1, g.Rows-1)
}

// Positions returns every node position, row-major.
func (g Grid) Positions() []model.Point2D {
	nodes := g.RowMajor()
	pts := make([]model.Point2D, len(nodes))
	for k, n := range nodes {
		pts[k] = n.Position
	}
	return pts
}
