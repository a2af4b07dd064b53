package escape

import (
	"fmt"
	"sort"

	"github.com/piwi3910/maskroute/internal/grid"
	"github.com/piwi3910/maskroute/internal/model"
)

// Member is a grid node expressed in the frame of the side it escapes
// through. Lane runs along the side (column for Bottom/Top, row for
// Left/Right); Depth counts nodes between it and the array edge of that side.
type Member struct {
	Node  grid.Node
	Lane  int
	Depth int
}

// frame maps grid indices to lane/depth for one side.
func frame(g grid.Grid, side model.Side, n grid.Node) Member {
	m := Member{Node: n}
	switch side {
	case model.SideBottom:
		m.Lane, m.Depth = n.I, n.J
	case model.SideTop:
		m.Lane, m.Depth = n.I, g.Rows-1-n.J
	case model.SideLeft:
		m.Lane, m.Depth = n.J, n.I
	case model.SideRight:
		m.Lane, m.Depth = n.J, g.Cols-1-n.I
	}
	return m
}

// lateralPitch is the pitch between lanes of a side.
func lateralPitch(g grid.Grid, side model.Side) float64 {
	if side == model.SideBottom || side == model.SideTop {
		return g.PitchX
	}
	return g.PitchY
}

// depthPitch is the pitch between successive depths of a side.
func depthPitch(g grid.Grid, side model.Side) float64 {
	if side == model.SideBottom || side == model.SideTop {
		return g.PitchY
	}
	return g.PitchX
}

// laneAxis is the unit vector along increasing lane index.
func laneAxis(side model.Side) model.Point2D {
	if side == model.SideBottom || side == model.SideTop {
		return model.Point2D{X: 1}
	}
	return model.Point2D{Y: 1}
}

// Partition assigns every grid node to exactly one side and returns the
// members of each side ordered by lane, then depth. Indexing is by
// model.Side.
func Partition(g grid.Grid, sides int, selector string) ([4][]Member, error) {
	var out [4][]Member
	var assign func(n grid.Node) model.Side

	switch sides {
	case 4:
		assign = func(n grid.Node) model.Side { return quadrant(g, n.I, n.J) }
	case 3:
		primary, err := model.ParseSide(selector)
		if err != nil {
			return out, err
		}
		assign = func(n grid.Node) model.Side { return threeSided(g, primary, n) }
	case 2:
		low, high := model.EscapeSettings{Selector: selector}.AxisSides()
		assign = func(n grid.Node) model.Side {
			if low == model.SideLeft {
				if 2*n.I <= g.Cols-1 {
					return low
				}
				return high
			}
			if 2*n.J <= g.Rows-1 {
				return low
			}
			return high
		}
	case 1:
		side, err := model.ParseSide(selector)
		if err != nil {
			return out, err
		}
		assign = func(grid.Node) model.Side { return side }
	default:
		return out, fmt.Errorf("unsupported side count %d", sides)
	}

	for _, n := range g.RowMajor() {
		s := assign(n)
		out[s] = append(out[s], frame(g, s, n))
	}
	for s := range out {
		sort.Slice(out[s], func(a, b int) bool {
			if out[s][a].Lane != out[s][b].Lane {
				return out[s][a].Lane < out[s][b].Lane
			}
			return out[s][a].Depth < out[s][b].Depth
		})
	}
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// quadrant splits the array by the diagonals through its corners. Working in
// integers scaled by (M-1)(N-1) keeps diagonal ties exact. Ties go pinwheel
// fashion: the bottom-left diagonal to Bottom, bottom-right to Right,
// top-right to Top, top-left to Left, and the centre to Bottom.
func quadrant(g grid.Grid, i, j int) model.Side {
	a := (2*i - (g.Cols - 1)) * (g.Rows - 1)
	b := (2*j - (g.Rows - 1)) * (g.Cols - 1)
	switch {
	case a == 0 && b == 0:
		return model.SideBottom
	case b < -abs(a) || (b == a && b < 0):
		return model.SideBottom
	case a > abs(b) || (a == -b && a > 0):
		return model.SideRight
	case b > abs(a) || (b == a && b > 0):
		return model.SideTop
	default:
		return model.SideLeft
	}
}

// threeSided keeps the triangle spanned by the primary side and the midpoint
// of the closed side on the primary side; the remainder escapes through the
// two flanking sides.
func threeSided(g grid.Grid, primary model.Side, n grid.Node) model.Side {
	m := frame(g, primary, n)
	lanes, depths := g.Cols, g.Rows
	if primary == model.SideLeft || primary == model.SideRight {
		lanes, depths = g.Rows, g.Cols
	}
	// (d-(D-1))(L-1) <= -|2l-(L-1)|(D-1) is v <= 1-2|u| in unit coordinates.
	lhs := (m.Depth - (depths - 1)) * (lanes - 1)
	rhs := -abs(2*m.Lane-(lanes-1)) * (depths - 1)
	if lhs <= rhs {
		return primary
	}
	lowFlank, highFlank := model.SideLeft, model.SideRight
	if primary == model.SideLeft || primary == model.SideRight {
		lowFlank, highFlank = model.SideBottom, model.SideTop
	}
	if 2*m.Lane < lanes-1 {
		return lowFlank
	}
	return highFlank
}
