package astar

import (
	"math"
	"sort"

	"github.com/piwi3910/maskroute/internal/geom"
	"github.com/piwi3910/maskroute/internal/model"
)

// Obstacles is a set of blocked grid cells. It is read-only during a search.
type Obstacles struct {
	cells map[Cell]struct{}
}

// NewObstacles returns a set holding cells.
func NewObstacles(cells ...Cell) *Obstacles {
	o := &Obstacles{cells: make(map[Cell]struct{}, len(cells))}
	for _, c := range cells {
		o.Add(c)
	}
	return o
}

// Add blocks c.
func (o *Obstacles) Add(c Cell) { o.cells[c] = struct{}{} }

// Remove unblocks c.
func (o *Obstacles) Remove(c Cell) { delete(o.cells, c) }

// Blocked reports whether c is an obstacle. A nil set blocks nothing.
func (o *Obstacles) Blocked(c Cell) bool {
	if o == nil {
		return false
	}
	_, ok := o.cells[c]
	return ok
}

// Len returns the number of blocked cells.
func (o *Obstacles) Len() int {
	if o == nil {
		return 0
	}
	return len(o.cells)
}

// Cells returns the blocked cells sorted by X then Y.
func (o *Obstacles) Cells() []Cell {
	if o == nil {
		return nil
	}
	out := make([]Cell, 0, len(o.cells))
	for c := range o.cells {
		out = append(out, c)
	}
	sortCells(out)
	return out
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].X != cells[b].X {
			return cells[a].X < cells[b].X
		}
		return cells[a].Y < cells[b].Y
	})
}

// AddRing blocks the rectangle outline between two corner cells.
func (o *Obstacles) AddRing(lowerLeft, upperRight Cell) {
	for y := lowerLeft.Y; y <= upperRight.Y; y++ {
		o.Add(Cell{lowerLeft.X, y})
		o.Add(Cell{upperRight.X, y})
	}
	for x := lowerLeft.X + 1; x < upperRight.X; x++ {
		o.Add(Cell{x, lowerLeft.Y})
		o.Add(Cell{x, upperRight.Y})
	}
}

// AddPolygon scales a layout polygon to grid units, grows it by buffer grid
// units, and blocks every cell centre that falls inside or on the grown
// outline.
func (o *Obstacles) AddPolygon(poly model.Outline, spacing, buffer float64) {
	if len(poly) < 3 || spacing <= 0 {
		return
	}
	scaled := make(model.Outline, len(poly))
	for k, p := range poly {
		scaled[k] = p.Scale(1 / spacing)
	}
	min, max := scaled.BoundingBox()
	for x := int(math.Floor(min.X - buffer)); x <= int(math.Ceil(max.X+buffer)); x++ {
		for y := int(math.Floor(min.Y - buffer)); y <= int(math.Ceil(max.Y+buffer)); y++ {
			p := model.Point2D{X: float64(x), Y: float64(y)}
			if buffer <= 0 {
				if geom.PointInPolygon(p, scaled) {
					o.Add(Cell{x, y})
				}
				continue
			}
			if geom.PointPolygonDistance(p, scaled) <= buffer {
				o.Add(Cell{x, y})
			}
		}
	}
}

// BuildObstacles rasterises polygons for a search between start and goal.
// Polygons are buffered by PathWidth / GridSpacing grid units, which keeps
// the clearance at one path width in layout units for any grid spacing. The
// optional boundary corners add a blocking ring. Start and goal are always
// left free.
func BuildObstacles(polygons []model.Outline, start, goal Cell, s model.SearchSettings) *Obstacles {
	o := NewObstacles()
	if s.LowerLeft != nil && s.UpperRight != nil {
		o.AddRing(ToCell(*s.LowerLeft, s.GridSpacing), ToCell(*s.UpperRight, s.GridSpacing))
	}
	buffer := s.PathWidth / s.GridSpacing
	for _, poly := range polygons {
		o.AddPolygon(poly, s.GridSpacing, buffer)
	}
	o.Remove(start)
	o.Remove(goal)
	return o
}
