package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate in layout units (µm unless stated).
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D { return Point2D{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D { return Point2D{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by s.
func (p Point2D) Scale(s float64) Point2D { return Point2D{X: p.X * s, Y: p.Y * s} }

// Dist returns the Euclidean distance between p and q.
func (p Point2D) Dist(q Point2D) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Area computes the absolute area using the shoelace formula.
func (o Outline) Area() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(area) / 2
}

// Rect returns the axis-aligned rectangle outline spanning two corners.
func Rect(a, b Point2D) Outline {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Outline{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// Region is a filled 2-D area on one layer. A region usually carries a single
// polygon; clustering produces regions holding every polygon of a connected
// group.
type Region struct {
	ID       string    `json:"id" yaml:"id"`
	Layer    string    `json:"layer" yaml:"layer"`
	Polygons []Outline `json:"polygons" yaml:"polygons"`
}

// NewRegion creates a region with a fresh short ID.
func NewRegion(layer string, polygons ...Outline) Region {
	return Region{
		ID:       uuid.New().String()[:8],
		Layer:    layer,
		Polygons: polygons,
	}
}

// BoundingBox returns the box enclosing every polygon of the region.
func (r Region) BoundingBox() (min, max Point2D) {
	first := true
	for _, poly := range r.Polygons {
		if len(poly) == 0 {
			continue
		}
		pmin, pmax := poly.BoundingBox()
		if first {
			min, max = pmin, pmax
			first = false
			continue
		}
		min.X = math.Min(min.X, pmin.X)
		min.Y = math.Min(min.Y, pmin.Y)
		max.X = math.Max(max.X, pmax.X)
		max.Y = math.Max(max.Y, pmax.Y)
	}
	return min, max
}

// Area returns the summed polygon area. Overlapping polygons are counted
// twice.
func (r Region) Area() float64 {
	var total float64
	for _, poly := range r.Polygons {
		total += poly.Area()
	}
	return total
}

// Layer is a named, numbered mask layer.
type Layer struct {
	Name        string `json:"name" yaml:"name"`
	Number      int    `json:"number" yaml:"number"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Side identifies the array edge a trace escapes through.
type Side int

const (
	SideBottom Side = iota // escapes toward -Y
	SideRight              // escapes toward +X
	SideTop                // escapes toward +Y
	SideLeft               // escapes toward -X
)

// AllSides lists the sides in output order.
var AllSides = []Side{SideBottom, SideRight, SideTop, SideLeft}

func (s Side) String() string {
	switch s {
	case SideBottom:
		return "Bottom"
	case SideRight:
		return "Right"
	case SideTop:
		return "Top"
	case SideLeft:
		return "Left"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Orientation returns the outward direction of the side in degrees.
func (s Side) Orientation() int {
	switch s {
	case SideRight:
		return 0
	case SideTop:
		return 90
	case SideLeft:
		return 180
	default:
		return 270
	}
}

// Direction returns the outward unit vector of the side.
func (s Side) Direction() Point2D {
	switch s {
	case SideRight:
		return Point2D{X: 1}
	case SideTop:
		return Point2D{Y: 1}
	case SideLeft:
		return Point2D{X: -1}
	default:
		return Point2D{Y: -1}
	}
}

// Opposite returns the side facing s.
func (s Side) Opposite() Side {
	return (s + 2) % 4
}

// ParseSide accepts a signed axis ("-y", "+x", "x") or a side name.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "-y", "bottom", "south":
		return SideBottom, nil
	case "+x", "x", "right", "east":
		return SideRight, nil
	case "+y", "y", "top", "north":
		return SideTop, nil
	case "-x", "left", "west":
		return SideLeft, nil
	}
	return SideBottom, fmt.Errorf("unknown side %q", s)
}

// Port is the terminal point of an escape trace together with the array node
// it belongs to.
type Port struct {
	I           int     `json:"i" yaml:"i"`
	J           int     `json:"j" yaml:"j"`
	Node        Point2D `json:"node" yaml:"node"`
	Position    Point2D `json:"position" yaml:"position"`
	Side        Side    `json:"side" yaml:"side"`
	Orientation int     `json:"orientation" yaml:"orientation"` // degrees: 0, 90, 180 or 270
}

// Label returns a stable human-readable port name such as "B-03-00".
func (p Port) Label() string {
	return fmt.Sprintf("%c-%02d-%02d", p.Side.String()[0], p.I, p.J)
}
