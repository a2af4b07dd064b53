package geom

import (
	"math"

	"github.com/piwi3910/maskroute/internal/model"
)

const eps = 1e-9

// cross returns the z component of (b-a) x (c-a).
func cross(a, b, c model.Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func sign(v float64) int {
	switch {
	case v > eps:
		return 1
	case v < -eps:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether c, known to be collinear with ab, lies within it.
func onSegment(a, b, c model.Point2D) bool {
	return c.X >= math.Min(a.X, b.X)-eps && c.X <= math.Max(a.X, b.X)+eps &&
		c.Y >= math.Min(a.Y, b.Y)-eps && c.Y <= math.Max(a.Y, b.Y)+eps
}

// SegmentsIntersect reports whether segments ab and cd share at least one
// point. Touching endpoints and collinear overlap count as intersecting.
func SegmentsIntersect(a, b, c, d model.Point2D) bool {
	d1 := sign(cross(c, d, a))
	d2 := sign(cross(c, d, b))
	d3 := sign(cross(a, b, c))
	d4 := sign(cross(a, b, d))
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

// PointInPolygon reports whether p lies inside or on the boundary of the
// closed outline, using the even-odd rule.
func PointInPolygon(p model.Point2D, o model.Outline) bool {
	n := len(o)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := o[j], o[i]
		if sign(cross(a, b, p)) == 0 && onSegment(a, b, p) {
			return true
		}
		if (b.Y > p.Y) != (a.Y > p.Y) {
			x := (a.X-b.X)*(p.Y-b.Y)/(a.Y-b.Y) + b.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// boxesOverlap is the cheap rejection test ahead of the edge checks.
func boxesOverlap(a, b model.Outline) bool {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	return amin.X <= bmax.X+eps && bmin.X <= amax.X+eps &&
		amin.Y <= bmax.Y+eps && bmin.Y <= amax.Y+eps
}

// PolygonsIntersect reports whether two closed outlines share any point,
// including containment of one inside the other.
func PolygonsIntersect(a, b model.Outline) bool {
	if len(a) == 0 || len(b) == 0 || !boxesOverlap(a, b) {
		return false
	}
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if SegmentsIntersect(a1, a2, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return PointInPolygon(a[0], b) || PointInPolygon(b[0], a)
}

// PointSegmentDistance returns the distance from p to segment ab.
func PointSegmentDistance(p, a, b model.Point2D) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(model.Point2D{X: a.X + t*dx, Y: a.Y + t*dy})
}

// SegmentDistance returns the shortest distance between segments ab and cd.
func SegmentDistance(a, b, c, d model.Point2D) float64 {
	if SegmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDistance(a, c, d), PointSegmentDistance(b, c, d)),
		math.Min(PointSegmentDistance(c, a, b), PointSegmentDistance(d, a, b)),
	)
}

// PointPolygonDistance returns 0 for points inside o, otherwise the distance
// to its nearest edge.
func PointPolygonDistance(p model.Point2D, o model.Outline) float64 {
	if PointInPolygon(p, o) {
		return 0
	}
	best := math.Inf(1)
	for i := range o {
		best = math.Min(best, PointSegmentDistance(p, o[i], o[(i+1)%len(o)]))
	}
	return best
}

// PolygonDistance returns the minimum distance between two closed outlines,
// 0 when they intersect.
func PolygonDistance(a, b model.Outline) float64 {
	if PolygonsIntersect(a, b) {
		return 0
	}
	best := math.Inf(1)
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			best = math.Min(best, SegmentDistance(a1, a2, b[j], b[(j+1)%len(b)]))
		}
	}
	return best
}

// RegionsIntersect reports whether any polygon of a touches any polygon of b.
func RegionsIntersect(a, b model.Region) bool {
	for _, pa := range a.Polygons {
		for _, pb := range b.Polygons {
			if PolygonsIntersect(pa, pb) {
				return true
			}
		}
	}
	return false
}

// RegionDistance is the minimum polygon distance between two regions.
func RegionDistance(a, b model.Region) float64 {
	best := math.Inf(1)
	for _, pa := range a.Polygons {
		for _, pb := range b.Polygons {
			best = math.Min(best, PolygonDistance(pa, pb))
			if best == 0 {
				return 0
			}
		}
	}
	return best
}
