package geom

import (
	"math"

	"github.com/piwi3910/maskroute/internal/model"
)

// simplifyPath drops repeated points and interior points collinear with
// their neighbours.
func simplifyPath(points []model.Point2D) []model.Point2D {
	var out []model.Point2D
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Dist(p) < eps {
			continue
		}
		if len(out) >= 2 {
			a, b := out[len(out)-2], out[len(out)-1]
			if sign(cross(a, b, p)) == 0 && (b.X-a.X)*(p.X-b.X)+(b.Y-a.Y)*(p.Y-b.Y) > 0 {
				out[len(out)-1] = p
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func leftNormal(a, b model.Point2D) model.Point2D {
	l := a.Dist(b)
	return model.Point2D{X: -(b.Y - a.Y) / l, Y: (b.X - a.X) / l}
}

// PathToPolygon outlines a polyline of the given width with flat ends and
// mitred joins. It returns nil when the path has no length.
func PathToPolygon(points []model.Point2D, width float64) model.Outline {
	pts := simplifyPath(points)
	if len(pts) < 2 || width <= 0 {
		return nil
	}
	half := width / 2
	n := len(pts)
	left := make([]model.Point2D, n)
	right := make([]model.Point2D, n)
	for i, p := range pts {
		var offset model.Point2D
		switch i {
		case 0:
			offset = leftNormal(pts[0], pts[1]).Scale(half)
		case n - 1:
			offset = leftNormal(pts[n-2], pts[n-1]).Scale(half)
		default:
			n1 := leftNormal(pts[i-1], p)
			n2 := leftNormal(p, pts[i+1])
			m := n1.Add(n2)
			ml := math.Hypot(m.X, m.Y)
			if ml < eps {
				offset = n1.Scale(half)
				break
			}
			m = m.Scale(1 / ml)
			offset = m.Scale(half / (m.X*n1.X + m.Y*n1.Y))
		}
		left[i] = p.Add(offset)
		right[i] = p.Sub(offset)
	}
	outline := make(model.Outline, 0, 2*n)
	outline = append(outline, left...)
	for i := n - 1; i >= 0; i-- {
		outline = append(outline, right[i])
	}
	return outline
}

// CircleSegments returns the number of polygon sides that keeps the chord
// error of a circle of the given radius below tolerance.
func CircleSegments(radius, tolerance float64) int {
	if radius <= 0 || tolerance <= 0 || tolerance >= radius {
		return 8
	}
	n := int(math.Ceil(math.Pi / math.Acos(1-tolerance/radius)))
	if n < 8 {
		n = 8
	}
	return n
}

// CirclePolygon approximates a circle as a regular polygon.
func CirclePolygon(center model.Point2D, radius float64, segments int) model.Outline {
	if segments < 3 {
		segments = 3
	}
	outline := make(model.Outline, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		outline[i] = model.Point2D{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return outline
}

// PathLength sums the segment lengths of a polyline.
func PathLength(points []model.Point2D) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i-1].Dist(points[i])
	}
	return total
}
