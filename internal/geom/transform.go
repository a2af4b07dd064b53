package geom

import (
	"math"

	"github.com/piwi3910/maskroute/internal/model"
)

// RotateQuarter rotates p counter-clockwise about the origin by a multiple of
// 90 degrees. The result is exact, with no trigonometric rounding.
func RotateQuarter(p model.Point2D, degrees int) model.Point2D {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return model.Point2D{X: -p.Y, Y: p.X}
	case 180:
		return model.Point2D{X: -p.X, Y: -p.Y}
	case 270:
		return model.Point2D{X: p.Y, Y: -p.X}
	default:
		return p
	}
}

// Rotate rotates p counter-clockwise about the origin by an arbitrary angle.
func Rotate(p model.Point2D, degrees float64) model.Point2D {
	if math.Mod(degrees, 90) == 0 {
		return RotateQuarter(p, int(degrees))
	}
	rad := degrees * math.Pi / 180
	s, c := math.Sincos(rad)
	return model.Point2D{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// Transform is a rigid placement: optional X-axis reflection, then
// magnification, then rotation, then translation.
type Transform struct {
	Origin        model.Point2D
	Rotation      float64 // degrees
	Magnification float64 // 0 means 1
	ReflectX      bool    // mirror across the X axis before rotating
}

// Apply maps a single point.
func (t Transform) Apply(p model.Point2D) model.Point2D {
	if t.ReflectX {
		p.Y = -p.Y
	}
	if t.Magnification != 0 && t.Magnification != 1 {
		p = p.Scale(t.Magnification)
	}
	return Rotate(p, t.Rotation).Add(t.Origin)
}

// ApplyOutline maps every point of an outline.
func (t Transform) ApplyOutline(o model.Outline) model.Outline {
	out := make(model.Outline, len(o))
	for i, p := range o {
		out[i] = t.Apply(p)
	}
	return out
}
