// Package geom holds the planar geometry shared by the routers and the
// design-rule validator: the hinged launch path, rigid transforms, polygon
// predicates and distances, and path/circle polygonisation.
package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/maskroute/internal/model"
)

var (
	// ErrHingePrecondition means the straight run is too short to absorb the
	// diagonal launch.
	ErrHingePrecondition = errors.New("hinged path: extension_x below hinge point")
	// ErrInvalidAngle means the launch angle is outside (0, 90] degrees.
	ErrInvalidAngle = errors.New("hinged path: launch angle must be in (0, 90] degrees")
	// ErrInvalidRotation means a post rotation that is not a multiple of 90.
	ErrInvalidRotation = errors.New("hinged path: rotation must be a multiple of 90 degrees")
)

// HingedPath describes the canonical launch-then-level-off trace. In its own
// frame the path rises from the origin at Angle degrees to height ExtensionY,
// then runs straight until ExtensionX. The frame is mirrored in X when
// Reflect is set, rotated by Rotation degrees and moved to Start.
type HingedPath struct {
	Start      model.Point2D
	Angle      float64 // launch angle in degrees, 0 < Angle <= 90
	ExtensionY float64 // lateral rise of the diagonal
	ExtensionX float64 // total run length
	Rotation   int     // 0, 90, 180 or 270
	Reflect    bool
}

// HingeX returns the run length consumed by the diagonal.
func HingeX(angle, extensionY float64) float64 {
	if angle == 90 {
		return 0
	}
	return extensionY / math.Tan(angle*math.Pi/180)
}

// Points builds the three world-space points [start, hinge, end].
func (h HingedPath) Points() ([]model.Point2D, error) {
	if !(h.Angle > 0 && h.Angle <= 90) {
		return nil, fmt.Errorf("%w: got %.3f", ErrInvalidAngle, h.Angle)
	}
	if h.ExtensionY < 0 {
		return nil, fmt.Errorf("%w: negative extension_y %.3f", ErrHingePrecondition, h.ExtensionY)
	}
	if h.Rotation%90 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRotation, h.Rotation)
	}
	hx := HingeX(h.Angle, h.ExtensionY)
	if h.ExtensionX < hx {
		return nil, fmt.Errorf("%w: extension_x %.4f < hinge_x %.4f", ErrHingePrecondition, h.ExtensionX, hx)
	}

	pts := []model.Point2D{
		{X: 0, Y: 0},
		{X: hx, Y: h.ExtensionY},
		{X: h.ExtensionX, Y: h.ExtensionY},
	}
	for i, p := range pts {
		if h.Reflect {
			p.X = -p.X
		}
		pts[i] = RotateQuarter(p, h.Rotation).Add(h.Start)
	}
	return pts, nil
}

// CreateHingedPath is the functional form of HingedPath.Points.
func CreateHingedPath(start model.Point2D, angle, extensionY, extensionX float64, rotation int, reflect bool) ([]model.Point2D, error) {
	return HingedPath{
		Start:      start,
		Angle:      angle,
		ExtensionY: extensionY,
		ExtensionX: extensionX,
		Rotation:   rotation,
		Reflect:    reflect,
	}.Points()
}
