package drc

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/rtree"

	"github.com/piwi3910/maskroute/internal/geom"
	"github.com/piwi3910/maskroute/internal/model"
)

var (
	// ErrSpacing matches every *SpacingViolation.
	ErrSpacing = errors.New("minimum spacing violated")
	// ErrFeatureSize matches every *FeatureSizeViolation.
	ErrFeatureSize = errors.New("minimum feature size violated")
)

// SpacingViolation is a pair of clusters closer than the minimum spacing.
type SpacingViolation struct {
	Layer      string
	A, B       string // region IDs
	Distance   float64
	MinSpacing float64
}

func (v *SpacingViolation) Error() string {
	return fmt.Sprintf("spacing %.4f below minimum %.4f on layer %q between %s and %s",
		v.Distance, v.MinSpacing, v.Layer, v.A, v.B)
}

func (v *SpacingViolation) Is(target error) bool { return target == ErrSpacing }

// FeatureSizeViolation is a region whose bounding box is narrower than the
// minimum feature size in either dimension.
type FeatureSizeViolation struct {
	Layer   string
	Region  string
	Width   float64
	Height  float64
	MinSize float64
}

func (v *FeatureSizeViolation) Error() string {
	return fmt.Sprintf("feature %s on layer %q is %.4f x %.4f, below minimum %.4f",
		v.Region, v.Layer, v.Width, v.Height, v.MinSize)
}

func (v *FeatureSizeViolation) Is(target error) bool { return target == ErrFeatureSize }

// nearest calls fn with every other cluster in ascending exact distance from
// cluster i until fn returns false.
func nearest(tr *rtree.RTreeG[int], clusters []model.Region, i int, fn func(j int, dist float64) bool) {
	min, max := box(clusters[i])
	// BoxDist works in squared distances, so the exact distance is squared too.
	exact := func(_, _ [2]float64, j int) float64 {
		if j == i {
			return 0
		}
		d := geom.RegionDistance(clusters[i], clusters[j])
		return d * d
	}
	tr.Nearby(rtree.BoxDist[float64, int](min, max, exact), func(_, _ [2]float64, j int, d2 float64) bool {
		if j == i {
			return true
		}
		return fn(j, math.Sqrt(d2))
	})
}

// CheckSpacing finds each cluster's nearest neighbour and returns a
// *SpacingViolation for the first cluster whose nearest neighbour is closer
// than minSpacing. A non-positive minimum disables the check.
func CheckSpacing(clusters []model.Region, minSpacing float64) error {
	if minSpacing <= 0 || len(clusters) < 2 {
		return nil
	}
	tr := index(clusters)
	for i := range clusters {
		var v *SpacingViolation
		nearest(tr, clusters, i, func(j int, dist float64) bool {
			if dist < minSpacing {
				v = &SpacingViolation{
					Layer:      clusters[i].Layer,
					A:          clusters[i].ID,
					B:          clusters[j].ID,
					Distance:   dist,
					MinSpacing: minSpacing,
				}
			}
			return false
		})
		if v != nil {
			return v
		}
	}
	return nil
}

// FindSpacingViolations reports every cluster pair closer than minSpacing,
// each pair once.
func FindSpacingViolations(clusters []model.Region, minSpacing float64) []SpacingViolation {
	if minSpacing <= 0 || len(clusters) < 2 {
		return nil
	}
	tr := index(clusters)
	var out []SpacingViolation
	for i := range clusters {
		nearest(tr, clusters, i, func(j int, dist float64) bool {
			if dist >= minSpacing {
				return false
			}
			if j > i {
				out = append(out, SpacingViolation{
					Layer:      clusters[i].Layer,
					A:          clusters[i].ID,
					B:          clusters[j].ID,
					Distance:   dist,
					MinSpacing: minSpacing,
				})
			}
			return true
		})
	}
	return out
}

// featureSize returns the bounding box dimensions of a region.
func featureSize(r model.Region) (w, h float64) {
	lo, hi := r.BoundingBox()
	return hi.X - lo.X, hi.Y - lo.Y
}

// CheckFeatureSize returns a *FeatureSizeViolation for the first region
// whose bounding box is narrower than minSize in either dimension.
func CheckFeatureSize(regions []model.Region, minSize float64) error {
	if v := FindFeatureSizeViolations(regions, minSize); len(v) > 0 {
		return &v[0]
	}
	return nil
}

// FindFeatureSizeViolations reports every undersized region.
func FindFeatureSizeViolations(regions []model.Region, minSize float64) []FeatureSizeViolation {
	if minSize <= 0 {
		return nil
	}
	var out []FeatureSizeViolation
	for _, r := range regions {
		w, h := featureSize(r)
		if w < minSize || h < minSize {
			out = append(out, FeatureSizeViolation{
				Layer:   r.Layer,
				Region:  r.ID,
				Width:   w,
				Height:  h,
				MinSize: minSize,
			})
		}
	}
	return out
}
