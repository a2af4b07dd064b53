// Package drc validates emitted geometry: it merges touching regions into
// clusters and checks minimum spacing and minimum feature size per layer.
package drc

import (
	"github.com/tidwall/rtree"

	"github.com/piwi3910/maskroute/internal/geom"
	"github.com/piwi3910/maskroute/internal/model"
)

func box(r model.Region) (min, max [2]float64) {
	lo, hi := r.BoundingBox()
	return [2]float64{lo.X, lo.Y}, [2]float64{hi.X, hi.Y}
}

// index builds a spatial index over region bounding boxes keyed by slice
// position.
func index(regions []model.Region) *rtree.RTreeG[int] {
	var tr rtree.RTreeG[int]
	for i, r := range regions {
		min, max := box(r)
		tr.Insert(min, max, i)
	}
	return &tr
}

// Cluster merges every region with all regions it intersects, directly or
// through a chain, so each input region lands in exactly one output region.
// A region that touches nothing is returned unchanged. Merged regions carry
// all member polygons and the layer of their first member. Output follows
// the position of each cluster's first member in the input.
func Cluster(regions []model.Region) []model.Region {
	tr := index(regions)
	visited := make([]bool, len(regions))
	var out []model.Region

	for i := range regions {
		if visited[i] {
			continue
		}
		visited[i] = true
		members := []int{i}
		for q := 0; q < len(members); q++ {
			cur := regions[members[q]]
			min, max := box(cur)
			tr.Search(min, max, func(_, _ [2]float64, j int) bool {
				if !visited[j] && geom.RegionsIntersect(cur, regions[j]) {
					visited[j] = true
					members = append(members, j)
				}
				return true
			})
		}

		if len(members) == 1 {
			out = append(out, regions[i])
			continue
		}
		var polys []model.Outline
		for _, m := range members {
			polys = append(polys, regions[m].Polygons...)
		}
		out = append(out, model.NewRegion(regions[i].Layer, polys...))
	}
	return out
}

// ClusterStable re-runs Cluster until the number of clusters stops changing.
func ClusterStable(regions []model.Region) []model.Region {
	cur := Cluster(regions)
	for {
		next := Cluster(cur)
		if len(next) == len(cur) {
			return next
		}
		cur = next
	}
}
