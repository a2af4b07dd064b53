package importer

import (
	"fmt"

	"github.com/piwi3910/maskroute/internal/grid"
	"github.com/piwi3910/maskroute/internal/model"
)

// gridTolerance absorbs rounding in exported pad coordinates.
const gridTolerance = 1e-6

// ImportPolygonFile reads one or more polygons from a point file. Every
// outline needs at least three points; shorter ones are dropped with a
// warning.
func ImportPolygonFile(path string) ImportResult {
	result := ImportPoints(path)
	if !result.OK() {
		return result
	}
	kept := result.Outlines[:0]
	for k, o := range result.Outlines {
		if len(o) < 3 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped polygon %d with %d points (need at least 3)", k+1, len(o)))
			continue
		}
		kept = append(kept, o)
	}
	result.Outlines = kept
	if len(kept) == 0 {
		result.Errors = append(result.Errors, "No polygon with at least 3 points found")
	}
	return result
}

// ImportPathFile reads a path centreline. The file must hold at least two
// points.
func ImportPathFile(path string) ImportResult {
	result := ImportPoints(path)
	if result.OK() && len(result.Points) < 2 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Path needs at least 2 points, got %d", len(result.Points)))
	}
	return result
}

// EscapeImport is the array recovered from a pad coordinate file.
type EscapeImport struct {
	Grid   grid.Grid
	Result ImportResult
}

// ImportEscapePoints reads pad coordinates and infers copies, pitch and
// centre of the array. Unevenly spaced coordinates are rejected.
func ImportEscapePoints(path string) EscapeImport {
	res := ImportPoints(path)
	out := EscapeImport{Result: res}
	if !res.OK() {
		return out
	}
	g, err := grid.InferFromPoints(res.Points, gridTolerance)
	if err != nil {
		out.Result.Errors = append(out.Result.Errors, fmt.Sprintf("Cannot infer pad array: %v", err))
		return out
	}
	out.Grid = g
	return out
}

// ApplyTo copies the inferred array geometry into escape settings.
func (e EscapeImport) ApplyTo(s *model.EscapeSettings) {
	s.Center = e.Grid.Center
	s.CopiesX = e.Grid.Cols
	s.CopiesY = e.Grid.Rows
	s.PitchX = e.Grid.PitchX
	s.PitchY = e.Grid.PitchY
}
