// Package layout is an in-memory mask layout: named cells holding filled
// regions on numbered layers, plus placed references to other cells.
package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/piwi3910/maskroute/internal/geom"
	"github.com/piwi3910/maskroute/internal/model"
)

var (
	ErrUnknownLayer = errors.New("layer not defined")
	ErrUnknownCell  = errors.New("cell does not exist")
	ErrCycle        = errors.New("cell reference cycle")
)

// Reference places a child cell inside a parent.
type Reference struct {
	Cell      string         `json:"cell" yaml:"cell"`
	Transform geom.Transform `json:"transform" yaml:"transform"`
}

// Cell is a named container of regions and references.
type Cell struct {
	Name       string         `json:"name" yaml:"name"`
	Regions    []model.Region `json:"regions" yaml:"regions"`
	References []Reference    `json:"references" yaml:"references"`
}

// Layout is a library of cells and the layer table they draw on. It is not
// safe for concurrent use.
type Layout struct {
	Name    string
	TopCell string

	// CircleTolerance is the maximum sagitta when circles are turned into
	// polygons.
	CircleTolerance float64

	layers map[string]model.Layer
	cells  map[string]*Cell
	order  []string
	log    *slog.Logger
}

// New creates a layout with an empty top cell. A nil logger uses
// slog.Default().
func New(name, topCell string, logger *slog.Logger) *Layout {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Layout{
		Name:            name,
		TopCell:         topCell,
		CircleTolerance: 0.01,
		layers:          make(map[string]model.Layer),
		cells:           make(map[string]*Cell),
		log:             logger,
	}
	l.AddCell(topCell)
	return l
}

// FromConfig creates a layout whose layer table comes from the application
// config.
func FromConfig(name string, cfg model.AppConfig, logger *slog.Logger) *Layout {
	l := New(name, cfg.Escape.Cell, logger)
	for _, layer := range cfg.Layers {
		l.DefineLayer(layer.Name, layer.Number, layer.Description)
	}
	return l
}

// AddCell creates a cell, or returns the existing one with that name.
func (l *Layout) AddCell(name string) *Cell {
	if c, ok := l.cells[name]; ok {
		l.log.Warn("cell already exists", "cell", name)
		return c
	}
	c := &Cell{Name: name}
	l.cells[name] = c
	l.order = append(l.order, name)
	return c
}

// DefineLayer registers or updates a layer.
func (l *Layout) DefineLayer(name string, number int, description string) {
	if _, ok := l.layers[name]; ok {
		l.log.Debug("layer redefined", "layer", name, "number", number)
	}
	l.layers[name] = model.Layer{Name: name, Number: number, Description: description}
}

// LayerExists reports whether name is a defined layer.
func (l *Layout) LayerExists(name string) bool {
	_, ok := l.layers[name]
	return ok
}

// LayerNumber returns the number of a defined layer.
func (l *Layout) LayerNumber(name string) (int, error) {
	layer, ok := l.layers[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return layer.Number, nil
}

// Layers returns the layer table sorted by number.
func (l *Layout) Layers() []model.Layer {
	out := make([]model.Layer, 0, len(l.layers))
	for _, layer := range l.layers {
		out = append(out, layer)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Number != out[b].Number {
			return out[a].Number < out[b].Number
		}
		return out[a].Name < out[b].Name
	})
	return out
}

// CellExists reports whether name is a cell of the layout.
func (l *Layout) CellExists(name string) bool {
	_, ok := l.cells[name]
	return ok
}

// Cell returns a cell by name.
func (l *Layout) Cell(name string) (*Cell, error) {
	c, ok := l.cells[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCell, name)
	}
	return c, nil
}

// Cells returns every cell in creation order.
func (l *Layout) Cells() []*Cell {
	out := make([]*Cell, len(l.order))
	for i, name := range l.order {
		out[i] = l.cells[name]
	}
	return out
}

func (l *Layout) target(cell, layer string) (*Cell, error) {
	c, err := l.Cell(cell)
	if err != nil {
		return nil, err
	}
	if !l.LayerExists(layer) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return c, nil
}

// AddPolygon adds one closed polygon to a cell.
func (l *Layout) AddPolygon(cell string, points model.Outline, layer string) (model.Region, error) {
	c, err := l.target(cell, layer)
	if err != nil {
		return model.Region{}, err
	}
	if len(points) < 3 {
		return model.Region{}, fmt.Errorf("polygon on %q needs at least 3 points, got %d", layer, len(points))
	}
	r := model.NewRegion(layer, append(model.Outline(nil), points...))
	c.Regions = append(c.Regions, r)
	return r, nil
}

// AddRectangle adds the rectangle spanning two corners.
func (l *Layout) AddRectangle(cell string, lowerLeft, upperRight model.Point2D, layer string) (model.Region, error) {
	return l.AddPolygon(cell, model.Rect(lowerLeft, upperRight), layer)
}

// AddCenteredRectangle adds a width by height rectangle around center.
func (l *Layout) AddCenteredRectangle(cell string, center model.Point2D, width, height float64, layer string) (model.Region, error) {
	half := model.Point2D{X: width / 2, Y: height / 2}
	return l.AddRectangle(cell, center.Sub(half), center.Add(half), layer)
}

// AddPathAsPolygon outlines a centreline of the given width and adds it as a
// filled region.
func (l *Layout) AddPathAsPolygon(cell string, points []model.Point2D, width float64, layer string) (model.Region, error) {
	if _, err := l.target(cell, layer); err != nil {
		return model.Region{}, err
	}
	poly := geom.PathToPolygon(points, width)
	if poly == nil {
		return model.Region{}, fmt.Errorf("path on %q is degenerate (%d points, width %.3f)", layer, len(points), width)
	}
	return l.AddPolygon(cell, poly, layer)
}

// AddCircleAsPolygon adds a circle approximated within CircleTolerance.
func (l *Layout) AddCircleAsPolygon(cell string, center model.Point2D, radius float64, layer string) (model.Region, error) {
	if radius <= 0 {
		return model.Region{}, fmt.Errorf("circle radius must be positive, got %.3f", radius)
	}
	segs := geom.CircleSegments(radius, l.CircleTolerance)
	return l.AddPolygon(cell, geom.CirclePolygon(center, radius, segs), layer)
}

// AddCellReference places child inside parent. Placing a cell inside itself,
// directly or through other references, is rejected.
func (l *Layout) AddCellReference(parent, child string, t geom.Transform) error {
	p, err := l.Cell(parent)
	if err != nil {
		return err
	}
	if _, err := l.Cell(child); err != nil {
		return err
	}
	if parent == child || l.reaches(child, parent) {
		return fmt.Errorf("%w: %q -> %q", ErrCycle, parent, child)
	}
	p.References = append(p.References, Reference{Cell: child, Transform: t})
	return nil
}

func (l *Layout) reaches(from, to string) bool {
	for _, ref := range l.cells[from].References {
		if ref.Cell == to || l.reaches(ref.Cell, to) {
			return true
		}
	}
	return false
}

// AddCellArray places an n by m grid of child references into parent,
// centred on origin.
func (l *Layout) AddCellArray(parent, child string, n, m int, spacingX, spacingY float64, origin model.Point2D) error {
	if n < 1 || m < 1 {
		return fmt.Errorf("cell array needs at least 1x1 copies, got %dx%d", n, m)
	}
	startX := origin.X - spacingX*float64(n-1)/2
	startY := origin.Y - spacingY*float64(m-1)/2
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			t := geom.Transform{Origin: model.Point2D{
				X: startX + float64(i)*spacingX,
				Y: startY + float64(j)*spacingY,
			}}
			if err := l.AddCellReference(parent, child, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flatten returns every region of a cell with all references resolved into
// placed copies. Copies get fresh IDs.
func (l *Layout) Flatten(cell string) ([]model.Region, error) {
	c, err := l.Cell(cell)
	if err != nil {
		return nil, err
	}
	out := append([]model.Region(nil), c.Regions...)
	for _, ref := range c.References {
		child, err := l.Flatten(ref.Cell)
		if err != nil {
			return nil, err
		}
		for _, r := range child {
			polys := make([]model.Outline, len(r.Polygons))
			for k, poly := range r.Polygons {
				polys[k] = ref.Transform.ApplyOutline(poly)
			}
			out = append(out, model.NewRegion(r.Layer, polys...))
		}
	}
	return out, nil
}

// RegionsOnLayer returns the flattened regions of cell on one layer.
func (l *Layout) RegionsOnLayer(cell, layer string) ([]model.Region, error) {
	all, err := l.Flatten(cell)
	if err != nil {
		return nil, err
	}
	var out []model.Region
	for _, r := range all {
		if r.Layer == layer {
			out = append(out, r)
		}
	}
	return out, nil
}

// LayerArea sums the polygon area drawn on layer in the flattened cell.
// Overlaps are counted once per polygon.
func (l *Layout) LayerArea(cell, layer string) (float64, error) {
	regions, err := l.RegionsOnLayer(cell, layer)
	if err != nil {
		return 0, err
	}
	var area float64
	for _, r := range regions {
		area += r.Area()
	}
	return area, nil
}

// Bounds returns the bounding box of the flattened cell.
func (l *Layout) Bounds(cell string) (min, max model.Point2D, err error) {
	regions, err := l.Flatten(cell)
	if err != nil {
		return min, max, err
	}
	min = model.Point2D{X: math.Inf(1), Y: math.Inf(1)}
	max = model.Point2D{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, r := range regions {
		lo, hi := r.BoundingBox()
		min.X, min.Y = math.Min(min.X, lo.X), math.Min(min.Y, lo.Y)
		max.X, max.Y = math.Max(max.X, hi.X), math.Max(max.Y, hi.Y)
	}
	if len(regions) == 0 {
		return model.Point2D{}, model.Point2D{}, nil
	}
	return min, max, nil
}
