package export

import (
	"fmt"

	"github.com/piwi3910/maskroute/internal/layout"
	"github.com/piwi3910/maskroute/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// dxfColor maps a layout layer number onto the AutoCAD color index range.
func dxfColor(number int) color.ColorNumber {
	if number < 0 {
		number = -number
	}
	return color.ColorNumber(number%255 + 1)
}

// WriteDXF writes every polygon as a closed LWPOLYLINE on a DXF layer named
// after its layout layer. Port positions are marked with small circles on a
// "Ports" layer when ports are given.
func WriteDXF(path string, regions []model.Region, layers []model.Layer, ports []model.Port) error {
	if len(regions) == 0 {
		return fmt.Errorf("no regions to export")
	}

	d := dxf.NewDrawing()
	numbers := make(map[string]int, len(layers))
	for _, l := range layers {
		numbers[l.Name] = l.Number
	}

	created := map[string]bool{}
	useLayer := func(name string) error {
		if created[name] {
			return d.ChangeLayer(name)
		}
		if _, err := d.AddLayer(name, dxfColor(numbers[name]), dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add DXF layer %q: %w", name, err)
		}
		created[name] = true
		return nil
	}

	for _, r := range regions {
		if err := useLayer(r.Layer); err != nil {
			return err
		}
		for _, poly := range r.Polygons {
			if len(poly) < 3 {
				continue
			}
			verts := make([][]float64, len(poly))
			for k, p := range poly {
				verts[k] = []float64{p.X, p.Y}
			}
			if _, err := d.LwPolyline(true, verts...); err != nil {
				return fmt.Errorf("failed to add polygon on %q: %w", r.Layer, err)
			}
		}
	}

	if len(ports) > 0 {
		if err := useLayer("Ports"); err != nil {
			return err
		}
		for _, p := range ports {
			if _, err := d.Circle(p.Position.X, p.Position.Y, 0, 1); err != nil {
				return fmt.Errorf("failed to mark port %s: %w", p.Label(), err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}

// WriteLayoutDXF flattens a cell and writes it with the layout's layer table.
func WriteLayoutDXF(path string, l *layout.Layout, cell string, ports []model.Port) error {
	regions, err := l.Flatten(cell)
	if err != nil {
		return fmt.Errorf("failed to flatten %q: %w", cell, err)
	}
	return WriteDXF(path, regions, l.Layers(), ports)
}
