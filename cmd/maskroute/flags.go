package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/maskroute/internal/model"
	"github.com/spf13/cobra"
)

// outputFlags lets a command override the artefacts enabled in the config.
type outputFlags struct {
	dir       string
	dxf       bool
	pdf       bool
	portTable bool
	portMap   bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.dir, "out-dir", "o", "", "output directory (default from config)")
	f.BoolVar(&o.dxf, "dxf", true, "write the layout as DXF")
	f.BoolVar(&o.pdf, "pdf", true, "write a PDF plot with summary page")
	f.BoolVar(&o.portTable, "port-table", true, "write the port table workbook (xlsx)")
	f.BoolVar(&o.portMap, "port-map", false, "write QR port labels (PDF)")
}

// apply copies the flags the user set onto the output config.
func (o *outputFlags) apply(cmd *cobra.Command, out *model.OutputConfig) {
	changed := cmd.Flags().Changed
	if changed("out-dir") {
		out.Directory = o.dir
	}
	if changed("dxf") {
		out.DXF = o.dxf
	}
	if changed("pdf") {
		out.PDF = o.pdf
	}
	if changed("port-table") {
		out.PortTable = o.portTable
	}
	if changed("port-map") {
		out.PortMap = o.portMap
	}
	if out.Directory == "" {
		out.Directory = "."
	}
}

// parsePoint reads "x,y".
func parsePoint(s string) (model.Point2D, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return model.Point2D{}, err
	}
	return model.Point2D{X: v[0], Y: v[1]}, nil
}

// parseBounds reads "x1,y1,x2,y2" as lower-left and upper-right corners.
func parseBounds(s string) (model.Point2D, model.Point2D, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return model.Point2D{}, model.Point2D{}, err
	}
	return model.Point2D{X: v[0], Y: v[1]}, model.Point2D{X: v[2], Y: v[3]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid value %q: want %d comma-separated numbers", s, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
