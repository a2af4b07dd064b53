// Package export writes routed layouts to DXF, PDF plots, QR-labelled port
// maps and Excel port tables.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/maskroute/internal/layout"
	"github.com/piwi3910/maskroute/internal/model"
)

// layerColor represents an RGB color for one layout layer.
type layerColor struct {
	R, G, B int
}

// layerColors cycles through distinguishable fills, one per layer.
var layerColors = []layerColor{
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 76, G: 175, B: 80},  // green
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// Plot is everything drawn by ExportPDF.
type Plot struct {
	Title   string
	Regions []model.Region
	Layers  []model.Layer // legend order; layers missing here are drawn last
	Ports   []model.Port
	Notes   []string // free text for the summary page, such as DRC findings
}

// PlotFromLayout flattens a cell into a Plot.
func PlotFromLayout(l *layout.Layout, cell string, ports []model.Port) (Plot, error) {
	regions, err := l.Flatten(cell)
	if err != nil {
		return Plot{}, fmt.Errorf("failed to flatten %q: %w", cell, err)
	}
	return Plot{
		Title:   fmt.Sprintf("%s / %s", l.Name, cell),
		Regions: regions,
		Layers:  l.Layers(),
		Ports:   ports,
	}, nil
}

// layerOrder returns the layer names to draw, in legend order.
func (p Plot) layerOrder() []string {
	seen := map[string]bool{}
	var names []string
	for _, l := range p.Layers {
		names = append(names, l.Name)
		seen[l.Name] = true
	}
	var extra []string
	for _, r := range p.Regions {
		if !seen[r.Layer] {
			seen[r.Layer] = true
			extra = append(extra, r.Layer)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func (p Plot) bounds() (min, max model.Point2D, ok bool) {
	min = model.Point2D{X: math.Inf(1), Y: math.Inf(1)}
	max = model.Point2D{X: math.Inf(-1), Y: math.Inf(-1)}
	grow := func(lo, hi model.Point2D) {
		min.X, min.Y = math.Min(min.X, lo.X), math.Min(min.Y, lo.Y)
		max.X, max.Y = math.Max(max.X, hi.X), math.Max(max.Y, hi.Y)
		ok = true
	}
	for _, r := range p.Regions {
		grow(r.BoundingBox())
	}
	for _, port := range p.Ports {
		grow(port.Position, port.Position)
	}
	return min, max, ok
}

// ExportPDF generates a PDF with a scaled plot of the regions, one fill
// color per layer and port markers, followed by a summary page.
func ExportPDF(path string, plot Plot) error {
	if len(plot.Regions) == 0 && len(plot.Ports) == 0 {
		return fmt.Errorf("nothing to plot")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPlotPage(pdf, plot)

	pdf.AddPage()
	renderSummaryPage(pdf, plot)

	return pdf.OutputFileAndClose(path)
}

// renderPlotPage draws the layout on the current page. Layout Y grows up,
// page Y grows down.
func renderPlotPage(pdf *fpdf.Fpdf, plot Plot) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, plot.Title, "", 0, "L", false, 0, "")

	min, max, _ := plot.bounds()
	w := math.Max(max.X-min.X, 1e-9)
	h := math.Max(max.Y-min.Y, 1e-9)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Regions: %d | Ports: %d | Extent: %.1f x %.1f um", len(plot.Regions), len(plot.Ports), w, h)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/w, drawHeight/h)
	canvasW, canvasH := w*scale, h*scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	toPage := func(p model.Point2D) (float64, float64) {
		return offsetX + (p.X-min.X)*scale, offsetY + (max.Y-p.Y)*scale
	}

	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.2)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "D")

	order := plot.layerOrder()
	for i, name := range order {
		col := layerColors[i%len(layerColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.05)
		for _, r := range plot.Regions {
			if r.Layer != name {
				continue
			}
			for _, poly := range r.Polygons {
				pts := make([]fpdf.PointType, len(poly))
				for k, p := range poly {
					pts[k].X, pts[k].Y = toPage(p)
				}
				pdf.Polygon(pts, "FD")
			}
		}
	}

	pdf.SetFillColor(200, 0, 0)
	for _, port := range plot.Ports {
		x, y := toPage(port.Position)
		pdf.Circle(x, y, 0.6, "F")
	}

	drawDimensionAnnotations(pdf, w, h, offsetX, offsetY, canvasW, canvasH)
	drawLayerLegend(pdf, order, offsetY+canvasH+6)
}

// drawDimensionAnnotations adds width and height labels outside the plot.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, w, h, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f um", w)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f um", h)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawLayerLegend renders one color swatch per layer.
func drawLayerLegend(pdf *fpdf.Fpdf, layers []string, startY float64) {
	if len(layers) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(20, 4, "Layers:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 22
	maxX := pageWidth - marginRight

	for i, name := range layers {
		col := layerColors[i%len(layerColors)]
		labelW := pdf.GetStringWidth(name) + 6
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, name, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSummaryPage lists per-layer statistics and the plot notes.
func renderSummaryPage(pdf *fpdf.Fpdf, plot Plot) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Layout Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Layers", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{50, 30, 40, 60}
	headers := []string{"Layer", "Regions", "Polygons", "Area (um^2)"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, name := range plot.layerOrder() {
		var regions, polys int
		var area float64
		for _, r := range plot.Regions {
			if r.Layer == name {
				regions++
				polys += len(r.Polygons)
				area += r.Area()
			}
		}
		row := []string{name, fmt.Sprintf("%d", regions), fmt.Sprintf("%d", polys), fmt.Sprintf("%.1f", area)}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(plot.Notes) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "Notes", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		for _, note := range plot.Notes {
			if y > pageHeight-marginBottom-10 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(260, 5, "- "+note, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by maskroute", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
