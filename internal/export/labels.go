package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/maskroute/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// PortLabel holds the data encoded into each port label's QR code.
type PortLabel struct {
	Label       string  `json:"label"`
	Side        string  `json:"side"`
	I           int     `json:"i"`
	J           int     `json:"j"`
	NodeX       float64 `json:"node_x_um"`
	NodeY       float64 `json:"node_y_um"`
	X           float64 `json:"x_um"`
	Y           float64 `json:"y_um"`
	Orientation int     `json:"orientation"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectPortLabels converts ports to label records, keeping their order.
func CollectPortLabels(ports []model.Port) []PortLabel {
	labels := make([]PortLabel, 0, len(ports))
	for _, p := range ports {
		labels = append(labels, PortLabel{
			Label:       p.Label(),
			Side:        p.Side.String(),
			I:           p.I,
			J:           p.J,
			NodeX:       p.Node.X,
			NodeY:       p.Node.Y,
			X:           p.Position.X,
			Y:           p.Position.Y,
			Orientation: p.Orientation,
		})
	}
	return labels
}

// ExportPortMap generates a PDF of QR-coded labels, one per escape port.
// Each label shows the port name, node index and end position, and its QR
// code encodes the PortLabel as JSON for probe-card and bonding setups.
func ExportPortMap(path string, ports []model.Port) error {
	labels := CollectPortLabels(ports)
	if len(labels) == 0 {
		return fmt.Errorf("no ports to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info PortLabel) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Port labels are unique per escape, so they double as image names.
	imgName := "qr_" + info.Label
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, info.Label, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("Node (%d, %d) %s", info.I, info.J, info.Side), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("End @ (%.1f, %.1f) um", info.X, info.Y), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Exit %d deg", info.Orientation), "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
