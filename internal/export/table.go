package export

import (
	"fmt"

	"github.com/piwi3910/maskroute/internal/model"
	"github.com/xuri/excelize/v2"
)

const portSheet = "Ports"

var portTableHeaders = []string{"Label", "Side", "I", "J", "Node X (um)", "Node Y (um)", "Port X (um)", "Port Y (um)", "Orientation"}

// ExportPortTable writes one row per port to an Excel workbook.
func ExportPortTable(path string, ports []model.Port) error {
	if len(ports) == 0 {
		return fmt.Errorf("no ports to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), portSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(portSheet, "A1", &portTableHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for k, l := range CollectPortLabels(ports) {
		cell, err := excelize.CoordinatesToCellName(1, k+2)
		if err != nil {
			return err
		}
		row := []interface{}{l.Label, l.Side, l.I, l.J, l.NodeX, l.NodeY, l.X, l.Y, l.Orientation}
		if err := f.SetSheetRow(portSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", k+2, err)
		}
	}

	if err := f.SetPanes(portSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save port table: %w", err)
	}
	return nil
}
