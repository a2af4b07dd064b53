// Package importer reads pad coordinates, polygon and path point lists from
// CSV/TXT and Excel files, and outlines from DXF drawings. It supports
// automatic delimiter detection and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/maskroute/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation. Points keeps file
// order; Outlines holds one polygon per group (or per closed DXF shape).
type ImportResult struct {
	Points   []model.Point2D
	Labels   []string // parallel to Points, empty when the file has no label column
	Outlines []model.Outline
	Errors   []string
	Warnings []string
}

// OK reports whether the import produced no errors.
func (r ImportResult) OK() bool { return len(r.Errors) == 0 }

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	X     int
	Y     int
	Label int
	Group int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"x":     {"x", "x (um)", "x_um", "pos x", "center x", "cx", "port x (um)"},
	"y":     {"y", "y (um)", "y_um", "pos y", "center y", "cy", "port y (um)"},
	"label": {"label", "name", "pad", "pin", "id"},
	"group": {"group", "polygon", "poly", "shape", "path"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (x, y) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{X: -1, Y: -1, Label: -1, Group: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "x":
					if mapping.X == -1 {
						mapping.X = i
					}
				case "y":
					if mapping.Y == -1 {
						mapping.Y = i
					}
				case "label":
					if mapping.Label == -1 {
						mapping.Label = i
					}
				case "group":
					if mapping.Group == -1 {
						mapping.Group = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{X: 0, Y: 1, Label: -1, Group: -1}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseCoord(row []string, idx int, axis, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, axis)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, axis, s)
	}
	return v, ""
}

// parseRow extracts a point from a row using the given column mapping.
// Returns the point, its label, its group and any error message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.Point2D, string, string, string) {
	x, errMsg := parseCoord(row, mapping.X, "x", rowLabel)
	if errMsg != "" {
		return model.Point2D{}, "", "", errMsg
	}
	y, errMsg := parseCoord(row, mapping.Y, "y", rowLabel)
	if errMsg != "" {
		return model.Point2D{}, "", "", errMsg
	}
	return model.Point2D{X: x, Y: y}, getCell(row, mapping.Label), getCell(row, mapping.Group), ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readRecords(data []byte, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// ImportPointsCSV imports x,y coordinates from a CSV or TXT file.
// It automatically detects the delimiter and maps columns by header names.
func ImportPointsCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readRecords(data, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportPointsFromReader imports points from a reader with a known delimiter.
func ImportPointsFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	data, err := io.ReadAll(reader)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	records, err := readRecords(data, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportPointsExcel imports points from the first sheet of an Excel file.
func ImportPointsExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportPoints dispatches on the file extension: .xlsx/.xlsm to Excel,
// anything else to the delimited reader.
func ImportPoints(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportPointsExcel(path)
	default:
		return ImportPointsCSV(path)
	}
}

// importFromRows is the shared import logic for both CSV and Excel data.
// Points sharing a group value form one outline; files without a group
// column form a single outline.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if _, err := strconv.ParseFloat(getCell(rows[0], 0), 64); err != nil {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	groups := map[string]int{}
	hasLabels := false
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		p, label, group, errMsg := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if label != "" {
			hasLabels = true
		}

		result.Points = append(result.Points, p)
		result.Labels = append(result.Labels, label)
		idx, ok := groups[group]
		if !ok {
			idx = len(result.Outlines)
			groups[group] = idx
			result.Outlines = append(result.Outlines, nil)
		}
		result.Outlines[idx] = append(result.Outlines[idx], p)
	}
	if !hasLabels {
		result.Labels = nil
	}

	if len(result.Points) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
