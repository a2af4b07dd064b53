package export

import (
	"path/filepath"
	"testing"

	"github.com/piwi3910/maskroute/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ─── Port Table Tests ─────────────────────────────────────

func TestExportPortTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ports.xlsx")
	_, res := buildTestLayout(t)
	require.NoError(t, ExportPortTable(path, res.Ports))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(portSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(res.Ports)+1)
	assert.Equal(t, portTableHeaders, rows[0])
	assert.Equal(t, res.Ports[0].Label(), rows[1][0])
}

func TestExportPortTable_ReadsBackAsPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ports.xlsx")
	_, res := buildTestLayout(t)
	require.NoError(t, ExportPortTable(path, res.Ports))

	got := importer.ImportPointsExcel(path)
	require.True(t, got.OK(), "errors: %v", got.Errors)
	require.Len(t, got.Points, len(res.Ports))
	assert.InDelta(t, res.Ports[0].Position.X, got.Points[0].X, 1e-6)
	assert.InDelta(t, res.Ports[0].Position.Y, got.Points[0].Y, 1e-6)
	assert.Equal(t, res.Ports[0].Label(), got.Labels[0])
}

func TestExportPortTable_Empty(t *testing.T) {
	assert.Error(t, ExportPortTable(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}

// ─── DXF Tests ─────────────────────────────────────

func TestWriteLayoutDXF_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.dxf")
	l, res := buildTestLayout(t)
	require.NoError(t, WriteLayoutDXF(path, l, "TopCell", res.Ports))

	metal := importer.ImportDXF(path, "Metal")
	require.True(t, metal.OK(), "errors: %v", metal.Errors)
	assert.Len(t, metal.Outlines, len(res.Traces))

	pads := importer.ImportDXF(path, "Pads")
	require.True(t, pads.OK(), "errors: %v", pads.Errors)
	assert.Len(t, pads.Outlines, len(res.Ports))

	all := importer.ImportDXF(path)
	require.True(t, all.OK())
	assert.Len(t, all.Outlines, 3*len(res.Ports), "port markers import as circles")
}

func TestWriteDXF_Empty(t *testing.T) {
	assert.Error(t, WriteDXF(filepath.Join(t.TempDir(), "x.dxf"), nil, nil, nil))
}

func TestDXFColor(t *testing.T) {
	assert.EqualValues(t, 2, dxfColor(1))
	assert.EqualValues(t, 1, dxfColor(0))
	assert.EqualValues(t, 11, dxfColor(-10))
}
