package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/piwi3910/maskroute/internal/export"
	"github.com/piwi3910/maskroute/internal/layout"
	"github.com/piwi3910/maskroute/internal/model"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#5C7A84")
)

var styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	OK      lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	OK:      lipgloss.NewStyle().SetString("✓").Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().SetString("⚠").Foreground(colorWarning),
	Error:   lipgloss.NewStyle().SetString("✗").Foreground(colorError),
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, styles.Title.Render(title))
}

func printOK(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.OK.String(), fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.Warning.String(), fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.Error.String(), fmt.Sprintf(format, args...))
}

func printMuted(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// artefacts is the set of files written for one layout.
type artefacts struct {
	Layout *layout.Layout
	Cell   string
	Ports  []model.Port
	Notes  []string
}

// writeOutputs writes every artefact enabled in the output config into its
// directory, named after base. It returns the paths written in a fixed order:
// DXF, PDF, port table, port map.
func (a *app) writeOutputs(base string, art artefacts) ([]string, error) {
	out := a.cfg.Output
	if err := os.MkdirAll(out.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := func(suffix string) string { return filepath.Join(out.Directory, base+suffix) }

	var written []string
	if out.DXF {
		p := path(".dxf")
		if err := export.WriteLayoutDXF(p, art.Layout, art.Cell, art.Ports); err != nil {
			return written, err
		}
		written = append(written, p)
		a.rememberLayout(p)
	}
	if out.PDF {
		plot, err := export.PlotFromLayout(art.Layout, art.Cell, art.Ports)
		if err != nil {
			return written, err
		}
		plot.Notes = art.Notes
		p := path(".pdf")
		if err := export.ExportPDF(p, plot); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if out.PortTable && len(art.Ports) > 0 {
		p := path("_ports.xlsx")
		if err := export.ExportPortTable(p, art.Ports); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if out.PortMap && len(art.Ports) > 0 {
		p := path("_portmap.pdf")
		if err := export.ExportPortMap(p, art.Ports); err != nil {
			return written, err
		}
		written = append(written, p)
	}

	for _, p := range written {
		a.log.Debug("wrote artefact", "path", p)
	}
	return written, nil
}
