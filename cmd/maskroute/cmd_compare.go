package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/piwi3910/maskroute/internal/escape"
	"github.com/piwi3910/maskroute/internal/model"
	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	opts := &escapeOptions{}
	var s model.EscapeSettings

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare escape feasibility under alternative angles, widths and side counts",
		Long: `compare plans the configured escape alongside a set of what-if variants
and tabulates which ones fit, their channel headroom and the minimum pitch
each would need. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := a.escapeSettings(cmd, opts, s)
			if err != nil {
				return err
			}
			results := escape.CompareScenarios(cmd.Context(), escape.BuildDefaultScenarios(base))
			fmt.Fprintln(a.out, comparisonTable(results))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.points, "points", "", "CSV/TXT/XLSX file of pad coordinates")
	f.StringVar(&opts.orientation, "orientation", "", `escape sides: "4", "1,-y", "2,x", "3,+x"`)
	f.IntVar(&s.CopiesX, "copies-x", 0, "pad columns")
	f.IntVar(&s.CopiesY, "copies-y", 0, "pad rows")
	f.Float64Var(&s.PitchX, "pitch-x", 0, "column pitch (µm)")
	f.Float64Var(&s.PitchY, "pitch-y", 0, "row pitch (µm)")
	f.Float64Var(&s.TraceWidth, "trace-width", 0, "trace width (µm)")
	f.Float64Var(&s.TraceSpace, "trace-space", 0, "trace gap (µm)")
	f.Float64Var(&s.PadDiameter, "pad-diameter", 0, "pad diameter (µm)")
	f.Float64Var(&s.EscapeExtent, "extent", 0, "escape length beyond the outermost pad (µm)")
	f.Float64Var(&s.RoutingAngle, "angle", 0, "launch angle (degrees)")
	return cmd
}

// comparisonTable renders one row per scenario.
func comparisonTable(results []escape.ComparisonResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		switch {
		case r.Infeasible():
			status = "too tight"
		case r.Err != nil:
			status = "error"
		}
		length := "-"
		if r.Feasible {
			length = fmt.Sprintf("%.1f", r.TotalLength)
		}
		rows = append(rows, []string{
			r.Scenario.Name,
			status,
			fmt.Sprintf("%d", r.MaxChannelLoad),
			fmt.Sprintf("%.2f", r.Headroom),
			fmt.Sprintf("%.2f", r.MinimumPitch),
			length,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("Scenario", "Status", "Max load", "Headroom (µm)", "Min pitch (µm)", "Length (µm)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			if col == 1 && row >= 0 && row < len(results) {
				switch {
				case results[row].Feasible:
					return style.Foreground(colorSuccess)
				case results[row].Infeasible():
					return style.Foreground(colorWarning)
				default:
					return style.Foreground(colorError)
				}
			}
			return style
		}).
		String()
}
