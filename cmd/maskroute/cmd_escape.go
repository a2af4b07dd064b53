package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piwi3910/maskroute/internal/drc"
	"github.com/piwi3910/maskroute/internal/escape"
	"github.com/piwi3910/maskroute/internal/importer"
	"github.com/piwi3910/maskroute/internal/layout"
	"github.com/piwi3910/maskroute/internal/model"
	"github.com/spf13/cobra"
)

// padLayer receives pad circles when the layer is configured.
const padLayer = "Pads"

type escapeOptions struct {
	points      string
	orientation string
	name        string
	runDRC      bool
	noPads      bool
	output      outputFlags
}

func newEscapeCmd(a *app) *cobra.Command {
	opts := &escapeOptions{}
	var s model.EscapeSettings

	cmd := &cobra.Command{
		Use:   "escape",
		Short: "Generate escape traces for a rectangular pad array",
		Long: `escape fans every pad of an array out to the array boundary, using one,
two, three or four sides. Array geometry comes from the configuration, the
flags below, or a point file of pad coordinates (--points).`,
		Example: `  maskroute escape --copies-x 8 --copies-y 8 --pitch-x 200 --pitch-y 200
  maskroute escape --points pads.csv --orientation 2,y --drc
  maskroute escape --orientation 1,-y --trace-width 5 --pdf=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEscape(cmd, opts, s)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.points, "points", "", "CSV/TXT/XLSX file of pad coordinates; overrides copies, pitch and center")
	f.StringVar(&opts.orientation, "orientation", "", `escape sides: "4", "1,-y", "2,x", "3,+x"`)
	f.StringVar(&opts.name, "name", "escape", "base name of the written files")
	f.BoolVar(&opts.runDRC, "drc", false, "run design rule checks on the generated layout")
	f.BoolVar(&opts.noPads, "no-pads", false, "do not draw pad circles")
	f.IntVar(&s.CopiesX, "copies-x", 0, "pad columns")
	f.IntVar(&s.CopiesY, "copies-y", 0, "pad rows")
	f.Float64Var(&s.PitchX, "pitch-x", 0, "column pitch (µm)")
	f.Float64Var(&s.PitchY, "pitch-y", 0, "row pitch (µm)")
	f.Float64Var(&s.TraceWidth, "trace-width", 0, "trace width (µm)")
	f.Float64Var(&s.TraceSpace, "trace-space", 0, "trace gap (µm), 0 spreads traces across the channel")
	f.Float64Var(&s.PadDiameter, "pad-diameter", 0, "pad diameter (µm)")
	f.Float64Var(&s.EscapeExtent, "extent", 0, "escape length beyond the outermost pad (µm)")
	f.Float64Var(&s.RoutingAngle, "angle", 0, "launch angle (degrees)")
	f.BoolVar(&s.Parallel, "parallel", false, "route sides concurrently")
	opts.output.register(cmd)
	return cmd
}

// escapeSettings merges the configured settings with the flags the user set.
func (a *app) escapeSettings(cmd *cobra.Command, opts *escapeOptions, flags model.EscapeSettings) (model.EscapeSettings, error) {
	s := a.cfg.Escape
	changed := cmd.Flags().Changed
	if changed("copies-x") {
		s.CopiesX = flags.CopiesX
	}
	if changed("copies-y") {
		s.CopiesY = flags.CopiesY
	}
	if changed("pitch-x") {
		s.PitchX = flags.PitchX
	}
	if changed("pitch-y") {
		s.PitchY = flags.PitchY
	}
	if changed("trace-width") {
		s.TraceWidth = flags.TraceWidth
	}
	if changed("trace-space") {
		s.TraceSpace = flags.TraceSpace
	}
	if changed("pad-diameter") {
		s.PadDiameter = flags.PadDiameter
	}
	if changed("extent") {
		s.EscapeExtent = flags.EscapeExtent
	}
	if changed("angle") {
		s.RoutingAngle = flags.RoutingAngle
	}
	if changed("parallel") {
		s.Parallel = flags.Parallel
	}

	if opts.orientation != "" {
		sides, selector, err := model.ParseOrientation(opts.orientation)
		if err != nil {
			return s, err
		}
		s.Sides, s.Selector = sides, selector
	}

	if opts.points != "" {
		imp := importer.ImportEscapePoints(opts.points)
		for _, w := range imp.Result.Warnings {
			a.log.Debug("point import", "file", opts.points, "note", w)
		}
		if !imp.Result.OK() {
			return s, fmt.Errorf("failed to import %s: %s", opts.points, strings.Join(imp.Result.Errors, "; "))
		}
		imp.ApplyTo(&s)
		a.log.Info("pad array inferred",
			"file", opts.points,
			"copies_x", s.CopiesX,
			"copies_y", s.CopiesY,
			"pitch_x", s.PitchX,
			"pitch_y", s.PitchY)
	}
	return s, s.Validate()
}

func (a *app) runEscape(cmd *cobra.Command, opts *escapeOptions, flags model.EscapeSettings) error {
	s, err := a.escapeSettings(cmd, opts, flags)
	if err != nil {
		return err
	}
	opts.output.apply(cmd, &a.cfg.Output)

	l := layout.FromConfig(opts.name, a.cfg, a.log)
	if !l.CellExists(s.Cell) {
		l.AddCell(s.Cell)
	}

	res, err := escape.Generate(cmd.Context(), s, l, a.log)
	if err != nil {
		var spacing *escape.InsufficientSpacingError
		if errors.As(err, &spacing) {
			printError(a.out, "%v", spacing)
			printMuted(a.out, "try fewer traces per channel (more sides), a thinner trace, or a larger pitch; see `maskroute compare`")
		}
		return err
	}

	if !opts.noPads && s.PadDiameter > 0 && l.LayerExists(padLayer) {
		for _, p := range res.Ports {
			if _, err := l.AddCircleAsPolygon(s.Cell, p.Node, s.PadDiameter/2, padLayer); err != nil {
				return err
			}
		}
	}

	printTitle(a.out, fmt.Sprintf("Escape %dx%d, %d side(s)", s.CopiesX, s.CopiesY, len(res.Plans)))
	for _, p := range res.Plans {
		printMuted(a.out, "  %-6s %3d trace(s), busiest channel %d", p.Side, len(p.Assignments), p.MaxLoad())
	}
	printOK(a.out, "%d traces, %.1f µm total length", len(res.Traces), res.TotalLength())

	var notes []string
	if opts.runDRC {
		report, err := a.checkLayout(l, s.Cell)
		if err != nil {
			return err
		}
		notes = a.printReport(report)
	}

	written, err := a.writeOutputs(opts.name, artefacts{Layout: l, Cell: s.Cell, Ports: res.Ports, Notes: notes})
	if err != nil {
		return err
	}
	for _, p := range written {
		printOK(a.out, "wrote %s", p)
	}
	return nil
}

// checkLayout runs the configured rules over every layer of a cell.
func (a *app) checkLayout(l *layout.Layout, cell string) (drc.Report, error) {
	regions, err := l.Flatten(cell)
	if err != nil {
		return drc.Report{}, err
	}
	var names []string
	for _, layer := range l.Layers() {
		names = append(names, layer.Name)
	}
	rules, err := a.rules(names)
	if err != nil {
		return drc.Report{}, err
	}
	return drc.RunChecks(regions, rules, a.log), nil
}

// printReport prints a DRC report and returns its lines for the PDF summary.
func (a *app) printReport(report drc.Report) []string {
	lines := drc.FormatViolations(report)
	if report.OK() {
		checked := 0
		for _, n := range report.Clusters {
			checked += n
		}
		printOK(a.out, "design rules clean (%d cluster(s) checked)", checked)
		return []string{"Design rule check: clean"}
	}
	for _, line := range lines {
		printWarning(a.out, "%s", line)
	}
	return lines
}
