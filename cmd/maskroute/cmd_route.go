package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/maskroute/internal/astar"
	"github.com/piwi3910/maskroute/internal/importer"
	"github.com/piwi3910/maskroute/internal/layout"
	"github.com/piwi3910/maskroute/internal/model"
	"github.com/spf13/cobra"
)

// obstacleLayer receives the obstacle outlines in the written layout.
const obstacleLayer = "Keepout"

type routeOptions struct {
	from           string
	to             string
	obstacles      []string
	obstacleLayers []string
	bounds         string
	name           string
	output         outputFlags
}

func newRouteCmd(a *app) *cobra.Command {
	opts := &routeOptions{}
	var s model.SearchSettings

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Route one connection between two points around obstacles",
		Long: `route searches the routing grid from both ends at once and writes the
path as a filled polygon. Obstacles come from DXF drawings (closed shapes on
the --obstacle-layer layers) or from CSV/TXT/XLSX polygon point files.`,
		Example: `  maskroute route --from 0,0 --to 1500,800 --obstacles keepout.dxf
  maskroute route --from 0,0 --to 300,0 --obstacles poly.csv --bounds -100,-100,400,100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRoute(cmd, opts, s)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", `start point "x,y" (µm)`)
	f.StringVar(&opts.to, "to", "", `goal point "x,y" (µm)`)
	f.StringSliceVar(&opts.obstacles, "obstacles", nil, "obstacle files (.dxf, .csv, .txt, .xlsx)")
	f.StringSliceVar(&opts.obstacleLayers, "obstacle-layer", nil, "DXF layers holding obstacles (default: all)")
	f.StringVar(&opts.bounds, "bounds", "", `routing boundary "x1,y1,x2,y2" (µm)`)
	f.StringVar(&opts.name, "name", "route", "base name of the written files")
	f.Float64Var(&s.PathWidth, "path-width", 0, "path width (µm)")
	f.Float64Var(&s.GridSpacing, "grid", 0, "grid spacing (µm)")
	f.BoolVar(&s.Smoothing, "smoothing", true, "restrict turns to 45 degrees")
	f.IntVar(&s.MaxExpansions, "max-expansions", 0, "expansion limit, 0 for unlimited")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	opts.output.register(cmd)
	return cmd
}

// loadObstacles reads every obstacle file into outlines.
func (a *app) loadObstacles(files, layers []string) ([]model.Outline, error) {
	var out []model.Outline
	for _, path := range files {
		var res importer.ImportResult
		if strings.EqualFold(filepath.Ext(path), ".dxf") {
			res = importer.ImportDXF(path, layers...)
		} else {
			res = importer.ImportPolygonFile(path)
		}
		for _, w := range res.Warnings {
			a.log.Debug("obstacle import", "file", path, "note", w)
		}
		if !res.OK() {
			return nil, fmt.Errorf("failed to import %s: %s", path, strings.Join(res.Errors, "; "))
		}
		out = append(out, res.Outlines...)
		a.log.Info("obstacles loaded", "file", path, "outlines", len(res.Outlines))
	}
	return out, nil
}

func (a *app) runRoute(cmd *cobra.Command, opts *routeOptions, flags model.SearchSettings) error {
	from, err := parsePoint(opts.from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parsePoint(opts.to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	s := a.cfg.Search
	changed := cmd.Flags().Changed
	if changed("path-width") {
		s.PathWidth = flags.PathWidth
	}
	if changed("grid") {
		s.GridSpacing = flags.GridSpacing
	}
	if changed("smoothing") {
		s.Smoothing = flags.Smoothing
	}
	if changed("max-expansions") {
		s.MaxExpansions = flags.MaxExpansions
	}
	if opts.bounds != "" {
		ll, ur, err := parseBounds(opts.bounds)
		if err != nil {
			return fmt.Errorf("--bounds: %w", err)
		}
		s.LowerLeft, s.UpperRight = &ll, &ur
	}
	opts.output.apply(cmd, &a.cfg.Output)

	router, err := astar.NewRouter(s, a.log)
	if err != nil {
		return err
	}
	obstacles, err := a.loadObstacles(opts.obstacles, opts.obstacleLayers)
	if err != nil {
		return err
	}

	l := layout.FromConfig(opts.name, a.cfg, a.log)
	if !l.CellExists(s.Cell) {
		l.AddCell(s.Cell)
	}
	if l.LayerExists(obstacleLayer) {
		for _, o := range obstacles {
			if _, err := l.AddPolygon(s.Cell, o, obstacleLayer); err != nil {
				return err
			}
		}
	}

	rt, err := router.Route(cmd.Context(), from, to, obstacles, l)
	if err != nil {
		var blocked *astar.BlockedError
		if errors.As(err, &blocked) {
			printError(a.out, "%v", blocked)
			if len(blocked.Border) > 0 {
				printMuted(a.out, "enclosing obstacle cells start at %s", blocked.Border[0])
			}
		}
		return err
	}

	printTitle(a.out, fmt.Sprintf("Route (%.1f, %.1f) to (%.1f, %.1f)", from.X, from.Y, to.X, to.Y))
	printOK(a.out, "%.1f µm over %d vertices, %d grid cells", rt.Length(), len(rt.Points), len(rt.Path.Cells))

	written, err := a.writeOutputs(opts.name, artefacts{Layout: l, Cell: s.Cell})
	if err != nil {
		return err
	}
	for _, p := range written {
		printOK(a.out, "wrote %s", p)
	}
	return nil
}
