// Package escape fans traces out of a regular pad array through one to four
// of its sides without crossings.
package escape

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/maskroute/internal/geom"
	"github.com/piwi3910/maskroute/internal/grid"
	"github.com/piwi3910/maskroute/internal/model"
)

// Sink receives the trace polygons once every side has been routed.
type Sink interface {
	AddPathAsPolygon(cell string, points []model.Point2D, width float64, layer string) (model.Region, error)
}

// Trace is one routed escape: its centreline and the port at its end.
type Trace struct {
	Assignment
	Side   model.Side
	Points []model.Point2D
	Port   model.Port
}

// Result holds everything an escape run produced. Traces and Ports share
// order: side, then lane, then depth.
type Result struct {
	Plans   []SidePlan
	Traces  []Trace
	Ports   []model.Port
	Regions []model.Region
}

// PortAt returns the port of node (i, j).
func (r Result) PortAt(i, j int) (model.Port, bool) {
	for _, p := range r.Ports {
		if p.I == i && p.J == j {
			return p, true
		}
	}
	return model.Port{}, false
}

// TotalLength sums the centreline lengths of all traces.
func (r Result) TotalLength() float64 {
	var total float64
	for _, t := range r.Traces {
		total += geom.PathLength(t.Points)
	}
	return total
}

// Engine routes the escape described by its settings.
type Engine struct {
	Settings model.EscapeSettings
	grid     grid.Grid
	log      *slog.Logger
}

// New validates settings and returns an engine. A nil logger uses slog.Default().
func New(settings model.EscapeSettings, logger *slog.Logger) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	g, err := grid.FromSettings(settings)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Settings: settings, grid: g, log: logger}, nil
}

// Grid returns the pad array being escaped.
func (e *Engine) Grid() grid.Grid { return e.grid }

// Plan partitions the array and plans every non-empty side.
func (e *Engine) Plan() ([]SidePlan, error) {
	parts, err := Partition(e.grid, e.Settings.Sides, e.Settings.Selector)
	if err != nil {
		return nil, err
	}
	var plans []SidePlan
	for _, side := range model.AllSides {
		if len(parts[side]) == 0 {
			continue
		}
		plans = append(plans, PlanSide(side, parts[side]))
	}
	return plans, nil
}

// required returns the lateral room n traces need in one channel.
func (e *Engine) required(n int) float64 {
	tw := e.Settings.TraceWidth
	req := float64(2*n+1) * tw
	if e.Settings.TraceSpace > 0 && n > 1 {
		req = math.Max(req, 3*tw+float64(n-1)*(tw+e.Settings.TraceSpace))
	}
	return req
}

// available returns the gap between neighbouring pads along a side.
func (e *Engine) available(side model.Side) float64 {
	return lateralPitch(e.grid, side) - e.Settings.PadDiameter
}

// Check verifies that every channel of every plan has room for its traces.
func (e *Engine) Check(plans []SidePlan) error {
	for _, p := range plans {
		avail := e.available(p.Side)
		for _, c := range p.Channels {
			if req := e.required(c.Traces); req > avail+1e-9 {
				return &InsufficientSpacingError{
					Side:      p.Side,
					Channel:   c.Index,
					Traces:    c.Traces,
					Required:  req,
					Available: avail,
				}
			}
		}
	}
	return nil
}

// offset is the lateral distance from a member's own lane to its trace.
func (e *Engine) offset(side model.Side, a Assignment) float64 {
	tw := e.Settings.TraceWidth
	pad := e.Settings.PadDiameter
	eff := e.available(side)
	if a.Count <= 1 {
		return eff/2 + pad/2
	}
	spacing := (eff - 3*tw) / float64(a.Count-1)
	if e.Settings.TraceSpace > 0 {
		spacing = tw + e.Settings.TraceSpace
	}
	return float64(a.Slot)*spacing + 1.5*tw + pad/2
}

// route builds the centreline of one assignment.
func (e *Engine) route(side model.Side, a Assignment) ([]model.Point2D, error) {
	out := side.Direction()
	start := a.Node.Position
	if a.Kind == KindStraight {
		return []model.Point2D{start, start.Add(out.Scale(e.Settings.EscapeExtent))}, nil
	}

	rotation := side.Orientation()
	reflect := false
	turn := laneAxis(side).Scale(float64(a.Toward))
	if turn != geom.RotateQuarter(out, 90) {
		reflect = true
		rotation = (rotation + 180) % 360
	}
	pts, err := geom.HingedPath{
		Start:      start,
		Angle:      e.Settings.RoutingAngle,
		ExtensionY: e.offset(side, a),
		ExtensionX: float64(a.Depth)*depthPitch(e.grid, side) + e.Settings.EscapeExtent,
		Rotation:   rotation,
		Reflect:    reflect,
	}.Points()
	if err != nil {
		return nil, fmt.Errorf("%s side node (%d,%d): %w", side, a.Node.I, a.Node.J, err)
	}
	return pts, nil
}

// routeSide turns a side plan into traces.
func (e *Engine) routeSide(ctx context.Context, p SidePlan) ([]Trace, error) {
	traces := make([]Trace, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pts, err := e.route(p.Side, a)
		if err != nil {
			return nil, err
		}
		traces = append(traces, Trace{
			Assignment: a,
			Side:       p.Side,
			Points:     pts,
			Port: model.Port{
				I:           a.Node.I,
				J:           a.Node.J,
				Node:        a.Node.Position,
				Position:    pts[len(pts)-1],
				Side:        p.Side,
				Orientation: p.Side.Orientation(),
			},
		})
	}
	return traces, nil
}

// Route plans, checks and builds every trace without emitting geometry.
func (e *Engine) Route(ctx context.Context) (Result, error) {
	plans, err := e.Plan()
	if err != nil {
		return Result{}, err
	}
	if err := e.Check(plans); err != nil {
		return Result{}, err
	}

	perSide := make([][]Trace, len(plans))
	if e.Settings.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for k := range plans {
			g.Go(func() error {
				traces, err := e.routeSide(gctx, plans[k])
				perSide[k] = traces
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	} else {
		for k := range plans {
			traces, err := e.routeSide(ctx, plans[k])
			if err != nil {
				return Result{}, err
			}
			perSide[k] = traces
		}
	}

	res := Result{Plans: plans}
	for k, traces := range perSide {
		res.Traces = append(res.Traces, traces...)
		for _, t := range traces {
			res.Ports = append(res.Ports, t.Port)
		}
		e.log.Debug("escape side routed",
			"side", plans[k].Side,
			"traces", len(traces),
			"lanes", plans[k].Lanes,
			"max_channel_load", plans[k].MaxLoad())
	}
	return res, nil
}

// Generate routes the escape and, only when every side succeeded, writes
// the trace polygons to sink. A nil sink routes without emitting. If the
// sink rejects a trace the result is empty, but the sink keeps the traces
// it accepted before the failure.
func (e *Engine) Generate(ctx context.Context, sink Sink) (Result, error) {
	res, err := e.Route(ctx)
	if err != nil {
		return Result{}, err
	}
	if sink == nil {
		return res, nil
	}
	for _, t := range res.Traces {
		region, err := sink.AddPathAsPolygon(e.Settings.Cell, t.Points, e.Settings.TraceWidth, e.Settings.Layer)
		if err != nil {
			return Result{}, fmt.Errorf("emit trace %s: %w", t.Port.Label(), err)
		}
		res.Regions = append(res.Regions, region)
	}
	e.log.Info("escape generated",
		"cell", e.Settings.Cell,
		"layer", e.Settings.Layer,
		"ports", len(res.Ports),
		"sides", len(res.Plans))
	return res, nil
}

// Generate is a convenience wrapper around New and Engine.Generate.
func Generate(ctx context.Context, settings model.EscapeSettings, sink Sink, logger *slog.Logger) (Result, error) {
	e, err := New(settings, logger)
	if err != nil {
		return Result{}, err
	}
	return e.Generate(ctx, sink)
}
