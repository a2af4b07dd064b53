package astar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/piwi3910/maskroute/internal/geom"
	"github.com/piwi3910/maskroute/internal/model"
)

// Sink receives routed paths as filled polygons.
type Sink interface {
	AddPathAsPolygon(cell string, points []model.Point2D, width float64, layer string) (model.Region, error)
}

// Route is one routed connection in layout units.
type Route struct {
	Path   Path
	Points []model.Point2D
	Region model.Region
}

// Length returns the route length in layout units.
func (r Route) Length() float64 { return geom.PathLength(r.Points) }

// Router connects layout points on the grid described by its settings.
type Router struct {
	Settings model.SearchSettings
	log      *slog.Logger
}

// NewRouter validates settings and returns a router. A nil logger uses
// slog.Default().
func NewRouter(settings model.SearchSettings, logger *slog.Logger) (*Router, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{Settings: settings, log: logger}, nil
}

func (r *Router) options() Options {
	return Options{
		Smoothing:     r.Settings.Smoothing,
		MaxExpansions: r.Settings.MaxExpansions,
		Logger:        r.log,
	}
}

// Route finds a path from start to goal around obstacles. Both ends snap to
// the nearest grid cell. When sink is non-nil the path is emitted as a
// filled region of the configured width.
func (r *Router) Route(ctx context.Context, start, goal model.Point2D, obstacles []model.Outline, sink Sink) (Route, error) {
	return r.route(ctx, start, goal, nil, nil, obstacles, sink)
}

// RoutePorts connects two escape ports, leaving each along its orientation.
func (r *Router) RoutePorts(ctx context.Context, a, b model.Port, obstacles []model.Outline, sink Sink) (Route, error) {
	da, db := DirectionFor(a.Orientation), DirectionFor(b.Orientation)
	return r.route(ctx, a.Position, b.Position, &da, &db, obstacles, sink)
}

// RoutePairs connects port pairs in order. Each finished route becomes an
// obstacle for the ones after it. It stops at the first failure and returns
// the routes made so far.
func (r *Router) RoutePairs(ctx context.Context, pairs [][2]model.Port, obstacles []model.Outline, sink Sink) ([]Route, error) {
	obs := append([]model.Outline(nil), obstacles...)
	routes := make([]Route, 0, len(pairs))
	for k, p := range pairs {
		rt, err := r.RoutePorts(ctx, p[0], p[1], obs, sink)
		if err != nil {
			return routes, fmt.Errorf("route %s to %s (pair %d): %w", p[0].Label(), p[1].Label(), k, err)
		}
		routes = append(routes, rt)
		if poly := geom.PathToPolygon(rt.Points, r.Settings.PathWidth); poly != nil {
			obs = append(obs, poly)
		}
	}
	return routes, nil
}

func (r *Router) route(ctx context.Context, start, goal model.Point2D, startDir, goalDir *Cell, obstacles []model.Outline, sink Sink) (Route, error) {
	spacing := r.Settings.GridSpacing
	from, to := ToCell(start, spacing), ToCell(goal, spacing)
	obs := BuildObstacles(obstacles, from, to, r.Settings)

	opts := r.options()
	opts.OriginDirection = startDir
	opts.GoalDirection = goalDir

	path, err := FindPath(ctx, from, to, obs, opts)
	if err != nil {
		return Route{}, err
	}
	rt := Route{Path: path, Points: path.Points(spacing)}
	r.log.Info("route found",
		"from", from, "to", to,
		"cells", len(path.Cells),
		"cost", path.Cost,
		"obstacle_cells", obs.Len())

	if sink != nil && len(rt.Points) > 1 {
		region, err := sink.AddPathAsPolygon(r.Settings.Cell, rt.Points, r.Settings.PathWidth, r.Settings.Layer)
		if err != nil {
			return rt, fmt.Errorf("emit route: %w", err)
		}
		rt.Region = region
	}
	return rt, nil
}
