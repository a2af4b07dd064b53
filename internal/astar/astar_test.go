package astar

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/piwi3910/maskroute/internal/geom"
	"github.com/piwi3910/maskroute/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opts() Options { return Options{Smoothing: true} }

func assertConnected(t *testing.T, cells []Cell) {
	t.Helper()
	for k := 1; k < len(cells); k++ {
		d := cells[k].Sub(cells[k-1])
		assert.NotEqual(t, -1, moveIndex(d), "step %d %v -> %v is not a unit move", k, cells[k-1], cells[k])
	}
}

// ─── Bidirectional Search Tests ─────────────────────────────────────

func TestFindPath_StraightLine(t *testing.T) {
	p, err := FindPath(context.Background(), Cell{0, 0}, Cell{3, 0}, NewObstacles(), opts())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, p.Cost, 1e-12)
	assert.Equal(t, Cell{0, 0}, p.Cells[0])
	assert.Equal(t, Cell{3, 0}, p.Cells[len(p.Cells)-1])
	assert.Len(t, p.Cells, 4, "meeting cell is not duplicated")
	assertConnected(t, p.Cells)
}

func TestFindPath_Diagonal(t *testing.T) {
	p, err := FindPath(context.Background(), Cell{0, 0}, Cell{2, 2}, nil, opts())
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Sqrt2, p.Cost, 1e-12)
	assert.Equal(t, []Cell{{0, 0}, {1, 1}, {2, 2}}, p.Cells)
}

func TestFindPath_SameCell(t *testing.T) {
	p, err := FindPath(context.Background(), Cell{5, 5}, Cell{5, 5}, nil, opts())
	require.NoError(t, err)
	assert.Equal(t, []Cell{{5, 5}}, p.Cells)
	assert.Equal(t, 0.0, p.Cost)
}

func TestFindPath_AroundWall(t *testing.T) {
	obs := NewObstacles()
	for y := -4; y <= 4; y++ {
		obs.Add(Cell{3, y})
	}
	p, err := FindPath(context.Background(), Cell{0, 0}, Cell{6, 0}, obs, opts())
	require.NoError(t, err)
	assertConnected(t, p.Cells)
	for _, c := range p.Cells {
		assert.False(t, obs.Blocked(c), "path crosses obstacle at %v", c)
	}
	assert.Greater(t, p.Cost, 6.0)
	assert.Equal(t, Cell{6, 0}, p.Cells[len(p.Cells)-1])
}

func TestFindPath_WithoutSmoothing(t *testing.T) {
	p, err := FindPath(context.Background(), Cell{0, 0}, Cell{4, 0}, nil, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, p.Cost, 1e-12)
}

func TestFindPath_OriginBlocked(t *testing.T) {
	obs := NewObstacles()
	obs.AddRing(Cell{-2, -2}, Cell{2, 2})

	_, err := FindPath(context.Background(), Cell{0, 0}, Cell{10, 0}, obs, opts())
	require.ErrorIs(t, err, ErrOriginBlocked)

	var blocked *BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Len(t, blocked.Border, 16)
	assert.Equal(t, 9, blocked.Closed)
	assert.Equal(t, Cell{-2, -2}, blocked.Border[0])
}

func TestFindPath_GoalBlocked(t *testing.T) {
	obs := NewObstacles()
	obs.AddRing(Cell{9, -1}, Cell{11, 1})

	_, err := FindPath(context.Background(), Cell{0, 0}, Cell{10, 0}, obs, opts())
	require.ErrorIs(t, err, ErrGoalBlocked)

	var blocked *BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Len(t, blocked.Border, 8)
}

func TestFindPath_SharedEnclosureIsNotBlocked(t *testing.T) {
	obs := NewObstacles()
	obs.AddRing(Cell{-1, -1}, Cell{3, 1})

	p, err := FindPath(context.Background(), Cell{0, 0}, Cell{2, 0}, obs, opts())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, p.Cost, 1e-12)
}

func TestFindPath_ExpansionLimit(t *testing.T) {
	obs := NewObstacles()
	obs.AddRing(Cell{-50, -50}, Cell{50, 50})

	_, err := FindPath(context.Background(), Cell{0, 0}, Cell{100, 0}, obs, Options{Smoothing: true, MaxExpansions: 10})
	assert.ErrorIs(t, err, ErrSearchExhausted)
}

func TestFindPath_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FindPath(ctx, Cell{0, 0}, Cell{3, 0}, nil, opts())
	assert.ErrorIs(t, err, context.Canceled)
}

// ─── Single-Direction Tests ─────────────────────────────────────

func TestSearch_StraightLine(t *testing.T) {
	p, err := Search(context.Background(), Cell{0, 0}, Cell{3, 0}, nil, opts())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, p.Cost, 1e-12)
	assert.Equal(t, []Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, p.Cells)
}

func TestSearch_ForcedFirstStep(t *testing.T) {
	up := Cell{0, 1}
	p, err := Search(context.Background(), Cell{0, 0}, Cell{3, 0}, nil, Options{Smoothing: true, OriginDirection: &up})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(p.Cells), 3)
	assert.Equal(t, Cell{0, 1}, p.Cells[1])
	assert.Equal(t, Cell{3, 0}, p.Cells[len(p.Cells)-1])
	assertConnected(t, p.Cells)

	for k := 2; k < len(p.Cells); k++ {
		prev := moveIndex(p.Cells[k-1].Sub(p.Cells[k-2]))
		cur := moveIndex(p.Cells[k].Sub(p.Cells[k-1]))
		turn := (cur - prev + 8) % 8
		assert.Contains(t, []int{0, 1, 7}, turn, "turn sharper than 45° at step %d", k)
	}
}

func TestSearch_Blocked(t *testing.T) {
	obs := NewObstacles()
	obs.AddRing(Cell{-1, -1}, Cell{1, 1})
	_, err := Search(context.Background(), Cell{0, 0}, Cell{5, 5}, obs, opts())
	assert.ErrorIs(t, err, ErrOriginBlocked)
}

func TestDirectionFor(t *testing.T) {
	assert.Equal(t, Cell{1, 0}, DirectionFor(0))
	assert.Equal(t, Cell{0, 1}, DirectionFor(90))
	assert.Equal(t, Cell{-1, 0}, DirectionFor(180))
	assert.Equal(t, Cell{0, -1}, DirectionFor(270))
	assert.Equal(t, Cell{0, -1}, DirectionFor(-90))
}

// ─── Obstacle Tests ─────────────────────────────────────

func TestAddRing(t *testing.T) {
	obs := NewObstacles()
	obs.AddRing(Cell{0, 0}, Cell{10, 5})
	assert.Equal(t, 30, obs.Len())
	assert.True(t, obs.Blocked(Cell{10, 5}))
	assert.True(t, obs.Blocked(Cell{0, 3}))
	assert.False(t, obs.Blocked(Cell{5, 3}))
}

func TestAddPolygon_Buffer(t *testing.T) {
	sq := model.Rect(model.Point2D{X: 20, Y: 20}, model.Point2D{X: 40, Y: 40})

	plain := NewObstacles()
	plain.AddPolygon(sq, 10, 0)
	assert.Equal(t, 9, plain.Len())

	grown := NewObstacles()
	grown.AddPolygon(sq, 10, 1)
	assert.Equal(t, 21, grown.Len())
	assert.True(t, grown.Blocked(Cell{1, 3}))
	assert.False(t, grown.Blocked(Cell{1, 1}), "corner lies √2 away")
}

func TestBuildObstacles_FreesEndpoints(t *testing.T) {
	s := model.DefaultSearchSettings()
	ll, ur := model.Point2D{X: 0, Y: 0}, model.Point2D{X: 100, Y: 50}
	s.LowerLeft, s.UpperRight = &ll, &ur
	wall := model.Rect(model.Point2D{X: 30, Y: 10}, model.Point2D{X: 30, Y: 40})

	obs := BuildObstacles([]model.Outline{wall}, Cell{3, 1}, Cell{9, 4}, s)
	assert.False(t, obs.Blocked(Cell{3, 1}))
	assert.True(t, obs.Blocked(Cell{0, 0}))
	assert.True(t, obs.Blocked(Cell{3, 2}))
}

func TestBuildObstacles_ClearanceFollowsPathWidth(t *testing.T) {
	wall := model.Rect(model.Point2D{X: 30, Y: 10}, model.Point2D{X: 30, Y: 40})
	s := model.DefaultSearchSettings()
	s.PathWidth = 25

	s.GridSpacing = 10
	coarse := BuildObstacles([]model.Outline{wall}, Cell{-10, -10}, Cell{-9, -10}, s)
	assert.True(t, coarse.Blocked(Cell{5, 2}), "20 µm from the wall")
	assert.False(t, coarse.Blocked(Cell{6, 2}), "30 µm from the wall")

	s.GridSpacing = 2.5
	fine := BuildObstacles([]model.Outline{wall}, Cell{-10, -10}, Cell{-9, -10}, s)
	assert.True(t, fine.Blocked(Cell{21, 6}), "22.5 µm from the wall")
	assert.False(t, fine.Blocked(Cell{23, 6}), "27.5 µm from the wall")
}

// ─── Router Tests ─────────────────────────────────────

type captureSink struct{ regions []model.Region }

func (c *captureSink) AddPathAsPolygon(cell string, points []model.Point2D, width float64, layer string) (model.Region, error) {
	r := model.NewRegion(layer, geom.PathToPolygon(points, width))
	c.regions = append(c.regions, r)
	return r, nil
}

func TestRouter_RoutesAroundWall(t *testing.T) {
	r, err := NewRouter(model.DefaultSearchSettings(), nil)
	require.NoError(t, err)
	wall := model.Rect(model.Point2D{X: 40, Y: -100}, model.Point2D{X: 60, Y: 100})
	sink := &captureSink{}

	rt, err := r.Route(context.Background(), model.Point2D{}, model.Point2D{X: 100}, []model.Outline{wall}, sink)
	require.NoError(t, err)
	require.Len(t, sink.regions, 1)
	assert.Greater(t, rt.Length(), 100.0)
	for _, p := range rt.Points {
		assert.False(t, geom.PointInPolygon(p, wall), "route enters the wall at %v", p)
	}
	assert.Equal(t, model.Point2D{}, rt.Points[0])
	assert.Equal(t, model.Point2D{X: 100}, rt.Points[len(rt.Points)-1])
}

func TestRouter_RoutePortsLeavesAlongOrientation(t *testing.T) {
	r, err := NewRouter(model.DefaultSearchSettings(), nil)
	require.NoError(t, err)
	a := model.Port{Position: model.Point2D{X: 0, Y: 0}, Orientation: 0}
	b := model.Port{Position: model.Point2D{X: 100, Y: 0}, Orientation: 180}

	rt, err := r.RoutePorts(context.Background(), a, b, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rt.Path.Cost, 1e-12)
	assert.Equal(t, Cell{1, 0}, rt.Path.Cells[1])
}

func TestRouter_RoutePairsAvoidEarlierRoutes(t *testing.T) {
	r, err := NewRouter(model.DefaultSearchSettings(), nil)
	require.NoError(t, err)
	pairs := [][2]model.Port{
		{{Position: model.Point2D{X: 0, Y: 0}}, {Position: model.Point2D{X: 100, Y: 0}, Orientation: 180}},
		{{Position: model.Point2D{X: 0, Y: 50}}, {Position: model.Point2D{X: 100, Y: 50}, Orientation: 180}},
	}
	sink := &captureSink{}
	routes, err := r.RoutePairs(context.Background(), pairs, nil, sink)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Len(t, sink.regions, 2)
	assert.False(t, geom.PolygonsIntersect(sink.regions[0].Polygons[0], sink.regions[1].Polygons[0]))
}

func TestNewRouter_RejectsBadSettings(t *testing.T) {
	s := model.DefaultSearchSettings()
	s.GridSpacing = 0
	_, err := NewRouter(s, nil)
	assert.ErrorIs(t, err, model.ErrInvalidSettings)
}
