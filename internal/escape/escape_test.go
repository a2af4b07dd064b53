package escape

import (
	"context"
	"errors"
	"testing"

	"github.com/piwi3910/maskroute/internal/geom"
	"github.com/piwi3910/maskroute/internal/grid"
	"github.com/piwi3910/maskroute/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	calls     int
	fail      bool
	failAfter int // fail once this many calls succeeded, 0 = never
}

func (s *recordingSink) AddPathAsPolygon(cell string, points []model.Point2D, width float64, layer string) (model.Region, error) {
	if s.fail || (s.failAfter > 0 && s.calls >= s.failAfter) {
		return model.Region{}, errors.New("sink closed")
	}
	s.calls++
	return model.NewRegion(layer, geom.PathToPolygon(points, width)), nil
}

func testGrid(t *testing.T, cols, rows int) grid.Grid {
	t.Helper()
	g, err := grid.New(model.Point2D{}, cols, rows, 200, 200)
	require.NoError(t, err)
	return g
}

func sideCounts(parts [4][]Member) [4]int {
	var c [4]int
	for s := range parts {
		c[s] = len(parts[s])
	}
	return c
}

// ─── Partition Tests ─────────────────────────────────────

func TestPartition_FourSidedIsSymmetric(t *testing.T) {
	parts, err := Partition(testGrid(t, 8, 8), 4, "")
	require.NoError(t, err)
	assert.Equal(t, [4]int{16, 16, 16, 16}, sideCounts(parts))
}

func TestPartition_FourSidedPinwheelTies(t *testing.T) {
	g := testGrid(t, 3, 3)
	cases := []struct {
		i, j int
		want model.Side
	}{
		{1, 1, model.SideBottom}, // centre
		{0, 0, model.SideBottom},
		{2, 0, model.SideRight},
		{2, 2, model.SideTop},
		{0, 2, model.SideLeft},
		{1, 0, model.SideBottom},
		{2, 1, model.SideRight},
		{1, 2, model.SideTop},
		{0, 1, model.SideLeft},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, quadrant(g, c.i, c.j), "node (%d,%d)", c.i, c.j)
	}
}

func TestPartition_DepthsAreContiguousPerLane(t *testing.T) {
	for _, dims := range [][2]int{{8, 8}, {5, 5}, {7, 4}, {1, 6}, {6, 1}, {1, 1}} {
		parts, err := Partition(testGrid(t, dims[0], dims[1]), 4, "")
		require.NoError(t, err)
		total := 0
		for s := range parts {
			total += len(parts[s])
			next := map[int]int{}
			for _, m := range parts[s] {
				assert.Equal(t, next[m.Lane], m.Depth, "%v side %v lane %d", dims, model.Side(s), m.Lane)
				next[m.Lane]++
			}
		}
		assert.Equal(t, dims[0]*dims[1], total, "%v", dims)
	}
}

func TestPartition_ThreeSided(t *testing.T) {
	parts, err := Partition(testGrid(t, 5, 5), 3, "-y")
	require.NoError(t, err)
	c := sideCounts(parts)
	assert.Equal(t, 13, c[model.SideBottom])
	assert.Equal(t, 6, c[model.SideLeft])
	assert.Equal(t, 6, c[model.SideRight])
	assert.Equal(t, 0, c[model.SideTop], "opposite side stays closed")
}

func TestPartition_TwoSidedOddMiddleGoesLow(t *testing.T) {
	parts, err := Partition(testGrid(t, 4, 3), 2, "y")
	require.NoError(t, err)
	c := sideCounts(parts)
	assert.Equal(t, 8, c[model.SideBottom])
	assert.Equal(t, 4, c[model.SideTop])

	parts, err = Partition(testGrid(t, 3, 2), 2, "x")
	require.NoError(t, err)
	c = sideCounts(parts)
	assert.Equal(t, 4, c[model.SideLeft])
	assert.Equal(t, 2, c[model.SideRight])
}

func TestPartition_OneSided(t *testing.T) {
	parts, err := Partition(testGrid(t, 3, 4), 1, "+x")
	require.NoError(t, err)
	assert.Equal(t, [4]int{0, 12, 0, 0}, sideCounts(parts))
	for _, m := range parts[model.SideRight] {
		assert.Equal(t, 2-m.Node.I, m.Depth)
		assert.Equal(t, m.Node.J, m.Lane)
	}
}

func TestPartition_RejectsBadSideCount(t *testing.T) {
	_, err := Partition(testGrid(t, 3, 3), 5, "")
	assert.Error(t, err)
	_, err = Partition(testGrid(t, 3, 3), 1, "sideways")
	assert.Error(t, err)
}

// ─── Plan Tests ─────────────────────────────────────

func block(lanes, depths int) []Member {
	var ms []Member
	for l := 0; l < lanes; l++ {
		for d := 0; d < depths; d++ {
			ms = append(ms, Member{Node: grid.Node{I: l, J: d}, Lane: l, Depth: d})
		}
	}
	return ms
}

func find(t *testing.T, p SidePlan, lane, depth int) Assignment {
	t.Helper()
	for _, a := range p.Assignments {
		if a.Lane == lane && a.Depth == depth {
			return a
		}
	}
	t.Fatalf("no assignment for lane %d depth %d", lane, depth)
	return Assignment{}
}

func channelLoads(p SidePlan) map[int]int {
	loads := map[int]int{}
	for _, c := range p.Channels {
		loads[c.Index] = c.Traces
	}
	return loads
}

func TestPlanSide_EvenLanesShareSeamChannel(t *testing.T) {
	p := PlanSide(model.SideBottom, block(4, 3))
	assert.Equal(t, 4, p.Lanes)
	assert.Equal(t, map[int]int{0: 2, 1: 1, 2: 2, 3: 1, 4: 2}, channelLoads(p))

	a := find(t, p, 1, 2)
	assert.Equal(t, TowardHigh, a.Toward)
	assert.Equal(t, 2, a.Channel)
	assert.Equal(t, 0, a.Slot)
	assert.Equal(t, 2, a.Count)
	assert.Equal(t, KindSlotted, a.Kind)

	b := find(t, p, 2, 2)
	assert.Equal(t, TowardLow, b.Toward)
	assert.Equal(t, 2, b.Channel)
	assert.Equal(t, 0, b.Slot)

	assert.Equal(t, KindSingle, find(t, p, 1, 1).Kind)
	assert.Equal(t, TowardLow, find(t, p, 1, 1).Toward)
	assert.Equal(t, TowardHigh, find(t, p, 2, 1).Toward)
}

func TestPlanSide_OddCentreSplitsByParity(t *testing.T) {
	p := PlanSide(model.SideBottom, block(3, 4))
	assert.Equal(t, TowardLow, find(t, p, 1, 1).Toward)
	assert.Equal(t, TowardHigh, find(t, p, 1, 2).Toward)
	assert.Equal(t, TowardLow, find(t, p, 1, 3).Toward)

	d1, d3 := find(t, p, 1, 1), find(t, p, 1, 3)
	assert.Equal(t, 1, d1.Channel)
	assert.Equal(t, 0, d1.Slot)
	assert.Equal(t, 1, d3.Slot, "deeper members take slots further from their lane")
	assert.Equal(t, KindSingle, find(t, p, 1, 2).Kind)
}

func TestPlanSide_BoundaryNodesGoStraight(t *testing.T) {
	p := PlanSide(model.SideTop, block(5, 2))
	for l := 0; l < 5; l++ {
		assert.Equal(t, KindStraight, find(t, p, l, 0).Kind)
	}
	assert.Len(t, p.Assignments, 10)
}

func TestPlanSide_Empty(t *testing.T) {
	p := PlanSide(model.SideLeft, nil)
	assert.Empty(t, p.Assignments)
	assert.Equal(t, 0, p.MaxLoad())
}

// ─── Engine Tests ─────────────────────────────────────

func TestGenerate_EveryNodeGetsOnePort(t *testing.T) {
	sink := &recordingSink{}
	s := model.DefaultEscapeSettings()
	res, err := Generate(context.Background(), s, sink, nil)
	require.NoError(t, err)

	require.Len(t, res.Ports, 64)
	assert.Equal(t, 64, sink.calls)
	assert.Len(t, res.Regions, 64)

	nodes := map[[2]int]bool{}
	positions := map[model.Point2D]bool{}
	for _, p := range res.Ports {
		nodes[[2]int{p.I, p.J}] = true
		positions[p.Position] = true
		assert.Equal(t, p.Side.Orientation(), p.Orientation)
		assert.Contains(t, []int{0, 90, 180, 270}, p.Orientation)
	}
	assert.Len(t, nodes, 64, "each node has exactly one port")
	assert.Len(t, positions, 64, "ports are distinct")
}

func TestGenerate_PortsLieOnEscapeLine(t *testing.T) {
	s := model.DefaultEscapeSettings()
	eng, err := New(s, nil)
	require.NoError(t, err)
	res, err := eng.Route(context.Background())
	require.NoError(t, err)

	min, max := eng.Grid().Bounds()
	for _, p := range res.Ports {
		switch p.Side {
		case model.SideBottom:
			assert.InDelta(t, min.Y-s.EscapeExtent, p.Position.Y, 1e-9)
		case model.SideTop:
			assert.InDelta(t, max.Y+s.EscapeExtent, p.Position.Y, 1e-9)
		case model.SideLeft:
			assert.InDelta(t, min.X-s.EscapeExtent, p.Position.X, 1e-9)
		case model.SideRight:
			assert.InDelta(t, max.X+s.EscapeExtent, p.Position.X, 1e-9)
		}
	}
}

// escapeModes and escapeDims cover every side count over square, non-square,
// single-column and 2x2 arrays.
var escapeModes = []struct {
	sides    int
	selector string
}{
	{1, "-y"}, {1, "+x"}, {2, "x"}, {2, "y"}, {3, "-y"}, {3, "+x"}, {4, ""},
}

var escapeDims = [][2]int{{8, 8}, {7, 4}, {4, 7}, {9, 5}, {1, 5}, {2, 2}}

func sparseSettings(sides int, selector string, dims [2]int) model.EscapeSettings {
	s := model.DefaultEscapeSettings()
	s.CopiesX, s.CopiesY = dims[0], dims[1]
	s.PitchX, s.PitchY = 400, 400
	s.TraceWidth = 5
	s.PadDiameter = 40
	s.Sides, s.Selector = sides, selector
	return s
}

func TestGenerate_EveryModeIsComplete(t *testing.T) {
	for _, m := range escapeModes {
		for _, dims := range escapeDims {
			s := sparseSettings(m.sides, m.selector, dims)
			res, err := Generate(context.Background(), s, nil, nil)
			require.NoError(t, err, "%d,%s %v", m.sides, m.selector, dims)

			n := dims[0] * dims[1]
			require.Len(t, res.Ports, n, "%d,%s %v", m.sides, m.selector, dims)
			nodes := map[[2]int]bool{}
			positions := map[model.Point2D]bool{}
			for _, p := range res.Ports {
				nodes[[2]int{p.I, p.J}] = true
				positions[p.Position] = true
			}
			assert.Len(t, nodes, n, "%d,%s %v: one port per node", m.sides, m.selector, dims)
			assert.Len(t, positions, n, "%d,%s %v: ports are distinct", m.sides, m.selector, dims)
		}
	}
}

func TestGenerate_TracesDoNotTouch(t *testing.T) {
	for _, m := range escapeModes {
		for _, dims := range escapeDims {
			s := sparseSettings(m.sides, m.selector, dims)
			res, err := Generate(context.Background(), s, nil, nil)
			require.NoError(t, err)

			polys := make([]model.Outline, len(res.Traces))
			pads := make([]model.Outline, len(res.Traces))
			for k, tr := range res.Traces {
				polys[k] = geom.PathToPolygon(tr.Points, s.TraceWidth)
				pads[k] = geom.CirclePolygon(tr.Port.Node, s.PadDiameter/2, 32)
			}
			for a := range polys {
				for b := range polys {
					if a == b {
						continue
					}
					if a < b {
						assert.False(t, geom.PolygonsIntersect(polys[a], polys[b]),
							"%d,%s %v: %s touches %s", m.sides, m.selector, dims,
							res.Traces[a].Port.Label(), res.Traces[b].Port.Label())
					}
					assert.False(t, geom.PolygonsIntersect(polys[a], pads[b]),
						"%d,%s %v: %s crosses the pad of %s", m.sides, m.selector, dims,
						res.Traces[a].Port.Label(), res.Traces[b].Port.Label())
				}
			}
		}
	}
}

func TestGenerate_DefaultTracesDoNotTouch(t *testing.T) {
	for _, dims := range [][2]int{{8, 8}, {5, 5}, {6, 3}} {
		s := model.DefaultEscapeSettings()
		s.CopiesX, s.CopiesY = dims[0], dims[1]
		res, err := Generate(context.Background(), s, nil, nil)
		require.NoError(t, err)

		polys := make([]model.Outline, len(res.Traces))
		for k, tr := range res.Traces {
			polys[k] = geom.PathToPolygon(tr.Points, s.TraceWidth)
		}
		for a := 0; a < len(polys); a++ {
			for b := a + 1; b < len(polys); b++ {
				assert.False(t, geom.PolygonsIntersect(polys[a], polys[b]),
					"%v: %s touches %s", dims, res.Traces[a].Port.Label(), res.Traces[b].Port.Label())
			}
		}
	}
}

func TestGenerate_InsufficientSpacing(t *testing.T) {
	sink := &recordingSink{}
	s := model.DefaultEscapeSettings()
	s.PitchX, s.PitchY = 129, 129

	_, err := Generate(context.Background(), s, sink, nil)
	require.ErrorIs(t, err, ErrInsufficientSpacing)

	var spacing *InsufficientSpacingError
	require.True(t, errors.As(err, &spacing))
	assert.Equal(t, 2, spacing.Traces)
	assert.Equal(t, 50.0, spacing.Required)
	assert.Equal(t, 49.0, spacing.Available)
	assert.Equal(t, 0, sink.calls, "nothing is emitted on failure")

	s.PitchX, s.PitchY = 130, 130
	_, err = Generate(context.Background(), s, sink, nil)
	assert.NoError(t, err, "the budget is inclusive")
}

func TestGenerate_HingeFailureEmitsNothing(t *testing.T) {
	sink := &recordingSink{}
	s := model.DefaultEscapeSettings()
	s.RoutingAngle = 1

	_, err := Generate(context.Background(), s, sink, nil)
	assert.ErrorIs(t, err, geom.ErrHingePrecondition)
	assert.Equal(t, 0, sink.calls)
}

func TestGenerate_SinkErrorIsReported(t *testing.T) {
	_, err := Generate(context.Background(), model.DefaultEscapeSettings(), &recordingSink{fail: true}, nil)
	assert.ErrorContains(t, err, "sink closed")
}

func TestGenerate_SinkErrorMidwayReturnsEmptyResult(t *testing.T) {
	sink := &recordingSink{failAfter: 10}
	res, err := Generate(context.Background(), model.DefaultEscapeSettings(), sink, nil)
	assert.ErrorContains(t, err, "sink closed")
	assert.Equal(t, 10, sink.calls, "earlier traces stay in the sink")
	assert.Empty(t, res.Traces)
	assert.Empty(t, res.Ports)
	assert.Empty(t, res.Regions)
}

func TestGenerate_ParallelMatchesSequential(t *testing.T) {
	s := model.DefaultEscapeSettings()
	seq, err := Generate(context.Background(), s, nil, nil)
	require.NoError(t, err)

	s.Parallel = true
	par, err := Generate(context.Background(), s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, seq.Ports, par.Ports)
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, model.DefaultEscapeSettings(), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_OneSidedOrientation(t *testing.T) {
	s := model.DefaultEscapeSettings()
	s.CopiesX, s.CopiesY = 3, 3
	s.Sides, s.Selector = 1, "-y"
	res, err := Generate(context.Background(), s, nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Ports, 9)
	for _, p := range res.Ports {
		assert.Equal(t, 270, p.Orientation)
	}
}

func TestGenerate_StraightAndTurnedGeometry(t *testing.T) {
	s := model.DefaultEscapeSettings()
	s.CopiesX, s.CopiesY = 3, 3
	eng, err := New(s, nil)
	require.NoError(t, err)
	res, err := eng.Route(context.Background())
	require.NoError(t, err)

	// Node (1,0) sits on the bottom edge and leaves straight down.
	straight, ok := res.PortAt(1, 0)
	require.True(t, ok)
	assert.InDelta(t, 0.0, straight.Position.X, 1e-9)
	assert.InDelta(t, -300.0, straight.Position.Y, 1e-9)

	// The centre node is a bottom seam member turning high into the gap
	// between columns 1 and 2.
	centre, ok := res.PortAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, model.SideBottom, centre.Side)
	assert.InDelta(t, 100.0, centre.Position.X, 1e-9)
	assert.InDelta(t, -300.0, centre.Position.Y, 1e-9)
}

func TestGenerate_InvalidSettings(t *testing.T) {
	s := model.DefaultEscapeSettings()
	s.Sides = 3
	_, err := Generate(context.Background(), s, nil, nil)
	assert.ErrorIs(t, err, model.ErrInvalidSettings)
}

// ─── Comparison Tests ─────────────────────────────────────

func TestBuildDefaultScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(model.DefaultEscapeSettings())
	require.Len(t, scenarios, 5)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, 7.5, scenarios[4].Settings.TraceWidth)

	s := model.DefaultEscapeSettings()
	s.Sides, s.Selector = 1, "-y"
	scenarios = BuildDefaultScenarios(s)
	assert.Equal(t, 4, scenarios[len(scenarios)-1].Settings.Sides)
}

func TestCompareScenarios(t *testing.T) {
	base := model.DefaultEscapeSettings()
	tight := base
	tight.PitchX, tight.PitchY = 129, 129

	results := CompareScenarios(context.Background(), []ComparisonScenario{
		{Name: "base", Settings: base},
		{Name: "tight", Settings: tight},
	})
	require.Len(t, results, 2)

	assert.True(t, results[0].Feasible)
	assert.Equal(t, 64, results[0].Traces)
	assert.Equal(t, 2, results[0].MaxChannelLoad)
	assert.Equal(t, 70.0, results[0].Headroom)
	assert.Greater(t, results[0].TotalLength, 0.0)

	assert.False(t, results[1].Feasible)
	assert.True(t, results[1].Infeasible())
	assert.Equal(t, -1.0, results[1].Headroom)
	assert.Equal(t, 130.0, results[1].MinimumPitch)
}
