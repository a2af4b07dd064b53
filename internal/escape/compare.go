package escape

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/maskroute/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.EscapeSettings
}

// ComparisonResult holds the routing outcome and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Feasible       bool
	Err            error
	Traces         int
	TotalLength    float64 // µm of trace centreline
	MaxChannelLoad int
	Headroom       float64 // smallest spare room in any channel, µm; negative when infeasible
	MinimumPitch   float64 // smallest lateral pitch that fits the busiest channel, µm
}

// CompareScenarios routes each scenario without emitting geometry and returns
// the results in scenario order. This allows side-by-side comparison of
// trace widths, launch angles, and side counts before committing a layout.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		cr := ComparisonResult{Scenario: scenario}
		eng, err := New(scenario.Settings, nil)
		if err != nil {
			cr.Err = err
			results = append(results, cr)
			continue
		}

		plans, err := eng.Plan()
		if err != nil {
			cr.Err = err
			results = append(results, cr)
			continue
		}
		cr.Headroom = math.Inf(1)
		for _, p := range plans {
			avail := eng.available(p.Side)
			for _, c := range p.Channels {
				cr.Headroom = math.Min(cr.Headroom, avail-eng.required(c.Traces))
				need := eng.required(c.Traces) + scenario.Settings.PadDiameter
				cr.MinimumPitch = math.Max(cr.MinimumPitch, need)
			}
			if l := p.MaxLoad(); l > cr.MaxChannelLoad {
				cr.MaxChannelLoad = l
			}
		}
		if math.IsInf(cr.Headroom, 1) {
			cr.Headroom = 0
		}

		res, err := eng.Route(ctx)
		if err != nil {
			cr.Err = err
			results = append(results, cr)
			continue
		}
		cr.Feasible = true
		cr.Traces = len(res.Traces)
		cr.TotalLength = res.TotalLength()
		results = append(results, cr)
	}

	return results
}

// Infeasible reports whether the scenario failed on spacing rather than on
// bad input.
func (r ComparisonResult) Infeasible() bool {
	return errors.Is(r.Err, ErrInsufficientSpacing)
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.EscapeSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Steeper or shallower launch
	for _, angle := range []float64{30, 60, 90} {
		if angle == base.RoutingAngle {
			continue
		}
		alt := base
		alt.RoutingAngle = angle
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Routing angle %.0f°", angle),
			Settings: alt,
		})
	}

	// Thinner trace
	thin := base
	thin.TraceWidth = base.TraceWidth * 0.75
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Trace width %.2f µm", thin.TraceWidth),
		Settings: thin,
	})

	// Spread load over all four sides
	if base.Sides != 4 {
		four := base
		four.Sides = 4
		four.Selector = ""
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Four-sided escape",
			Settings: four,
		})
	}

	return scenarios
}
