package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidSettings is wrapped by every settings validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// settingsValidate is shared by all settings structs in this package.
var settingsValidate = validator.New()

// EscapeSettings describes one escape-routing job: the pad array, the trace
// geometry and which array sides receive traces.
type EscapeSettings struct {
	Cell  string `json:"cell" yaml:"cell" validate:"required"`
	Layer string `json:"layer" yaml:"layer" validate:"required"`

	// Array geometry
	Center  Point2D `json:"center" yaml:"center"`
	CopiesX int     `json:"copies_x" yaml:"copies_x" validate:"min=1"` // columns (M)
	CopiesY int     `json:"copies_y" yaml:"copies_y" validate:"min=1"` // rows (N)
	PitchX  float64 `json:"pitch_x" yaml:"pitch_x" validate:"gt=0"`    // µm
	PitchY  float64 `json:"pitch_y" yaml:"pitch_y" validate:"gt=0"`    // µm

	// Trace geometry
	TraceWidth   float64 `json:"trace_width" yaml:"trace_width" validate:"gt=0"`            // µm
	TraceSpace   float64 `json:"trace_space" yaml:"trace_space" validate:"gte=0"`           // µm, 0 = spread evenly across the channel
	PadDiameter  float64 `json:"pad_diameter" yaml:"pad_diameter" validate:"gte=0"`         // µm
	EscapeExtent float64 `json:"escape_extent" yaml:"escape_extent" validate:"gt=0"`        // µm beyond the outermost pad
	RoutingAngle float64 `json:"routing_angle" yaml:"routing_angle" validate:"gt=0,lte=90"` // degrees

	// Sides is 1, 2, 3 or 4. Selector is a signed side ("-y") for one- and
	// three-sided escapes, or an axis ("x", "y") for two-sided escapes.
	Sides    int    `json:"sides" yaml:"sides" validate:"oneof=1 2 3 4"`
	Selector string `json:"selector" yaml:"selector" validate:"omitempty,oneof=x y +x -x +y -y"`

	Parallel bool `json:"parallel" yaml:"parallel"` // generate sides concurrently
}

// DefaultEscapeSettings returns a four-sided 8x8 array on a 200 µm pitch.
func DefaultEscapeSettings() EscapeSettings {
	return EscapeSettings{
		Cell:         "TopCell",
		Layer:        "Metal",
		Center:       Point2D{},
		CopiesX:      8,
		CopiesY:      8,
		PitchX:       200,
		PitchY:       200,
		TraceWidth:   10,
		TraceSpace:   0,
		PadDiameter:  80,
		EscapeExtent: 100,
		RoutingAngle: 45,
		Sides:        4,
		Selector:     "",
		Parallel:     false,
	}
}

// Validate checks field ranges and the cross-field rules the router relies on.
func (s EscapeSettings) Validate() error {
	if err := settingsValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if s.CopiesX > 1 && s.PadDiameter >= s.PitchX {
		return fmt.Errorf("%w: pad diameter %.3f must be below pitch_x %.3f", ErrInvalidSettings, s.PadDiameter, s.PitchX)
	}
	if s.CopiesY > 1 && s.PadDiameter >= s.PitchY {
		return fmt.Errorf("%w: pad diameter %.3f must be below pitch_y %.3f", ErrInvalidSettings, s.PadDiameter, s.PitchY)
	}
	switch s.Sides {
	case 1, 3:
		if s.Selector == "" || s.Selector == "x" || s.Selector == "y" {
			return fmt.Errorf("%w: %d-sided escape needs a signed selector such as -y, got %q", ErrInvalidSettings, s.Sides, s.Selector)
		}
	case 2:
		if s.Selector == "" {
			return fmt.Errorf("%w: two-sided escape needs an axis selector (x or y)", ErrInvalidSettings)
		}
	}
	return nil
}

// PrimarySide returns the side named by a signed selector.
func (s EscapeSettings) PrimarySide() (Side, error) {
	return ParseSide(s.Selector)
}

// AxisSides returns the low and high sides of the selector's axis.
func (s EscapeSettings) AxisSides() (low, high Side) {
	if strings.HasSuffix(s.Selector, "x") {
		return SideLeft, SideRight
	}
	return SideBottom, SideTop
}

// ParseOrientation reads the compact orientation notation used in layout
// scripts: "4", "1,-x", "2,y", "3,+y".
func ParseOrientation(orient string) (sides int, selector string, err error) {
	parts := strings.Split(orient, ",")
	sides, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || sides < 1 || sides > 4 {
		return 0, "", fmt.Errorf("invalid orientation %q: side count must be 1-4", orient)
	}
	if len(parts) > 2 {
		return 0, "", fmt.Errorf("invalid orientation %q: too many fields", orient)
	}
	if len(parts) == 2 {
		selector = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	if sides == 2 {
		selector = strings.TrimLeft(selector, "+-")
	}
	return sides, selector, nil
}

// SearchSettings configures the grid pathfinder.
type SearchSettings struct {
	Cell          string   `json:"cell" yaml:"cell" validate:"required"`
	Layer         string   `json:"layer" yaml:"layer" validate:"required"`
	PathWidth     float64  `json:"path_width" yaml:"path_width" validate:"gt=0"`          // µm
	GridSpacing   float64  `json:"grid_spacing" yaml:"grid_spacing" validate:"gt=0"`      // µm per grid cell
	Smoothing     bool     `json:"smoothing" yaml:"smoothing"`                            // restrict turns to 45°
	MaxExpansions int      `json:"max_expansions" yaml:"max_expansions" validate:"gte=0"` // 0 = unlimited
	LowerLeft     *Point2D `json:"lower_left,omitempty" yaml:"lower_left,omitempty"`      // optional boundary corner
	UpperRight    *Point2D `json:"upper_right,omitempty" yaml:"upper_right,omitempty"`    // optional boundary corner
}

// DefaultSearchSettings returns pathfinder defaults.
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		Cell:          "TopCell",
		Layer:         "Metal",
		PathWidth:     10,
		GridSpacing:   10,
		Smoothing:     true,
		MaxExpansions: 2_000_000,
	}
}

// Validate checks the search settings.
func (s SearchSettings) Validate() error {
	if err := settingsValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if (s.LowerLeft == nil) != (s.UpperRight == nil) {
		return fmt.Errorf("%w: boundary needs both lower_left and upper_right", ErrInvalidSettings)
	}
	if s.LowerLeft != nil && (s.LowerLeft.X >= s.UpperRight.X || s.LowerLeft.Y >= s.UpperRight.Y) {
		return fmt.Errorf("%w: lower_left must be below and left of upper_right", ErrInvalidSettings)
	}
	return nil
}

// LayerRule holds the design rules for one layer. Zero disables a check.
type LayerRule struct {
	Layer          string  `json:"layer" yaml:"layer" validate:"required"`
	MinFeatureSize float64 `json:"min_feature_size" yaml:"min_feature_size" validate:"gte=0"` // µm
	MinSpacing     float64 `json:"min_spacing" yaml:"min_spacing" validate:"gte=0"`           // µm
}

// DRCSettings selects the rules applied by the validator.
type DRCSettings struct {
	Cell    string      `json:"cell" yaml:"cell"`
	Profile string      `json:"profile" yaml:"profile"` // name of a rule profile, used when Rules is empty
	Rules   []LayerRule `json:"rules" yaml:"rules" validate:"dive"`
}

// DefaultDRCSettings returns DRC defaults using the contact lithography
// profile.
func DefaultDRCSettings() DRCSettings {
	return DRCSettings{
		Cell:    "TopCell",
		Profile: "Contact Lithography",
	}
}

// Validate checks the DRC settings.
func (s DRCSettings) Validate() error {
	if err := settingsValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// EffectiveRules returns the explicit rules, or the named profile's rules
// retargeted to layer when none are given.
func (s DRCSettings) EffectiveRules(layer string) []LayerRule {
	if len(s.Rules) > 0 {
		return s.Rules
	}
	p := GetRuleProfile(s.Profile)
	rules := make([]LayerRule, len(p.Rules))
	copy(rules, p.Rules)
	for i := range rules {
		if rules[i].Layer == "*" {
			rules[i].Layer = layer
		}
	}
	return rules
}
