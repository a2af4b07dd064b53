package escape

import (
	"errors"
	"fmt"

	"github.com/piwi3910/maskroute/internal/model"
)

// ErrInsufficientSpacing matches every *InsufficientSpacingError.
var ErrInsufficientSpacing = errors.New("insufficient spacing between pads")

// InsufficientSpacingError reports a channel whose traces do not fit between
// its two pads.
type InsufficientSpacingError struct {
	Side      model.Side
	Channel   int     // gap between lanes Channel-1 and Channel
	Traces    int     // traces routed through the gap
	Required  float64 // µm
	Available float64 // µm, lateral pitch less the pad diameter
}

func (e *InsufficientSpacingError) Error() string {
	return fmt.Sprintf("insufficient spacing on %s side channel %d: %d traces need %.3f µm, %.3f µm available",
		e.Side, e.Channel, e.Traces, e.Required, e.Available)
}

// Is lets errors.Is match against ErrInsufficientSpacing.
func (e *InsufficientSpacingError) Is(target error) bool {
	return target == ErrInsufficientSpacing
}
