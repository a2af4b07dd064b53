package astar

import (
	"errors"
	"fmt"
)

var (
	// ErrOriginBlocked means the origin frontier ran out of open cells.
	ErrOriginBlocked = errors.New("no path: origin is enclosed")
	// ErrGoalBlocked means the goal frontier ran out of open cells.
	ErrGoalBlocked = errors.New("no path: goal is enclosed")
	// ErrSearchExhausted means the expansion limit was reached first.
	ErrSearchExhausted = errors.New("search exceeded its expansion limit")
)

// BlockedError is returned when a frontier is enclosed. Border lists every
// obstacle cell adjacent to a cell that frontier closed, sorted by X then Y.
type BlockedError struct {
	Reason error // ErrOriginBlocked or ErrGoalBlocked
	Border []Cell
	Closed int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%v after closing %d cells (%d border cells)", e.Reason, e.Closed, len(e.Border))
}

func (e *BlockedError) Unwrap() error { return e.Reason }
