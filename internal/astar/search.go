package astar

import (
	"context"
	"log/slog"

	"github.com/piwi3910/maskroute/internal/model"
)

// Options tunes a search.
type Options struct {
	// Smoothing restricts every move after the first to within 45° of the
	// previous move.
	Smoothing bool
	// OriginDirection and GoalDirection force the first step of the
	// respective frontier. Nil leaves it unconstrained.
	OriginDirection *Cell
	GoalDirection   *Cell
	// MaxExpansions bounds the total number of expanded nodes. Zero means
	// no limit.
	MaxExpansions int
	Logger        *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Path is a found route.
type Path struct {
	Cells    []Cell
	Cost     float64
	Rounds   int
	Expanded int
}

// Points scales the path to layout units.
func (p Path) Points(spacing float64) []model.Point2D {
	return ToWorld(p.Cells, spacing)
}

// cost sums the move costs along cells.
func cost(cells []Cell) float64 {
	var total float64
	for k := 1; k < len(cells); k++ {
		total += stepCost(cells[k].Sub(cells[k-1]))
	}
	return total
}

// FindPath runs the bidirectional search from origin to goal. The frontiers
// alternate one round each: the origin aims at the goal frontier's best open
// cell and the goal frontier aims at the origin's. The search stops when
// their closed sets meet, or with a *BlockedError when either frontier runs
// out of open cells without meeting the other. An origin frontier that runs
// dry in the same round it reaches the goal's closed set still yields the
// path rather than ErrOriginBlocked.
func FindPath(ctx context.Context, origin, goal Cell, obs *Obstacles, opts Options) (Path, error) {
	log := opts.logger()
	org := newFrontier(origin, goal, opts.Smoothing, opts.OriginDirection)
	gl := newFrontier(goal, origin, opts.Smoothing, opts.GoalDirection)

	target := goal
	expanded, rounds := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return Path{}, err
		}
		if opts.MaxExpansions > 0 && expanded >= opts.MaxExpansions {
			return Path{}, ErrSearchExhausted
		}
		rounds++

		orgFrom := len(org.closing)
		expanded += org.round(target, obs)
		best, ok := org.best()
		if !ok {
			if meet := meeting(org, gl, orgFrom, len(gl.closing)); meet >= 0 {
				return splice(org, gl, meet, rounds, expanded, log), nil
			}
			return Path{}, &BlockedError{Reason: ErrOriginBlocked, Border: org.border(obs), Closed: len(org.closing)}
		}

		glFrom := len(gl.closing)
		expanded += gl.round(best, obs)
		meet := meeting(org, gl, orgFrom, glFrom)
		if meet >= 0 {
			return splice(org, gl, meet, rounds, expanded, log), nil
		}
		if target, ok = gl.best(); !ok {
			return Path{}, &BlockedError{Reason: ErrGoalBlocked, Border: gl.border(obs), Closed: len(gl.closing)}
		}
	}
}

// splice joins the origin chain up to the meeting cell with the goal chain
// beyond it.
func splice(org, gl *frontier, meet, rounds, expanded int, log *slog.Logger) Path {
	c := org.nodes[org.closing[meet]].cell
	cells := org.chain(org.closing[meet])
	for a, b := 0, len(cells)-1; a < b; a, b = a+1, b-1 {
		cells[a], cells[b] = cells[b], cells[a]
	}
	if parent := gl.nodes[gl.closing[gl.closedAt[c]]].parent; parent >= 0 {
		cells = append(cells, gl.chain(parent)...)
	}
	log.Debug("astar path found",
		"from", cells[0], "to", cells[len(cells)-1],
		"meet", c, "rounds", rounds, "expanded", expanded, "length", len(cells))
	return Path{Cells: cells, Cost: cost(cells), Rounds: rounds, Expanded: expanded}
}

// meeting returns the earliest position in the origin's closing order of a
// cell both frontiers have closed, or -1. Earlier rounds had no common cell,
// so only cells closed in this round by either side need checking.
func meeting(org, gl *frontier, orgFrom, glFrom int) int {
	meet := -1
	for pos := orgFrom; pos < len(org.closing); pos++ {
		if _, ok := gl.closedAt[org.nodes[org.closing[pos]].cell]; ok {
			meet = pos
			break
		}
	}
	for pos := glFrom; pos < len(gl.closing); pos++ {
		p, ok := org.closedAt[gl.nodes[gl.closing[pos]].cell]
		if ok && (meet < 0 || p < meet) {
			meet = p
		}
	}
	return meet
}
