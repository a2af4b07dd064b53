package astar

import "context"

// Search runs a one-sided search from origin toward goal. With
// opts.OriginDirection set, the first move is forced in that direction,
// which lets a route leave a port along its orientation.
func Search(ctx context.Context, origin, goal Cell, obs *Obstacles, opts Options) (Path, error) {
	f := newFrontier(origin, goal, opts.Smoothing, opts.OriginDirection)
	expanded, rounds := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return Path{}, err
		}
		if opts.MaxExpansions > 0 && expanded >= opts.MaxExpansions {
			return Path{}, ErrSearchExhausted
		}
		rounds++
		expanded += f.round(goal, obs)

		if pos, ok := f.closedAt[goal]; ok {
			cells := f.chain(f.closing[pos])
			for a, b := 0, len(cells)-1; a < b; a, b = a+1, b-1 {
				cells[a], cells[b] = cells[b], cells[a]
			}
			opts.logger().Debug("astar single-direction path found",
				"origin", origin, "goal", goal, "rounds", rounds, "expanded", expanded)
			return Path{Cells: cells, Cost: cost(cells), Rounds: rounds, Expanded: expanded}, nil
		}
		if len(f.open) == 0 {
			return Path{}, &BlockedError{Reason: ErrOriginBlocked, Border: f.border(obs), Closed: len(f.closing)}
		}
	}
}

// DirectionFor returns the unit step that leaves a port with the given
// orientation in degrees (0, 90, 180 or 270).
func DirectionFor(orientation int) Cell {
	switch ((orientation % 360) + 360) % 360 {
	case 90:
		return Cell{0, 1}
	case 180:
		return Cell{-1, 0}
	case 270:
		return Cell{0, -1}
	default:
		return Cell{1, 0}
	}
}
