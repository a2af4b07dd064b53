package escape

import (
	"sort"

	"github.com/piwi3910/maskroute/internal/model"
)

// Kind tells how a member leaves the array.
type Kind int

const (
	// KindStraight is a boundary node: a straight trace outward.
	KindStraight Kind = iota
	// KindSingle is the only trace in its channel, centred between pads.
	KindSingle
	// KindSlotted shares its channel and takes one of n evenly spaced slots.
	KindSlotted
)

func (k Kind) String() string {
	switch k {
	case KindStraight:
		return "straight"
	case KindSingle:
		return "single"
	default:
		return "slotted"
	}
}

// Toward is the lateral direction an interior trace turns into.
type Toward int

const (
	TowardLow  Toward = -1
	TowardHigh Toward = 1
)

// Assignment is the routing decision for one member. Channel c lies between
// lanes c-1 and c. Slot counts from the member's own lane into the channel.
type Assignment struct {
	Member
	Kind    Kind
	Toward  Toward
	Channel int
	Slot    int
	Count   int
}

// Channel is the load of one inter-lane gap.
type Channel struct {
	Index  int
	Traces int
}

// SidePlan is the routing decision for every member of one side.
type SidePlan struct {
	Side        model.Side
	Lanes       int
	Assignments []Assignment
	Channels    []Channel
}

// MaxLoad returns the busiest channel's trace count.
func (p SidePlan) MaxLoad() int {
	max := 0
	for _, c := range p.Channels {
		if c.Traces > max {
			max = c.Traces
		}
	}
	return max
}

// PlanSide decides, for each member of a side, whether it leaves straight or
// turns into a channel, which channel, and at which slot. Lanes in the low
// half turn low and lanes in the high half turn high. With an odd lane count
// the centre lane sends odd depths low and even depths high. With an even
// lane count the two centre lanes send odd depths outward and share the
// channel between them for even depths. Within a channel deeper members take
// slots further from their own lane, so no two traces cross.
func PlanSide(side model.Side, members []Member) SidePlan {
	plan := SidePlan{Side: side}
	if len(members) == 0 {
		return plan
	}

	byLane := make(map[int][]Member)
	var lanes []int
	for _, m := range members {
		if _, ok := byLane[m.Lane]; !ok {
			lanes = append(lanes, m.Lane)
		}
		byLane[m.Lane] = append(byLane[m.Lane], m)
	}
	sort.Ints(lanes)
	plan.Lanes = len(lanes)

	L := len(lanes)
	seamLow, seamHigh := -1, -1
	if L%2 == 0 {
		seamLow, seamHigh = L/2-1, L/2
	}

	// Assignments into each channel, grouped by the lane they come from.
	type feed struct {
		fromLow  []int // indices into plan.Assignments, turning high
		fromHigh []int // turning low
	}
	feeds := make(map[int]*feed)
	route := func(a Assignment) {
		idx := len(plan.Assignments)
		plan.Assignments = append(plan.Assignments, a)
		if a.Kind == KindStraight {
			return
		}
		f := feeds[a.Channel]
		if f == nil {
			f = &feed{}
			feeds[a.Channel] = f
		}
		if a.Toward == TowardHigh {
			f.fromLow = append(f.fromLow, idx)
		} else {
			f.fromHigh = append(f.fromHigh, idx)
		}
	}

	for r, lane := range lanes {
		group := byLane[lane]
		sort.Slice(group, func(a, b int) bool { return group[a].Depth < group[b].Depth })
		for _, m := range group {
			if m.Depth == 0 {
				route(Assignment{Member: m, Kind: KindStraight})
				continue
			}
			odd := m.Depth%2 == 1
			var dir Toward
			switch {
			case r == seamLow:
				dir = TowardLow
				if !odd {
					dir = TowardHigh
				}
			case r == seamHigh:
				dir = TowardHigh
				if !odd {
					dir = TowardLow
				}
			case 2*r < L-1:
				dir = TowardLow
			case 2*r > L-1:
				dir = TowardHigh
			default:
				dir = TowardLow
				if !odd {
					dir = TowardHigh
				}
			}
			ch := lane
			if dir == TowardHigh {
				ch = lane + 1
			}
			route(Assignment{Member: m, Kind: KindSlotted, Toward: dir, Channel: ch})
		}
	}

	indices := make([]int, 0, len(feeds))
	for ch := range feeds {
		indices = append(indices, ch)
	}
	sort.Ints(indices)
	for _, ch := range indices {
		f := feeds[ch]
		n := len(f.fromLow) + len(f.fromHigh)
		for _, side := range [][]int{f.fromLow, f.fromHigh} {
			for slot, idx := range side {
				a := &plan.Assignments[idx]
				a.Slot = slot
				a.Count = n
				if n == 1 {
					a.Kind = KindSingle
				}
			}
		}
		plan.Channels = append(plan.Channels, Channel{Index: ch, Traces: n})
	}
	return plan
}
