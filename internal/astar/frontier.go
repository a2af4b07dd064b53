package astar

import "sort"

// node is one search state. Parent is an index into the owning frontier's
// arena; -1 marks the root.
type node struct {
	cell   Cell
	g, h   float64
	parent int
}

func (n node) f() float64 { return n.g + n.h }

// frontier is one side of the search: an arena of nodes, the open list in
// (f, creation) order, and the closed cells in closing order.
type frontier struct {
	nodes    []node
	open     []int
	openAt   map[Cell]int // arena index
	closedAt map[Cell]int // position in closing
	closing  []int        // arena indices

	smoothing bool
	first     *Cell // forced direction of the root's expansion
}

func newFrontier(root, target Cell, smoothing bool, first *Cell) *frontier {
	f := &frontier{
		openAt:    make(map[Cell]int),
		closedAt:  make(map[Cell]int),
		smoothing: smoothing,
		first:     first,
	}
	f.nodes = append(f.nodes, node{cell: root, h: manhattan(root, target), parent: -1})
	f.open = []int{0}
	f.openAt[root] = 0
	return f
}

// allowed returns the steps node idx may take.
func (f *frontier) allowed(idx int) []Cell {
	n := f.nodes[idx]
	if n.parent < 0 {
		if f.first != nil {
			return []Cell{*f.first}
		}
		return moves[:]
	}
	if !f.smoothing {
		return moves[:]
	}
	k := moveIndex(n.cell.Sub(f.nodes[n.parent].cell))
	if k < 0 {
		return moves[:]
	}
	return []Cell{moves[(k+7)%8], moves[k], moves[(k+1)%8]}
}

// round expands every node open at its start, in open-list order, then
// re-sorts the open list. New nodes take their heuristic against target.
// It returns the number of nodes expanded.
func (f *frontier) round(target Cell, obs *Obstacles) int {
	snapshot := append([]int(nil), f.open...)
	for _, idx := range snapshot {
		cur := f.nodes[idx]
		for _, step := range f.allowed(idx) {
			c := cur.cell.Add(step)
			if obs.Blocked(c) {
				continue
			}
			if _, closed := f.closedAt[c]; closed {
				continue
			}
			g := cur.g + stepCost(step)
			if j, ok := f.openAt[c]; ok {
				if g <= f.nodes[j].g {
					f.nodes[j].g = g
					f.nodes[j].parent = idx
				}
				continue
			}
			f.nodes = append(f.nodes, node{cell: c, g: g, h: manhattan(c, target), parent: idx})
			j := len(f.nodes) - 1
			f.openAt[c] = j
			f.open = append(f.open, j)
		}
		delete(f.openAt, cur.cell)
		f.closedAt[cur.cell] = len(f.closing)
		f.closing = append(f.closing, idx)
	}

	open := f.open[:0]
	for _, idx := range f.open {
		if j, ok := f.openAt[f.nodes[idx].cell]; ok && j == idx {
			open = append(open, idx)
		}
	}
	f.open = open
	// Arena indices grow with creation, so they break f ties by insertion.
	sort.SliceStable(f.open, func(a, b int) bool {
		fa, fb := f.nodes[f.open[a]].f(), f.nodes[f.open[b]].f()
		if fa != fb {
			return fa < fb
		}
		return f.open[a] < f.open[b]
	})
	return len(snapshot)
}

// best returns the cell of the lowest-f open node.
func (f *frontier) best() (Cell, bool) {
	if len(f.open) == 0 {
		return Cell{}, false
	}
	return f.nodes[f.open[0]].cell, true
}

// chain returns the cells from node idx back to the root.
func (f *frontier) chain(idx int) []Cell {
	var out []Cell
	for ; idx >= 0; idx = f.nodes[idx].parent {
		out = append(out, f.nodes[idx].cell)
	}
	return out
}

// border returns the obstacle cells in the 3×3 neighbourhood of every closed
// cell, deduplicated and sorted.
func (f *frontier) border(obs *Obstacles) []Cell {
	seen := make(map[Cell]struct{})
	var out []Cell
	for _, idx := range f.closing {
		c := f.nodes[idx].cell
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				n := Cell{c.X + dx, c.Y + dy}
				if !obs.Blocked(n) {
					continue
				}
				if _, dup := seen[n]; dup {
					continue
				}
				seen[n] = struct{}{}
				out = append(out, n)
			}
		}
	}
	sortCells(out)
	return out
}
