package navigation

import (
	"math"

	"github.com/lixenwraith/gridplan/core"
)

// CostField stores exact cost-to-target for every cell of a frozen map
// Used as the optimality reference for planner results
type CostField struct {
	Width, Height int
	Distances     []float64 // Cost of reaching the target from each cell, +Inf if unreachable
	Directions    []int8    // Steepest-descent direction per cell, core.DirNone if none

	Target core.Point
	Valid  bool // False until Compute succeeds

	// Reusable buffers to reduce allocations across recomputes
	open priorityQueue
	buf  []core.Neighbor
}

// NewCostField creates an empty field for the given dimensions
func NewCostField(width, height int) *CostField {
	size := width * height
	return &CostField{
		Width:      width,
		Height:     height,
		Distances:  make([]float64, size),
		Directions: make([]int8, size),
		Target:     core.Point{X: -1, Y: -1},
	}
}

// Resize adjusts field dimensions, invalidates the field
func (f *CostField) Resize(width, height int) {
	size := width * height
	if cap(f.Distances) < size {
		f.Distances = make([]float64, size)
		f.Directions = make([]int8, size)
	} else {
		f.Distances = f.Distances[:size]
		f.Directions = f.Directions[:size]
	}
	f.Width = width
	f.Height = height
	f.Valid = false
}

// Compute runs a backward Dijkstra from target over m, then derives directions
//
// Phase 1: distances over directed edges u→v (cost of the step, v traversable)
// Phase 2: per-cell gradient, pick the successor minimising step + distance
func (f *CostField) Compute(target core.Point, m Map) {
	if m.Width() != f.Width || m.Height() != f.Height {
		f.Resize(m.Width(), m.Height())
	}
	f.Valid = false
	if !m.InBounds(target) {
		return
	}

	w := f.Width
	size := w * f.Height
	for i := 0; i < size; i++ {
		f.Distances[i] = math.Inf(1)
		f.Directions[i] = core.DirNone
	}

	// Phase 1
	targetIdx := index(target, w)
	f.Distances[targetIdx] = 0
	f.open.reset()
	if m.Traversable(target) {
		f.open.push(targetIdx, 0, 0, 0)
	}

	for f.open.len() > 0 {
		e := f.open.pop()
		if e.k1 > f.Distances[e.idx] {
			continue // Stale entry
		}
		v := point(e.idx, w)
		for dir, dv := range core.DirVectors {
			u := v.Sub(dv) // u steps along dir into v
			if !m.InBounds(u) {
				continue
			}
			uIdx := index(u, w)
			nd := e.k1 + core.DirCosts[dir]
			if nd < f.Distances[uIdx] {
				f.Distances[uIdx] = nd
				// Only traversable cells can be entered on the way to v
				if m.Traversable(u) {
					f.open.push(uIdx, nd, 0, 0)
				}
			}
		}
	}

	// Phase 2
	for i := 0; i < size; i++ {
		if i == targetIdx || math.IsInf(f.Distances[i], 1) {
			continue
		}
		p := point(i, w)
		best := f.Distances[i]
		f.buf = m.Neighbors8(p, f.buf[:0])
		for _, n := range f.buf {
			c := n.Cost + f.Distances[index(n.Cell, w)]
			if c <= best {
				best = c
				f.Directions[i] = p.DirectionTo(n.Cell)
			}
		}
	}

	f.Target = target
	f.Valid = true
}

// Distance returns the cost from p to the target, +Inf if unreachable or invalid
func (f *CostField) Distance(p core.Point) float64 {
	if !f.Valid || p.X < 0 || p.Y < 0 || p.X >= f.Width || p.Y >= f.Height {
		return math.Inf(1)
	}
	return f.Distances[index(p, f.Width)]
}

// Direction returns the descent direction at p, core.DirNone if invalid or blocked
func (f *CostField) Direction(p core.Point) int8 {
	if !f.Valid || p.X < 0 || p.Y < 0 || p.X >= f.Width || p.Y >= f.Height {
		return core.DirNone
	}
	return f.Directions[index(p, f.Width)]
}

// Follow walks the descent directions from p and returns the cells excluding p
func (f *CostField) Follow(p core.Point) []core.Point {
	if math.IsInf(f.Distance(p), 1) {
		return nil
	}
	var path []core.Point
	for cur := p; cur != f.Target; {
		dir := f.Direction(cur)
		if dir == core.DirNone || len(path) > f.Width*f.Height {
			return nil
		}
		cur = cur.Add(core.DirVectors[dir])
		path = append(path, cur)
	}
	return path
}
