package navigation

import (
	"sort"

	"github.com/lixenwraith/gridplan/core"
)

// Map is the read-only view planners search over
// grid.Environment and grid.Snapshot both satisfy it
type Map interface {
	Width() int
	Height() int
	InBounds(p core.Point) bool
	Traversable(p core.Point) bool
	Neighbors8(p core.Point, buf []core.Neighbor) []core.Neighbor
}

// Planner computes or repairs a path toward a goal
//
// Plan returns the cells from origin to goal excluding origin, or nil when the
// goal is unreachable. It never fails loudly. Explored lists the cells
// expanded by the most recent Plan call. A Planner is owned by one agent and is
// not safe for concurrent use.
type Planner interface {
	Plan(origin, goal core.Point, m Map) []core.Point
	Explored() []core.Point
	Reset()
}

// cellSet collects explored cells
type cellSet map[core.Point]struct{}

func (s cellSet) add(p core.Point) { s[p] = struct{}{} }

// sorted returns the set in row-major order
func (s cellSet) sorted() []core.Point {
	out := make([]core.Point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func index(p core.Point, width int) int { return p.Y*width + p.X }

func point(idx, width int) core.Point { return core.Point{X: idx % width, Y: idx / width} }
