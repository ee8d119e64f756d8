package navigation

import (
	"math"

	"github.com/lixenwraith/gridplan/core"
)

// bestFirst is the closed-set search shared by A*, Dijkstra and Diverse-Dijkstra
// Buffers are reused across calls while the map dimensions are unchanged
type bestFirst struct {
	width, height int
	g             []float64
	parent        []int
	closed        []bool
	open          priorityQueue
	buf           []core.Neighbor
	explored      cellSet

	// preferDeep breaks equal priority toward the larger g
	preferDeep bool
}

// heuristicFunc estimates remaining cost from p, nil means zero
type heuristicFunc func(p core.Point) float64

// entryFunc returns the cost of stepping into n
type entryFunc func(n core.Neighbor) float64

func (s *bestFirst) prepare(m Map) {
	w, h := m.Width(), m.Height()
	size := w * h
	if s.width != w || s.height != h || len(s.g) != size {
		s.width, s.height = w, h
		s.g = make([]float64, size)
		s.parent = make([]int, size)
		s.closed = make([]bool, size)
	}
	for i := 0; i < size; i++ {
		s.g[i] = math.Inf(1)
		s.parent[i] = -1
		s.closed[i] = false
	}
	s.open.reset()
	s.explored = make(cellSet)
}

// run searches origin→goal and returns the path excluding origin, nil if unreachable
func (s *bestFirst) run(origin, goal core.Point, m Map, h heuristicFunc, entry entryFunc) []core.Point {
	s.prepare(m)
	if !m.InBounds(origin) || !m.InBounds(goal) || origin == goal {
		return nil
	}

	w := s.width
	start := index(origin, w)
	target := index(goal, w)

	s.g[start] = 0
	s.open.push(start, s.priority(origin, 0, h), 0, 0)

	for s.open.len() > 0 {
		e := s.open.pop()
		if s.closed[e.idx] {
			continue // Stale entry
		}
		s.closed[e.idx] = true

		cur := point(e.idx, w)
		s.explored.add(cur)
		if e.idx == target {
			return s.reconstruct(start, target)
		}

		s.buf = m.Neighbors8(cur, s.buf[:0])
		for _, n := range s.buf {
			nIdx := index(n.Cell, w)
			if s.closed[nIdx] {
				continue
			}
			ng := s.g[e.idx] + entry(n)
			if ng < s.g[nIdx] {
				s.g[nIdx] = ng
				s.parent[nIdx] = e.idx
				tie := 0.0
				if s.preferDeep {
					tie = -ng
				}
				s.open.push(nIdx, s.priority(n.Cell, ng, h), tie, 0)
			}
		}
	}
	return nil
}

func (s *bestFirst) priority(p core.Point, g float64, h heuristicFunc) float64 {
	if h == nil {
		return g
	}
	return g + h(p)
}

func (s *bestFirst) reconstruct(start, target int) []core.Point {
	var rev []core.Point
	for idx := target; idx != start; idx = s.parent[idx] {
		rev = append(rev, point(idx, s.width))
	}
	path := make([]core.Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// cost returns the accumulated cost recorded for p by the last search
func (s *bestFirst) cost(p core.Point) float64 {
	if p.X < 0 || p.Y < 0 || p.X >= s.width || p.Y >= s.height {
		return math.Inf(1)
	}
	return s.g[index(p, s.width)]
}
