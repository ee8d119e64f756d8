package navigation

import (
	"math"

	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/parameter"
)

// DStarLite is an incremental planner searching backward from the goal
//
// g and rhs persist across Plan calls for the same goal. Each Plan diffs the
// map's traversability against the snapshot the values were computed on and
// repairs only the affected vertices. Edges are directed: moving u→s costs the
// step cost when s is traversable, +Inf otherwise.
type DStarLite struct {
	epsilon       float64
	maxExpansions int
	compactAt     int // Dead entry count that allows a compaction

	width, height int
	goal          core.Point
	last          core.Point // Start the current keys are measured from
	km            float64
	initialized   bool

	g, rhs []float64
	stamp  []uint32 // Bumped on every dequeue; heap entries carrying an older stamp are dead
	queued []bool
	known  []bool // Traversability g/rhs currently reflect
	open   priorityQueue
	dead   int // Superseded entries still in open

	converged  bool
	expansions int
	rebuilds   int
	explored   cellSet
	buf        []core.Neighbor
	pred       []core.Point
}

// NewDStarLite creates a D* Lite planner
// maxExpansions bounds a single ComputeShortestPath call
func NewDStarLite(epsilon float64, maxExpansions int) *DStarLite {
	return &DStarLite{
		epsilon:       epsilon,
		maxExpansions: maxExpansions,
		compactAt:     parameter.NavCompactThreshold,
		open:          priorityQueue{tol: parameter.NavKeyTolerance},
	}
}

// Initialize discards all search state and seeds the queue with the goal
func (d *DStarLite) Initialize(start, goal core.Point, m Map) {
	w, h := m.Width(), m.Height()
	size := w * h
	if d.width != w || d.height != h || len(d.g) != size {
		d.width, d.height = w, h
		d.g = make([]float64, size)
		d.rhs = make([]float64, size)
		d.stamp = make([]uint32, size)
		d.queued = make([]bool, size)
		d.known = make([]bool, size)
	}
	inf := math.Inf(1)
	for i := 0; i < size; i++ {
		d.g[i] = inf
		d.rhs[i] = inf
		d.stamp[i] = 0
		d.queued[i] = false
		d.known[i] = m.Traversable(point(i, w))
	}
	d.open.reset()
	d.dead = 0
	d.goal = goal
	d.last = start
	d.km = 0
	d.converged = false
	d.initialized = true

	gi := index(goal, w)
	d.rhs[gi] = 0
	d.enqueue(gi)
}

// CalculateKey returns (min(g,rhs) + (1+ε)·h(start,s) + km, min(g,rhs))
//
// An under-consistent vertex (g < rhs) is keyed with the plain heuristic so a
// cost increase is propagated before any start it feeds is called consistent.
// With ε = 0 both cases coincide.
func (d *DStarLite) CalculateKey(s core.Point) (float64, float64) {
	idx := index(s, d.width)
	g, rhs := d.g[idx], d.rhs[idx]
	if g < rhs {
		return g + core.Octile(d.last, s) + d.km, g
	}
	return rhs + d.heuristic(d.last, s) + d.km, rhs
}

// UpdateVertex recomputes rhs(u) from its successors and fixes u's queue membership
func (d *DStarLite) UpdateVertex(u core.Point, m Map) {
	idx := index(u, d.width)
	if u != d.goal {
		best := math.Inf(1)
		d.buf = m.Neighbors8(u, d.buf[:0])
		for _, n := range d.buf {
			if c := n.Cost + d.g[index(n.Cell, d.width)]; c < best {
				best = c
			}
		}
		d.rhs[idx] = best
	}
	d.dequeue(idx)
	if d.g[idx] != d.rhs[idx] {
		d.enqueue(idx)
	}
}

// ComputeShortestPath expands vertices until start is locally consistent and
// no queued key is smaller than start's. Returns false when the expansion
// bound is hit first; state is kept so the next call resumes.
func (d *DStarLite) ComputeShortestPath(start core.Point, m Map) bool {
	d.converged = false
	d.expansions = 0
	if d.explored == nil {
		d.explored = make(cellSet)
	}
	sIdx := index(start, d.width)

	for {
		top, ok := d.peek()
		if !ok {
			break
		}
		s1, s2 := d.CalculateKey(start)
		if !d.keyLess(top.k1, top.k2, s1, s2) && d.rhs[sIdx] == d.g[sIdx] {
			break
		}
		if d.expansions >= d.maxExpansions {
			return false
		}

		d.popTop(top.idx)
		u := point(top.idx, d.width)
		n1, n2 := d.CalculateKey(u)
		if d.keyLess(top.k1, top.k2, n1, n2) {
			// Key grew since insertion; requeue under the fresh key
			d.enqueue(top.idx)
			continue
		}

		d.expansions++
		d.explored.add(u)

		if d.g[top.idx] > d.rhs[top.idx] {
			d.g[top.idx] = d.rhs[top.idx]
		} else {
			d.g[top.idx] = math.Inf(1)
			d.UpdateVertex(u, m)
		}
		for _, p := range d.predecessors(u) {
			d.UpdateVertex(p, m)
		}
	}
	d.converged = true
	return true
}

// ExtractPath follows the cheapest successor from start to the goal
// Returns nil when a step has no finite successor or revisits a cell
func (d *DStarLite) ExtractPath(start core.Point, m Map) []core.Point {
	path, _ := d.extract(start, m)
	return path
}

// extract is ExtractPath that also returns the summed step cost
func (d *DStarLite) extract(start core.Point, m Map) ([]core.Point, float64) {
	if start == d.goal {
		return nil, 0
	}
	var path []core.Point
	cost := 0.0
	seen := map[core.Point]bool{start: true}
	cur := start
	for cur != d.goal {
		best, step := math.Inf(1), 0.0
		var next core.Point
		d.buf = m.Neighbors8(cur, d.buf[:0])
		for _, n := range d.buf {
			if c := n.Cost + d.g[index(n.Cell, d.width)]; c < best {
				best = c
				step = n.Cost
				next = n.Cell
			}
		}
		if math.IsInf(best, 1) || seen[next] {
			return nil, math.Inf(1)
		}
		seen[next] = true
		path = append(path, next)
		cost += step
		cur = next
	}
	return path, cost
}

// Plan repairs the search for the current map and extracts a path
//
// A repaired state is trusted only when it is self-consistent: either start is
// unreachable by g, or the extracted path costs no more than g(start). Anything
// else rebuilds the search from Initialize, so an empty plan means unreachable.
func (d *DStarLite) Plan(origin, goal core.Point, m Map) []core.Point {
	d.explored = make(cellSet)
	if !m.InBounds(origin) || !m.InBounds(goal) {
		d.converged = false
		return nil
	}

	fresh := !d.initialized || goal != d.goal || d.width != m.Width() || d.height != m.Height()
	if fresh {
		d.Initialize(origin, goal, m)
	} else {
		d.km += d.heuristic(d.last, origin)
		d.last = origin
		d.applyChanges(m)
	}

	if origin == goal {
		d.converged = true
		return nil
	}
	if !d.ComputeShortestPath(origin, m) {
		return nil
	}
	path, cost := d.extract(origin, m)
	if fresh || d.trustworthy(origin, path, cost) {
		return path
	}

	d.rebuilds++
	spent := d.expansions
	d.Initialize(origin, goal, m)
	converged := d.ComputeShortestPath(origin, m)
	d.expansions += spent
	if !converged {
		return nil
	}
	return d.ExtractPath(origin, m)
}

// trustworthy reports whether an extraction agrees with g(start)
func (d *DStarLite) trustworthy(start core.Point, path []core.Point, cost float64) bool {
	gs := d.G(start)
	if path == nil {
		return math.IsInf(gs, 1)
	}
	return cost <= gs+parameter.NavKeyTolerance*float64(len(path))
}

// applyChanges repairs every vertex whose traversability differs from the snapshot
func (d *DStarLite) applyChanges(m Map) {
	for i := range d.known {
		p := point(i, d.width)
		t := m.Traversable(p)
		if t == d.known[i] {
			continue
		}
		d.known[i] = t
		d.UpdateVertex(p, m)
		for _, q := range d.predecessors(p) {
			d.UpdateVertex(q, m)
		}
	}
}

// predecessors returns the in-bounds 8-neighbours of p
// The slice is reused by the next call
func (d *DStarLite) predecessors(p core.Point) []core.Point {
	d.pred = d.pred[:0]
	for _, dv := range core.DirVectors {
		q := p.Add(dv)
		if q.X >= 0 && q.Y >= 0 && q.X < d.width && q.Y < d.height {
			d.pred = append(d.pred, q)
		}
	}
	return d.pred
}

func (d *DStarLite) heuristic(a, b core.Point) float64 {
	return (1 + d.epsilon) * core.Octile(a, b)
}

func (d *DStarLite) keyLess(a1, a2, b1, b2 float64) bool {
	return keyLess(a1, a2, b1, b2, d.open.tol)
}

func (d *DStarLite) enqueue(idx int) {
	k1, k2 := d.CalculateKey(point(idx, d.width))
	d.queued[idx] = true
	d.open.push(idx, k1, k2, d.stamp[idx])
}

// dequeue supersedes idx's live entry, leaving it dead in the heap
func (d *DStarLite) dequeue(idx int) {
	if !d.queued[idx] {
		return
	}
	d.queued[idx] = false
	d.stamp[idx]++
	d.dead++
	if d.dead > d.compactAt && d.dead > d.open.len()/2 {
		d.compact()
	}
}

// popTop removes the live entry peek just returned
func (d *DStarLite) popTop(idx int) {
	d.open.pop()
	d.queued[idx] = false
	d.stamp[idx]++
}

// compact drops every dead entry from the heap
func (d *DStarLite) compact() {
	d.open.retain(d.live)
	d.dead = 0
}

func (d *DStarLite) live(e heapEntry) bool {
	return d.queued[e.idx] && d.stamp[e.idx] == e.stamp
}

// peek drops dead entries and returns the live minimum
func (d *DStarLite) peek() (heapEntry, bool) {
	for d.open.len() > 0 {
		top := d.open.top()
		if d.live(top) {
			return top, true
		}
		d.open.pop()
		d.dead--
	}
	return heapEntry{}, false
}

// TopKey returns the smallest live key in the queue
func (d *DStarLite) TopKey() (float64, float64, bool) {
	top, ok := d.peek()
	return top.k1, top.k2, ok
}

// Converged reports whether the last ComputeShortestPath finished within its bound
func (d *DStarLite) Converged() bool { return d.converged }

// Expansions returns the vertex count expanded by the last Plan's search
func (d *DStarLite) Expansions() int { return d.expansions }

// G returns g(p)
func (d *DStarLite) G(p core.Point) float64 { return d.g[index(p, d.width)] }

// RHS returns rhs(p)
func (d *DStarLite) RHS(p core.Point) float64 { return d.rhs[index(p, d.width)] }

func (d *DStarLite) Explored() []core.Point { return d.explored.sorted() }

// Reset drops all search state; the next Plan initializes from scratch
func (d *DStarLite) Reset() {
	d.initialized = false
	d.converged = false
	d.explored = nil
	d.open.reset()
	d.dead = 0
}
