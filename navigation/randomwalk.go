package navigation

import (
	"math/rand"

	"github.com/lixenwraith/gridplan/core"
)

// RandomWalk builds a seeded self-avoiding walk with a bias toward repeating the last direction
// It ignores the goal; the walk ends when steps run out or no unvisited neighbour is free
type RandomWalk struct {
	seed     int64
	steps    int
	bias     float64
	rng      *rand.Rand
	explored cellSet
}

// NewRandomWalk creates a walk of up to steps cells, continuing straight with probability bias
func NewRandomWalk(seed int64, steps int, bias float64) *RandomWalk {
	return &RandomWalk{
		seed:  seed,
		steps: steps,
		bias:  bias,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomWalk) Plan(origin, goal core.Point, m Map) []core.Point {
	r.explored = make(cellSet)
	if !m.InBounds(origin) {
		return nil
	}

	var plan []core.Point
	visited := map[core.Point]bool{origin: true}
	cur := origin
	last := core.DirNone
	moves := make([]int8, 0, core.DirCount)

	for i := 0; i < r.steps; i++ {
		moves = moves[:0]
		for dir, dv := range core.DirVectors {
			next := cur.Add(dv)
			if m.Traversable(next) && !visited[next] {
				moves = append(moves, int8(dir))
			}
		}
		if len(moves) == 0 {
			break
		}

		dir := core.DirNone
		if last != core.DirNone && r.rng.Float64() < r.bias {
			for _, mv := range moves {
				if mv == last {
					dir = last
					break
				}
			}
		}
		if dir == core.DirNone {
			dir = moves[r.rng.Intn(len(moves))]
		}

		cur = cur.Add(core.DirVectors[dir])
		visited[cur] = true
		r.explored.add(cur)
		plan = append(plan, cur)
		last = dir
	}
	return plan
}

func (r *RandomWalk) Explored() []core.Point { return r.explored.sorted() }

// Reset reseeds the generator so a fresh run repeats the same walks
func (r *RandomWalk) Reset() {
	r.rng = rand.New(rand.NewSource(r.seed))
	r.explored = nil
}

// Replay returns a recorded trajectory as its single plan
type Replay struct {
	trace    []core.Point
	explored cellSet
}

// NewReplay creates a planner replaying visited, which begins at the start cell
func NewReplay(visited []core.Point) *Replay {
	return &Replay{trace: append([]core.Point(nil), visited...)}
}

// Plan returns the trace after the first occurrence of origin, or the whole trace if origin is absent
func (r *Replay) Plan(origin, goal core.Point, m Map) []core.Point {
	r.explored = make(cellSet)
	for _, p := range r.trace {
		r.explored.add(p)
	}
	for i, p := range r.trace {
		if p == origin {
			return append([]core.Point(nil), r.trace[i+1:]...)
		}
	}
	return append([]core.Point(nil), r.trace...)
}

func (r *Replay) Explored() []core.Point { return r.explored.sorted() }

func (r *Replay) Reset() { r.explored = nil }
