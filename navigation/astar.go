package navigation

import (
	"github.com/lixenwraith/gridplan/core"
)

// AStar plans with f = g + (1+ε)·octile, ties broken toward the deeper node
type AStar struct {
	epsilon float64
	search  bestFirst
}

// NewAStar creates an A* planner with heuristic inflation epsilon
func NewAStar(epsilon float64) *AStar {
	return &AStar{epsilon: epsilon, search: bestFirst{preferDeep: true}}
}

func (a *AStar) Plan(origin, goal core.Point, m Map) []core.Point {
	weight := 1 + a.epsilon
	h := func(p core.Point) float64 { return weight * core.Octile(p, goal) }
	return a.search.run(origin, goal, m, h, func(n core.Neighbor) float64 { return n.Cost })
}

func (a *AStar) Explored() []core.Point { return a.search.explored.sorted() }

func (a *AStar) Reset() { a.search.explored = nil }

// Dijkstra plans by uniform-cost search
type Dijkstra struct {
	search bestFirst
}

// NewDijkstra creates a Dijkstra planner
func NewDijkstra() *Dijkstra {
	return &Dijkstra{}
}

func (d *Dijkstra) Plan(origin, goal core.Point, m Map) []core.Point {
	return d.search.run(origin, goal, m, nil, func(n core.Neighbor) float64 { return n.Cost })
}

func (d *Dijkstra) Explored() []core.Point { return d.search.explored.sorted() }

func (d *Dijkstra) Reset() { d.search.explored = nil }
