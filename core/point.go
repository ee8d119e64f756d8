package core

import "math"

// Point is a grid cell coordinate
type Point struct {
	X, Y int
}

// Neighbor is an adjacent cell paired with the cost of entering it
type Neighbor struct {
	Cell Point
	Cost float64
}

// Direction indices into DirVectors: N=0, NE=1, E=2, SE=3, S=4, SW=5, W=6, NW=7
const (
	DirNone  int8 = -1
	DirN     int8 = 0
	DirNE    int8 = 1
	DirE     int8 = 2
	DirSE    int8 = 3
	DirS     int8 = 4
	DirSW    int8 = 5
	DirW     int8 = 6
	DirNW    int8 = 7
	DirCount int8 = 8
)

// DirVectors matches DirN..DirNW
var DirVectors = [8]Point{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// DirCosts holds the move cost per direction: 1 cardinal, √2 diagonal
var DirCosts = [8]float64{
	1, math.Sqrt2, 1, math.Sqrt2,
	1, math.Sqrt2, 1, math.Sqrt2,
}

// Add returns p translated by d
func (p Point) Add(d Point) Point {
	return Point{p.X + d.X, p.Y + d.Y}
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Adjacent reports whether q is one of the 8 cells around p
func (p Point) Adjacent(q Point) bool {
	dx, dy := abs(p.X-q.X), abs(p.Y-q.Y)
	return dx <= 1 && dy <= 1 && dx+dy > 0
}

// Manhattan returns |dx| + |dy|
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// DirectionTo returns the direction index from p to an adjacent q, DirNone otherwise
func (p Point) DirectionTo(q Point) int8 {
	d := q.Sub(p)
	for i := int8(0); i < DirCount; i++ {
		if DirVectors[i] == d {
			return i
		}
	}
	return DirNone
}

// Octile is the admissible, consistent heuristic for 8-connected unit/√2 moves:
// max(dx,dy) + (√2-1)·min(dx,dy)
func Octile(a, b Point) float64 {
	dx := float64(abs(a.X - b.X))
	dy := float64(abs(a.Y - b.Y))
	return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
}

// StepCost returns the Euclidean length of a single hop between cells
func StepCost(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// PathLength sums hop lengths along path
func PathLength(path []Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += StepCost(path[i-1], path[i])
	}
	return total
}

// CountInvalidMoves counts consecutive pairs that are not 8-adjacent
func CountInvalidMoves(path []Point) int {
	n := 0
	for i := 1; i < len(path); i++ {
		if !path[i-1].Adjacent(path[i]) {
			n++
		}
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
