package grid

import (
	"math/rand"

	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/parameter"
)

// Shape kinds drawn by RandomShape
const (
	ShapeBlock = iota
	ShapeHorizontal
	ShapeVertical
	ShapeL
	shapeKinds
)

// HorizontalLine returns length cells along +X from the origin
func HorizontalLine(length int) []core.Point {
	out := make([]core.Point, length)
	for i := range out {
		out[i] = core.Point{X: i}
	}
	return out
}

// VerticalLine returns length cells along +Y from the origin
func VerticalLine(length int) []core.Point {
	out := make([]core.Point, length)
	for i := range out {
		out[i] = core.Point{Y: i}
	}
	return out
}

// Block returns a filled w×h rectangle anchored at the origin
func Block(w, h int) []core.Point {
	out := make([]core.Point, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, core.Point{X: x, Y: y})
		}
	}
	return out
}

// LShape returns the three-cell corner
func LShape() []core.Point {
	return []core.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
}

// RandomShape draws one shape template from rng
func RandomShape(rng *rand.Rand) []core.Point {
	switch rng.Intn(shapeKinds) {
	case ShapeBlock:
		w := randRange(rng, parameter.ShapeBlockMin, parameter.ShapeBlockMax)
		h := randRange(rng, parameter.ShapeBlockMin, parameter.ShapeBlockMax)
		return Block(w, h)
	case ShapeHorizontal:
		return HorizontalLine(randRange(rng, parameter.ShapeLineMin, parameter.ShapeLineMax))
	case ShapeVertical:
		return VerticalLine(randRange(rng, parameter.ShapeLineMin, parameter.ShapeLineMax))
	default:
		return LShape()
	}
}

// shapeExtent returns the bounding box size of a shape anchored at the origin
func shapeExtent(shape []core.Point) (w, h int) {
	for _, c := range shape {
		if c.X+1 > w {
			w = c.X + 1
		}
		if c.Y+1 > h {
			h = c.Y + 1
		}
	}
	return w, h
}

// randRange returns a value in [lo, hi]
func randRange(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}
