package grid

import "github.com/lixenwraith/gridplan/core"

// ObstacleArea is a rigid group of occupied cells
// Shape offsets are relative to Offset; Velocity is zero for static areas
type ObstacleArea struct {
	Shape    []core.Point
	Offset   core.Point
	Velocity core.Point

	initialOffset   core.Point
	initialVelocity core.Point
}

// NewObstacleArea creates an area and remembers its placement for Reset
func NewObstacleArea(shape []core.Point, offset, velocity core.Point) *ObstacleArea {
	s := make([]core.Point, len(shape))
	copy(s, shape)
	return &ObstacleArea{
		Shape:           s,
		Offset:          offset,
		Velocity:        velocity,
		initialOffset:   offset,
		initialVelocity: velocity,
	}
}

// Cells returns the absolute cells at the current offset
func (a *ObstacleArea) Cells() []core.Point {
	return a.CellsAt(a.Offset)
}

// CellsAt returns the absolute cells the shape would cover at offset
func (a *ObstacleArea) CellsAt(offset core.Point) []core.Point {
	out := make([]core.Point, len(a.Shape))
	for i, c := range a.Shape {
		out[i] = c.Add(offset)
	}
	return out
}

// Dynamic reports whether the area was created with a velocity
func (a *ObstacleArea) Dynamic() bool {
	return a.initialVelocity != (core.Point{})
}

// Reset restores initial offset and velocity
func (a *ObstacleArea) Reset() {
	a.Offset = a.initialOffset
	a.Velocity = a.initialVelocity
}

// InitialOffset returns the offset the area was created with
func (a *ObstacleArea) InitialOffset() core.Point { return a.initialOffset }

// InitialVelocity returns the velocity the area was created with
func (a *ObstacleArea) InitialVelocity() core.Point { return a.initialVelocity }

func (a *ObstacleArea) clone() *ObstacleArea {
	c := *a
	c.Shape = make([]core.Point, len(a.Shape))
	copy(c.Shape, a.Shape)
	return &c
}

func validVelocity(v core.Point) bool {
	return v.X >= -1 && v.X <= 1 && v.Y >= -1 && v.Y <= 1
}
