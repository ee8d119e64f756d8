package grid

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/gridplan/core"
)

var (
	// ErrInvalidDimensions is returned for grids too small to hold a border and an interior
	ErrInvalidDimensions = errors.New("grid: invalid dimensions")

	// ErrInvalidVelocity is returned when a velocity component is outside {-1,0,1}
	ErrInvalidVelocity = errors.New("grid: invalid velocity")

	// ErrInvalidArea is returned when a hand-built dynamic area leaves the interior or overlaps another area
	ErrInvalidArea = errors.New("grid: invalid obstacle area")

	// ErrCapacity is returned when generation cannot place an area without overlap
	ErrCapacity = errors.New("grid: obstacle capacity exceeded")
)

// Environment is the occupancy grid with a fixed border, static areas and
// bouncing dynamic areas. It has a single writer: the tick driver calling Step.
type Environment struct {
	layer

	static  []*ObstacleArea
	dynamic []*ObstacleArea

	staticMask []bool // cells covered by border or static areas
	owner      []int  // dynamic area index+1 per cell, 0 if none
}

// New builds an environment from explicit areas
// Static areas are clipped to the grid; dynamic areas must start inside the
// interior without overlapping static cells or each other
func New(width, height int, static, dynamic []*ObstacleArea) (*Environment, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	e := &Environment{
		layer:      newLayer(width, height),
		staticMask: make([]bool, width*height),
		owner:      make([]int, width*height),
	}

	for _, a := range static {
		e.static = append(e.static, a.clone())
	}
	for i, a := range dynamic {
		if !validVelocity(a.Velocity) || !validVelocity(a.InitialVelocity()) {
			return nil, fmt.Errorf("%w: dynamic area %d has velocity %v", ErrInvalidVelocity, i, a.Velocity)
		}
		e.dynamic = append(e.dynamic, a.clone())
	}

	e.buildStaticMask()
	if err := e.buildOwners(); err != nil {
		return nil, err
	}
	e.rebuild()
	return e, nil
}

// StaticAreas returns the static areas (shared, do not mutate)
func (e *Environment) StaticAreas() []*ObstacleArea { return e.static }

// DynamicAreas returns the dynamic areas (shared, do not mutate)
func (e *Environment) DynamicAreas() []*ObstacleArea { return e.dynamic }

// Step advances every dynamic area by one tick under the bounce rule, then
// rebuilds occupancy and inflation
// Areas move in creation order; later areas see earlier areas' new cells
func (e *Environment) Step(agent core.Point) {
	for i, a := range e.dynamic {
		e.moveArea(i, a, agent)
	}
	e.rebuild()
}

// Reset restores every dynamic area to its initial placement and velocity
func (e *Environment) Reset() {
	for _, a := range e.dynamic {
		a.Reset()
	}
	// Initial placement was validated at construction
	_ = e.buildOwners()
	e.rebuild()
}

// Clone returns a deep copy sharing no mutable state
func (e *Environment) Clone() *Environment {
	c := &Environment{
		staticMask: append([]bool(nil), e.staticMask...),
		owner:      append([]int(nil), e.owner...),
	}
	c.copyFrom(&e.layer)
	for _, a := range e.static {
		c.static = append(c.static, a.clone())
	}
	for _, a := range e.dynamic {
		c.dynamic = append(c.dynamic, a.clone())
	}
	return c
}

// Snapshot freezes the current occupancy and inflation
func (e *Environment) Snapshot() *Snapshot {
	s := &Snapshot{}
	s.copyFrom(&e.layer)
	return s
}

// moveArea applies the bounce rule to one dynamic area
//
// Full move first; on collision each axis is probed alone. One blocked axis
// reverses that component and slides along the other. Both blocked, or a
// corner-only hit, reverses the blocked components (both for a corner hit)
// and tries the reflected move; if that fails too the area holds.
func (e *Environment) moveArea(i int, a *ObstacleArea, agent core.Point) {
	v := a.Velocity
	if v == (core.Point{}) {
		return
	}

	if e.canPlace(i, a, a.Offset.Add(v), agent) {
		e.place(i, a, a.Offset.Add(v))
		return
	}

	blockX := v.X != 0 && !e.canPlace(i, a, a.Offset.Add(core.Point{X: v.X}), agent)
	blockY := v.Y != 0 && !e.canPlace(i, a, a.Offset.Add(core.Point{Y: v.Y}), agent)

	switch {
	case blockX && !blockY && v.Y != 0:
		a.Velocity = core.Point{X: -v.X, Y: v.Y}
		e.place(i, a, a.Offset.Add(core.Point{Y: v.Y}))

	case blockY && !blockX && v.X != 0:
		a.Velocity = core.Point{X: v.X, Y: -v.Y}
		e.place(i, a, a.Offset.Add(core.Point{X: v.X}))

	default:
		corner := !blockX && !blockY
		if blockX || corner {
			v.X = -v.X
		}
		if blockY || corner {
			v.Y = -v.Y
		}
		a.Velocity = v
		if next := a.Offset.Add(v); e.canPlace(i, a, next, agent) {
			e.place(i, a, next)
		}
	}
}

// canPlace checks area i at offset against border, static cells, other dynamic areas and the agent
func (e *Environment) canPlace(i int, a *ObstacleArea, offset core.Point, agent core.Point) bool {
	for _, c := range a.Shape {
		p := c.Add(offset)
		if p.X < 1 || p.Y < 1 || p.X > e.width-2 || p.Y > e.height-2 {
			return false
		}
		idx := p.Y*e.width + p.X
		if e.staticMask[idx] {
			return false
		}
		if o := e.owner[idx]; o != 0 && o != i+1 {
			return false
		}
		if p == agent {
			return false
		}
	}
	return true
}

func (e *Environment) place(i int, a *ObstacleArea, offset core.Point) {
	for _, p := range a.Cells() {
		if idx := p.Y*e.width + p.X; e.owner[idx] == i+1 {
			e.owner[idx] = 0
		}
	}
	a.Offset = offset
	for _, p := range a.Cells() {
		e.owner[p.Y*e.width+p.X] = i + 1
	}
}

func (e *Environment) buildStaticMask() {
	w, h := e.width, e.height
	for i := range e.staticMask {
		e.staticMask[i] = false
	}
	for x := 0; x < w; x++ {
		e.staticMask[x] = true
		e.staticMask[(h-1)*w+x] = true
	}
	for y := 0; y < h; y++ {
		e.staticMask[y*w] = true
		e.staticMask[y*w+w-1] = true
	}
	for _, a := range e.static {
		for _, p := range a.Cells() {
			if e.InBounds(p) {
				e.staticMask[p.Y*w+p.X] = true
			}
		}
	}
}

func (e *Environment) buildOwners() error {
	for i := range e.owner {
		e.owner[i] = 0
	}
	for i, a := range e.dynamic {
		for _, p := range a.Cells() {
			if p.X < 1 || p.Y < 1 || p.X > e.width-2 || p.Y > e.height-2 {
				return fmt.Errorf("%w: dynamic area %d leaves the interior at %v", ErrInvalidArea, i, p)
			}
			idx := p.Y*e.width + p.X
			if e.staticMask[idx] || e.owner[idx] != 0 {
				return fmt.Errorf("%w: dynamic area %d overlaps at %v", ErrInvalidArea, i, p)
			}
			e.owner[idx] = i + 1
		}
	}
	return nil
}

// rebuild recomputes occupancy from border, static and dynamic cells, then inflation
func (e *Environment) rebuild() {
	for i := range e.occupied {
		e.occupied[i] = e.staticMask[i] || e.owner[i] != 0
	}
	e.inflate()
}
