package grid

import (
	"fmt"

	"github.com/lixenwraith/gridplan/core"
)

// Snapshot is an immutable occupancy/inflation view with no obstacle dynamics
// Used for recorded maps and for planning against a frozen environment
type Snapshot struct {
	layer
}

// NewSnapshot builds a snapshot from row-major masks; inflated may be nil
// No border is added and inflation is taken as given
func NewSnapshot(occupied [][]bool, inflated [][]bool) (*Snapshot, error) {
	h := len(occupied)
	if h == 0 || len(occupied[0]) == 0 {
		return nil, fmt.Errorf("%w: empty occupancy", ErrInvalidDimensions)
	}
	w := len(occupied[0])
	if inflated != nil && len(inflated) != h {
		return nil, fmt.Errorf("%w: inflation has %d rows, occupancy %d", ErrInvalidDimensions, len(inflated), h)
	}

	s := &Snapshot{layer: newLayer(w, h)}
	for y := 0; y < h; y++ {
		if len(occupied[y]) != w {
			return nil, fmt.Errorf("%w: ragged occupancy row %d", ErrInvalidDimensions, y)
		}
		if inflated != nil && len(inflated[y]) != w {
			return nil, fmt.Errorf("%w: ragged inflation row %d", ErrInvalidDimensions, y)
		}
		for x := 0; x < w; x++ {
			s.occupied[y*w+x] = occupied[y][x]
			if inflated != nil {
				s.inflated[y*w+x] = inflated[y][x]
			}
		}
	}
	return s, nil
}

// NewOpenSnapshot returns a width×height snapshot with every cell traversable
func NewOpenSnapshot(width, height int) (*Snapshot, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Snapshot{layer: newLayer(width, height)}, nil
}

// WithBlocked returns a copy with the given cells occupied, inflation unchanged
func (s *Snapshot) WithBlocked(cells ...core.Point) *Snapshot {
	return s.with(cells, true)
}

// WithCleared returns a copy with the given cells freed, inflation unchanged
func (s *Snapshot) WithCleared(cells ...core.Point) *Snapshot {
	return s.with(cells, false)
}

func (s *Snapshot) with(cells []core.Point, occupied bool) *Snapshot {
	c := &Snapshot{}
	c.copyFrom(&s.layer)
	for _, p := range cells {
		if c.InBounds(p) {
			c.occupied[p.Y*c.width+p.X] = occupied
		}
	}
	return c
}
