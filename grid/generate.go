package grid

import (
	"fmt"
	"math/rand"

	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/parameter"
)

// GenerateConfig sizes a random map
type GenerateConfig struct {
	Width, Height int
	StaticAreas   int
	DynamicAreas  int
}

// DefaultGenerateConfig returns the stock map size and area counts
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Width:        parameter.GridDefaultWidth,
		Height:       parameter.GridDefaultHeight,
		StaticAreas:  parameter.GridDefaultStaticAreas,
		DynamicAreas: parameter.GridDefaultDynamicAreas,
	}
}

// Generate builds a seeded random map
// Shapes, placement and initial velocities are the only random inputs; the
// same seed and config always yield the same environment. Every area is placed
// inside the interior without overlapping earlier areas, otherwise ErrCapacity.
func Generate(cfg GenerateConfig, seed int64) (*Environment, error) {
	if cfg.Width < 3 || cfg.Height < 3 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	if cfg.StaticAreas < 0 || cfg.DynamicAreas < 0 {
		return nil, fmt.Errorf("%w: negative area count", ErrInvalidDimensions)
	}

	rng := rand.New(rand.NewSource(seed))
	taken := make([]bool, cfg.Width*cfg.Height)

	static := make([]*ObstacleArea, 0, cfg.StaticAreas)
	for i := 0; i < cfg.StaticAreas; i++ {
		shape := RandomShape(rng)
		offset, err := placeShape(rng, shape, cfg.Width, cfg.Height, taken)
		if err != nil {
			return nil, fmt.Errorf("static area %d: %w", i, err)
		}
		static = append(static, NewObstacleArea(shape, offset, core.Point{}))
	}

	dynamic := make([]*ObstacleArea, 0, cfg.DynamicAreas)
	for i := 0; i < cfg.DynamicAreas; i++ {
		shape := RandomShape(rng)
		offset, err := placeShape(rng, shape, cfg.Width, cfg.Height, taken)
		if err != nil {
			return nil, fmt.Errorf("dynamic area %d: %w", i, err)
		}
		velocity := core.Point{X: randomSign(rng), Y: randomSign(rng)}
		dynamic = append(dynamic, NewObstacleArea(shape, offset, velocity))
	}

	return New(cfg.Width, cfg.Height, static, dynamic)
}

// placeShape picks a random interior offset where shape fits on untaken cells and marks them
func placeShape(rng *rand.Rand, shape []core.Point, w, h int, taken []bool) (core.Point, error) {
	sw, sh := shapeExtent(shape)
	// Interior spans [1, w-2]; the shape's far edge must stay inside it
	maxX := w - 2 - (sw - 1)
	maxY := h - 2 - (sh - 1)
	if maxX < 1 || maxY < 1 {
		return core.Point{}, fmt.Errorf("%w: %dx%d shape does not fit a %dx%d grid", ErrCapacity, sw, sh, w, h)
	}

	for attempt := 0; attempt < parameter.GridPlacementAttempts; attempt++ {
		offset := core.Point{X: 1 + rng.Intn(maxX), Y: 1 + rng.Intn(maxY)}
		free := true
		for _, c := range shape {
			p := c.Add(offset)
			if taken[p.Y*w+p.X] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for _, c := range shape {
			p := c.Add(offset)
			taken[p.Y*w+p.X] = true
		}
		return offset, nil
	}
	return core.Point{}, fmt.Errorf("%w: no free placement after %d attempts", ErrCapacity, parameter.GridPlacementAttempts)
}

func randomSign(rng *rand.Rand) int {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}
