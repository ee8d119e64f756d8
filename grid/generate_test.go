package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SameSeedSameMap(t *testing.T) {
	cfg := DefaultGenerateConfig()

	a, err := Generate(cfg, 1234)
	require.NoError(t, err)
	b, err := Generate(cfg, 1234)
	require.NoError(t, err)

	assert.Equal(t, a.Grid(), b.Grid())
	assert.Equal(t, a.Erosion(), b.Erosion())
	require.Len(t, a.DynamicAreas(), cfg.DynamicAreas)
	for i := range a.DynamicAreas() {
		assert.Equal(t, a.DynamicAreas()[i].Velocity, b.DynamicAreas()[i].Velocity)
	}

	c, err := Generate(cfg, 1235)
	require.NoError(t, err)
	assert.NotEqual(t, a.Grid(), c.Grid())
}

func TestGenerate_AreasDoNotOverlap(t *testing.T) {
	env, err := Generate(GenerateConfig{Width: 40, Height: 30, StaticAreas: 12, DynamicAreas: 6}, 99)
	require.NoError(t, err)

	seen := make(map[[2]int]bool)
	areas := append(append([]*ObstacleArea{}, env.StaticAreas()...), env.DynamicAreas()...)
	for _, a := range areas {
		for _, p := range a.Cells() {
			key := [2]int{p.X, p.Y}
			require.False(t, seen[key], "cell %v covered twice", p)
			seen[key] = true
			require.True(t, p.X >= 1 && p.Y >= 1 && p.X <= 38 && p.Y <= 28, "cell %v outside interior", p)
		}
	}
	for _, a := range env.DynamicAreas() {
		assert.True(t, a.Dynamic())
		assert.Contains(t, []int{-1, 1}, a.Velocity.X)
		assert.Contains(t, []int{-1, 1}, a.Velocity.Y)
	}
}

func TestGenerate_CapacityError(t *testing.T) {
	_, err := Generate(GenerateConfig{Width: 6, Height: 6, StaticAreas: 40}, 1)
	require.ErrorIs(t, err, ErrCapacity)

	_, err = Generate(GenerateConfig{Width: 2, Height: 10}, 1)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestRandomShape_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		shape := RandomShape(rng)
		require.NotEmpty(t, shape)
		w, h := shapeExtent(shape)
		assert.LessOrEqual(t, w, 7)
		assert.LessOrEqual(t, h, 7)
	}
	assert.Len(t, Block(3, 2), 6)
	assert.Len(t, LShape(), 3)
	assert.Equal(t, 4, len(VerticalLine(4)))
}
