package viewer

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gridplan/agent"
	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/grid"
	"github.com/lixenwraith/gridplan/navigation"
)

type countingChime struct {
	played chan struct{}
}

func (c *countingChime) Play() {
	select {
	case c.played <- struct{}{}:
	default:
	}
}

func setup(t *testing.T) (tcell.SimulationScreen, *grid.Environment, *agent.Agent) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 20)
	t.Cleanup(screen.Fini)

	env, err := grid.New(10, 8, nil, nil)
	require.NoError(t, err)

	v, err := navigation.Lookup("astar")
	require.NoError(t, err)
	a, err := agent.FromVariant(v, navigation.DefaultOptions(), core.Point{X: 2, Y: 2}, core.Point{X: 5, Y: 5}, env)
	require.NoError(t, err)
	return screen, env, a
}

func runeAt(s tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestDraw_Layers(t *testing.T) {
	screen, env, a := setup(t)
	v := New(screen, env, a, WithTitle("A*"))

	v.Draw()
	assert.Equal(t, GlyphOccupied, runeAt(screen, 0, 0))
	assert.Equal(t, GlyphInflated, runeAt(screen, 1, 1))
	assert.Equal(t, GlyphAgent, runeAt(screen, 2, 2), "agent drawn over start")
	assert.Equal(t, GlyphGoal, runeAt(screen, 5, 5))
	assert.Equal(t, 'A', runeAt(screen, 0, env.Height()+1))

	v.Step()
	v.Draw()
	assert.Equal(t, GlyphStart, runeAt(screen, 2, 2))
	assert.Equal(t, GlyphAgent, runeAt(screen, 3, 3))
	assert.Equal(t, GlyphPlan, runeAt(screen, 4, 4))
}

func TestHandleEvent_Keys(t *testing.T) {
	screen, env, a := setup(t)
	v := New(screen, env, a)

	assert.True(t, v.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone)))
	assert.True(t, v.Paused())

	assert.True(t, v.handleEvent(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone)))
	assert.Equal(t, core.Point{X: 3, Y: 3}, a.Position(), "single step while paused")
	assert.True(t, v.Paused())

	assert.False(t, v.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, v.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestRun_ChimesOnceAndQuits(t *testing.T) {
	screen, env, a := setup(t)
	chime := &countingChime{played: make(chan struct{}, 2)}
	v := New(screen, env, a, WithInterval(time.Millisecond), WithChime(chime))

	errc := make(chan error, 1)
	go func() { errc <- v.Run(context.Background()) }()

	select {
	case <-chime.played:
	case <-time.After(5 * time.Second):
		t.Fatal("goal chime never played")
	}
	assert.True(t, a.AtGoal())

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("viewer did not quit")
	}
	assert.Empty(t, chime.played, "chime plays once")
}

func TestRun_ContextCancel(t *testing.T) {
	screen, env, a := setup(t)
	v := New(screen, env, a, WithInterval(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, v.Run(ctx), context.DeadlineExceeded)
}

func TestToneGenerator_Bounded(t *testing.T) {
	s := beep.Take(sampleRate.N(10*time.Millisecond), NewToneGenerator(sampleRate, 440))
	buf := make([][2]float64, 128)
	total := 0
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			assert.LessOrEqual(t, smp[0], 0.2)
			assert.GreaterOrEqual(t, smp[0], -0.2)
		}
		total += n
		if !ok {
			break
		}
	}
	assert.Equal(t, sampleRate.N(10*time.Millisecond), total)
}
