// Package viewer renders one agent moving through an environment on a terminal
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridplan/agent"
	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/grid"
)

// Glyphs
const (
	GlyphOccupied = '█'
	GlyphInflated = '░'
	GlyphExplored = '·'
	GlyphVisited  = '•'
	GlyphPlan     = '+'
	GlyphStart    = 'S'
	GlyphGoal     = 'G'
	GlyphAgent    = '@'
)

const defaultInterval = 100 * time.Millisecond

var (
	styleDefault  = tcell.StyleDefault
	styleOccupied = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInflated = tcell.StyleDefault.Foreground(tcell.NewRGBColor(90, 90, 90))
	styleExplored = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleVisited  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	stylePlan     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStart    = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleGoal     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleAgent    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// Option configures a Viewer
type Option func(*Viewer)

// WithInterval sets the time between ticks
func WithInterval(d time.Duration) Option {
	return func(v *Viewer) {
		if d > 0 {
			v.interval = d
		}
	}
}

// WithChime plays c when the goal is reached
func WithChime(c Chime) Option {
	return func(v *Viewer) { v.chime = c }
}

// WithTitle sets the status line label
func WithTitle(title string) Option {
	return func(v *Viewer) { v.title = title }
}

func WithLogger(l *zap.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.log = l
		}
	}
}

// Viewer owns the tick loop for a single environment and agent
type Viewer struct {
	screen tcell.Screen
	env    *grid.Environment
	agent  *agent.Agent

	interval time.Duration
	chime    Chime
	title    string
	log      *zap.Logger

	paused  bool
	chimed  bool
	stepped int
}

// New creates a viewer over an initialized screen; the caller owns screen.Fini
func New(screen tcell.Screen, env *grid.Environment, a *agent.Agent, opts ...Option) *Viewer {
	v := &Viewer{
		screen:   screen,
		env:      env,
		agent:    a,
		interval: defaultInterval,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Paused reports whether ticking is suspended
func (v *Viewer) Paused() bool { return v.paused }

// Step advances the environment then the agent by one tick
func (v *Viewer) Step() {
	if v.agent.HasReachedGoal() {
		return
	}
	v.env.Step(v.agent.Position())
	v.agent.Step(v.env)
	v.stepped++

	if v.agent.AtGoal() && !v.chimed {
		v.chimed = true
		v.log.Info("goal reached", zap.Int("ticks", v.stepped))
		if v.chime != nil {
			v.chime.Play()
		}
	}
}

// Draw renders the current state without showing it
func (v *Viewer) Draw() {
	v.screen.Clear()
	snap := v.agent.Snapshot()

	for y := 0; y < v.env.Height(); y++ {
		for x := 0; x < v.env.Width(); x++ {
			p := core.Point{X: x, Y: y}
			switch {
			case v.env.Occupied(p):
				v.set(p, GlyphOccupied, styleOccupied)
			case v.env.Inflated(p):
				v.set(p, GlyphInflated, styleInflated)
			}
		}
	}

	// Later layers overwrite earlier ones
	for _, p := range snap.Explored {
		v.set(p, GlyphExplored, styleExplored)
	}
	for _, p := range snap.Visited {
		v.set(p, GlyphVisited, styleVisited)
	}
	for _, p := range v.agent.Plan() {
		v.set(p, GlyphPlan, stylePlan)
	}
	v.set(snap.Start, GlyphStart, styleStart)
	v.set(snap.Goal, GlyphGoal, styleGoal)
	v.set(snap.Position, GlyphAgent, styleAgent)

	state := "running"
	switch {
	case snap.Reached:
		state = "reached"
	case snap.Done:
		state = "exhausted"
	case v.paused:
		state = "paused"
	}
	status := fmt.Sprintf("%s  tick %d  replans %d  path %.2f  [%s]  q quit  p pause  s step",
		v.title, snap.Ticks, snap.Replans, snap.PathLength, state)
	v.text(0, v.env.Height()+1, status)
}

func (v *Viewer) set(p core.Point, r rune, style tcell.Style) {
	v.screen.SetContent(p.X, p.Y, r, nil, style)
}

func (v *Viewer) text(x, y int, s string) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, styleDefault)
		x++
	}
}

// handleEvent applies one input event and reports whether to keep running
func (v *Viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case 'p':
				v.paused = !v.paused
			case 's':
				v.paused = true
				v.Step()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Run ticks and draws until the user quits or ctx is done
func (v *Viewer) Run(ctx context.Context) error {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 16)
	Go(v.screen, func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return // Screen finalized
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	})

	v.Draw()
	v.screen.Show()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if !v.handleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			if !v.paused {
				v.Step()
			}
		}
		v.Draw()
		v.screen.Show()
	}
}
