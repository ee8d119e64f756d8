// Package agent drives a single planner through an environment one cell per tick
package agent

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/navigation"
)

var (
	// ErrDegenerateSpawn is returned when start and goal coincide
	ErrDegenerateSpawn = errors.New("start equals goal")
	// ErrOutOfBounds is returned when start or goal lies outside the map
	ErrOutOfBounds = errors.New("spawn cell out of bounds")
)

// Option configures an Agent
type Option func(*Agent)

// WithLogger attaches a logger for replan events at debug level
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.log = l
		}
	}
}

// WithCompletion sets when the agent counts as finished
func WithCompletion(c navigation.Completion) Option {
	return func(a *Agent) { a.completion = c }
}

// Agent couples a planner with a replan policy and records the trajectory
type Agent struct {
	start, goal core.Point
	pos         core.Point

	planner    navigation.Planner
	policy     navigation.ReplanPolicy
	completion navigation.Completion

	plan     []core.Point
	planned  bool
	visited  []core.Point // Always begins with start
	explored []core.Point // Cells expanded by the most recent plan

	planningTime time.Duration
	replans      int
	ticks        int

	log *zap.Logger
}

// New validates the spawn pair against m and returns an agent standing on start
func New(start, goal core.Point, m navigation.Map, planner navigation.Planner, policy navigation.ReplanPolicy, opts ...Option) (*Agent, error) {
	if !m.InBounds(start) {
		return nil, fmt.Errorf("%w: start %v", ErrOutOfBounds, start)
	}
	if !m.InBounds(goal) {
		return nil, fmt.Errorf("%w: goal %v", ErrOutOfBounds, goal)
	}
	if start == goal {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateSpawn, start)
	}

	a := &Agent{
		start:   start,
		goal:    goal,
		planner: planner,
		policy:  policy,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Reset()
	return a, nil
}

// FromVariant builds the planner and policy registered for v and wraps them in an agent
func FromVariant(v navigation.Variant, o navigation.Options, start, goal core.Point, m navigation.Map, opts ...Option) (*Agent, error) {
	opts = append([]Option{WithCompletion(v.Completion)}, opts...)
	return New(start, goal, m, v.New(o), v.Policy(o), opts...)
}

// Step advances the agent by at most one cell and returns its position
// Planning happens first when the policy asks for it
func (a *Agent) Step(m navigation.Map) core.Point {
	if a.HasReachedGoal() {
		return a.pos
	}
	a.ticks++

	if a.policy.ShouldReplan(a.plan, a.planned, m) {
		begin := time.Now()
		plan := a.planner.Plan(a.pos, a.goal, m)
		elapsed := time.Since(begin)

		a.plan = plan
		a.planned = true
		a.replans++
		a.planningTime += elapsed
		a.explored = a.planner.Explored()

		a.log.Debug("replanned",
			zap.Int("tick", a.ticks),
			zap.Int("x", a.pos.X),
			zap.Int("y", a.pos.Y),
			zap.Int("plan_len", len(plan)),
			zap.Int("explored", len(a.explored)),
			zap.Duration("elapsed", elapsed),
		)
	}

	if len(a.plan) > 0 {
		a.pos = a.plan[0]
		a.plan = a.plan[1:]
		a.visited = append(a.visited, a.pos)
	}
	return a.pos
}

// HasReachedGoal reports completion: standing on the goal, or for exhaustive
// variants having consumed a plan with nothing left
func (a *Agent) HasReachedGoal() bool {
	if a.pos == a.goal {
		return true
	}
	return a.completion == navigation.CompleteWhenExhausted && a.planned && len(a.plan) == 0
}

// AtGoal reports whether the agent stands on the goal cell
func (a *Agent) AtGoal() bool { return a.pos == a.goal }

// Plan returns a copy of the remaining plan
func (a *Agent) Plan() []core.Point { return append([]core.Point(nil), a.plan...) }

func (a *Agent) Position() core.Point { return a.pos }

func (a *Agent) Start() core.Point { return a.start }

func (a *Agent) Goal() core.Point { return a.goal }

// Reset returns the agent to start and clears planner state
func (a *Agent) Reset() {
	a.pos = a.start
	a.plan = nil
	a.planned = false
	a.visited = []core.Point{a.start}
	a.explored = nil
	a.planningTime = 0
	a.replans = 0
	a.ticks = 0
	a.planner.Reset()
}

// Snapshot is a detached copy of the agent's recorded state
type Snapshot struct {
	Start, Goal         core.Point
	Position            core.Point
	Visited             []core.Point
	Explored            []core.Point
	PlanningTimeSeconds float64
	PathLength          float64
	Replans             int
	Ticks               int
	Reached             bool // Standing on the goal
	Done                bool // HasReachedGoal, includes exhausted plans
}

// Snapshot copies out the trajectory and diagnostics
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		Start:               a.start,
		Goal:                a.goal,
		Position:            a.pos,
		Visited:             append([]core.Point(nil), a.visited...),
		Explored:            append([]core.Point(nil), a.explored...),
		PlanningTimeSeconds: a.planningTime.Seconds(),
		PathLength:          core.PathLength(a.visited),
		Replans:             a.replans,
		Ticks:               a.ticks,
		Reached:             a.AtGoal(),
		Done:                a.HasReachedGoal(),
	}
}
