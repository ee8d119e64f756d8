package navigation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/parameter"
)

// ErrUnknownVariant is returned by Lookup for names outside the table
var ErrUnknownVariant = errors.New("unknown planner variant")

// Kind names a planner variant
type Kind string

const (
	KindAStar           Kind = "astar"
	KindDijkstra        Kind = "dijkstra"
	KindDiverseDijkstra Kind = "diverse_dijkstra"
	KindDStarLite       Kind = "dstar_lite"
	KindRandomWalk      Kind = "random_walk"
	KindReplay          Kind = "replay"
)

// Completion selects when a run counts as finished
type Completion int

const (
	// CompleteAtGoal finishes when the agent stands on the goal
	CompleteAtGoal Completion = iota
	// CompleteWhenExhausted also finishes once the plan is consumed and no new plan is produced
	CompleteWhenExhausted
)

// Options carries everything any variant constructor may need
type Options struct {
	Epsilon         float64
	MaxExpansions   int
	Lookahead       int
	Diverse         DiverseOptions
	PriorTraces     [][]core.Point // Consumed by diverse_dijkstra
	RandomWalkSteps int
	RandomWalkBias  float64
	Seed            int64        // Consumed by random_walk
	ReplayTrace     []core.Point // Consumed by replay, starts at the start cell
}

// DefaultOptions returns options populated from the parameter package
func DefaultOptions() Options {
	return Options{
		Epsilon:         parameter.NavHeuristicEpsilon,
		MaxExpansions:   parameter.NavMaxExpansions,
		Lookahead:       parameter.NavLookaheadSteps,
		Diverse:         DefaultDiverseOptions(),
		RandomWalkSteps: parameter.NavRandomWalkSteps,
		RandomWalkBias:  parameter.NavRandomWalkBias,
	}
}

// Variant binds a display name, constructor, replan policy and completion rule to a Kind
type Variant struct {
	Kind        Kind
	DisplayName string
	Completion  Completion
	New         func(opts Options) Planner
	Policy      func(opts Options) ReplanPolicy
}

func lookahead(opts Options) ReplanPolicy { return LookaheadPolicy{Steps: opts.Lookahead} }

func once(Options) ReplanPolicy { return OncePolicy{} }

var variants = map[Kind]Variant{
	KindAStar: {
		Kind:        KindAStar,
		DisplayName: "A*",
		New:         func(o Options) Planner { return NewAStar(o.Epsilon) },
		Policy:      lookahead,
	},
	KindDijkstra: {
		Kind:        KindDijkstra,
		DisplayName: "Dijkstra",
		New:         func(o Options) Planner { return NewDijkstra() },
		Policy:      lookahead,
	},
	KindDiverseDijkstra: {
		Kind:        KindDiverseDijkstra,
		DisplayName: "Diverse Dijkstra",
		New:         func(o Options) Planner { return NewDiverseDijkstra(o.Diverse, o.PriorTraces) },
		Policy:      lookahead,
	},
	KindDStarLite: {
		Kind:        KindDStarLite,
		DisplayName: "D* Lite",
		New:         func(o Options) Planner { return NewDStarLite(o.Epsilon, o.MaxExpansions) },
		Policy:      lookahead,
	},
	KindRandomWalk: {
		Kind:        KindRandomWalk,
		DisplayName: "Random Walk",
		Completion:  CompleteWhenExhausted,
		New:         func(o Options) Planner { return NewRandomWalk(o.Seed, o.RandomWalkSteps, o.RandomWalkBias) },
		Policy:      lookahead,
	},
	KindReplay: {
		Kind:        KindReplay,
		DisplayName: "Replay",
		Completion:  CompleteWhenExhausted,
		New:         func(o Options) Planner { return NewReplay(o.ReplayTrace) },
		Policy:      once,
	},
}

// Older names still found in saved configs
var aliases = map[string]Kind{
	"a_star":      KindAStar,
	"dstar":       KindDStarLite,
	"monte_carlo": KindRandomWalk,
}

// Lookup resolves a variant by kind or alias, case-insensitively
func Lookup(name string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if k, ok := aliases[key]; ok {
		key = string(k)
	}
	v, ok := variants[Kind(key)]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownVariant, name, Kinds())
	}
	return v, nil
}

// Kinds returns every registered kind in sorted order
func Kinds() []Kind {
	out := make([]Kind, 0, len(variants))
	for k := range variants {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
