// Package experiment builds planner tasks over generated maps and runs them in parallel
package experiment

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridplan/config"
	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/grid"
	"github.com/lixenwraith/gridplan/navigation"
	"github.com/lixenwraith/gridplan/parameter"
	"github.com/lixenwraith/gridplan/trace"
)

var (
	// ErrSeedUnset is returned when tasks are built before the base seed is resolved
	ErrSeedUnset = errors.New("experiment: seed not resolved")

	// ErrNoSpawnPairs is returned when a map cannot supply enough reachable spawn pairs
	ErrNoSpawnPairs = errors.New("experiment: not enough reachable spawn pairs")
)

// spawnSalt decorrelates spawn selection from map generation on the same seed
const spawnSalt int64 = 0x5eed

// SpawnPair is one ordered (start, goal) pair on a map
type SpawnPair struct {
	Start, Goal core.Point
}

// Task is one agent type on one spawn pair of one map; Env is owned by the task
type Task struct {
	MapIndex   int
	SpawnIndex int
	MapSeed    int64
	Start      core.Point
	Goal       core.Point
	Variant    navigation.Variant
	Options    navigation.Options
	Env        *grid.Environment
}

// CreateTasks generates maps_to_test maps and expands them into maps × spawns × agent types
// Map i uses seed base+i. Every task receives its own deep copy of the map.
func CreateTasks(cfg *config.Config, prior []trace.AgentRecord, log *zap.Logger) ([]Task, trace.MapSet, error) {
	if cfg.Seed == nil {
		return nil, nil, ErrSeedUnset
	}
	if log == nil {
		log = zap.NewNop()
	}
	variants, err := cfg.Variants()
	if err != nil {
		return nil, nil, err
	}

	base := *cfg.Seed
	maps := make(trace.MapSet, cfg.MapsToTest)
	tasks := make([]Task, 0, cfg.MapsToTest*cfg.SpawnsPerMap*len(variants))

	for i := 0; i < cfg.MapsToTest; i++ {
		seed := base + int64(i)
		env, err := grid.Generate(cfg.GenerateConfig(), seed)
		if err != nil {
			return nil, nil, fmt.Errorf("map %d (seed %d): %w", i, seed, err)
		}
		maps[i] = trace.NewMapRecord(seed, env)

		pairs, err := SpawnPairs(env.Snapshot(), cfg.SpawnsPerMap, seed)
		if err != nil {
			return nil, nil, fmt.Errorf("map %d (seed %d): %w", i, seed, err)
		}
		log.Debug("map generated",
			zap.Int("map", i),
			zap.Int64("seed", seed),
			zap.Int("free_cells", len(env.FreeCells())),
			zap.Int("spawn_pairs", len(pairs)),
		)

		for j, pair := range pairs {
			priors := trace.PriorTraces(prior, pair.Start, pair.Goal)
			for _, v := range variants {
				o := cfg.NavigationOptions()
				o.Seed = seed + int64(j)
				o.PriorTraces = priors
				if v.Kind == navigation.KindReplay && len(priors) > 0 {
					o.ReplayTrace = priors[0]
				}
				tasks = append(tasks, Task{
					MapIndex:   i,
					SpawnIndex: j,
					MapSeed:    seed,
					Start:      pair.Start,
					Goal:       pair.Goal,
					Variant:    v,
					Options:    o,
					Env:        env.Clone(),
				})
			}
		}
	}
	return tasks, maps, nil
}

// SpawnPairs draws n unique ordered pairs of free cells whose goal is reachable on m
func SpawnPairs(m *grid.Snapshot, n int, seed int64) ([]SpawnPair, error) {
	free := m.FreeCells()
	if len(free) < 2 {
		return nil, fmt.Errorf("%w: %d free cells", ErrNoSpawnPairs, len(free))
	}

	rng := rand.New(rand.NewSource(seed ^ spawnSalt))
	field := navigation.NewCostField(m.Width(), m.Height())
	seen := make(map[SpawnPair]bool, n)
	pairs := make([]SpawnPair, 0, n)

	for attempt := 0; len(pairs) < n && attempt < n*parameter.ExpSpawnPairAttempts; attempt++ {
		pair := SpawnPair{Start: free[rng.Intn(len(free))], Goal: free[rng.Intn(len(free))]}
		if pair.Start == pair.Goal || seen[pair] {
			continue
		}
		seen[pair] = true

		if !field.Valid || field.Target != pair.Goal {
			field.Compute(pair.Goal, m)
		}
		if math.IsInf(field.Distance(pair.Start), 1) {
			continue
		}
		pairs = append(pairs, pair)
	}

	if len(pairs) < n {
		return nil, fmt.Errorf("%w: found %d of %d", ErrNoSpawnPairs, len(pairs), n)
	}
	return pairs, nil
}
