package experiment

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/lixenwraith/gridplan/config"
	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/grid"
	"github.com/lixenwraith/gridplan/navigation"
	"github.com/lixenwraith/gridplan/trace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func smallConfig(seed int64, agents ...string) *config.Config {
	cfg := config.Default()
	cfg.Seed = &seed
	cfg.MapsToTest = 2
	cfg.SpawnsPerMap = 3
	cfg.AgentTypes = agents
	cfg.MaxTicks = 400
	cfg.Workers = 3
	cfg.Map = config.MapConfig{GridWidth: 16, GridHeight: 12, NumStaticAreas: 2}
	return cfg
}

func TestCollector_Finalize(t *testing.T) {
	c := NewCollector()
	c.Collect(MetricBundle{MetricReached: 1, MetricPathLength: 4})
	c.Collect(MetricBundle{MetricReached: 0, MetricPathLength: 8})
	c.Collect(MetricBundle{MetricReached: 1, MetricPathLength: 6})

	got := c.Finalize()
	assert.Equal(t, 3.0, got[MetricTasks])
	assert.InDelta(t, 2.0/3.0, got[MetricSuccessRate], 1e-12)
	assert.Equal(t, 6.0, got["avg_"+MetricPathLength])
	assert.Equal(t, 4.0, got["min_"+MetricPathLength])
	assert.Equal(t, 8.0, got["max_"+MetricPathLength])

	c.Reset()
	c.Collect(MetricBundle{MetricPathLength: 1})
	got = c.Finalize()
	assert.Equal(t, 1.0, got[MetricTasks])
	assert.Equal(t, 0.0, got[MetricSuccessRate], "no reached key means no successes")
}

func TestCollector_NegativeOnlyMetric(t *testing.T) {
	c := NewCollector()
	c.Collect(MetricBundle{"slack": -3})
	c.Collect(MetricBundle{"slack": -1})

	got := c.Finalize()
	assert.Equal(t, -1.0, got["max_slack"])
	assert.Equal(t, -3.0, got["min_slack"])

	c.Reset()
	c.Collect(MetricBundle{"slack": -7})
	assert.Equal(t, -7.0, c.Finalize()["max_slack"], "reset forgets the previous max")
}

func TestSpawnPairs_UniqueAndReachable(t *testing.T) {
	env, err := grid.Generate(grid.GenerateConfig{Width: 16, Height: 12, StaticAreas: 3}, 5)
	require.NoError(t, err)
	snap := env.Snapshot()

	pairs, err := SpawnPairs(snap, 6, 5)
	require.NoError(t, err)
	require.Len(t, pairs, 6)

	seen := map[SpawnPair]bool{}
	field := navigation.NewCostField(snap.Width(), snap.Height())
	for _, p := range pairs {
		assert.False(t, seen[p], "duplicate pair %v", p)
		seen[p] = true
		assert.NotEqual(t, p.Start, p.Goal)
		field.Compute(p.Goal, snap)
		assert.False(t, math.IsInf(field.Distance(p.Start), 1), "unreachable pair %v", p)
	}

	again, err := SpawnPairs(snap, 6, 5)
	require.NoError(t, err)
	assert.Equal(t, pairs, again, "same seed, same pairs")
}

func TestSpawnPairs_NotEnough(t *testing.T) {
	open, err := grid.NewOpenSnapshot(3, 1)
	require.NoError(t, err)
	split := open.WithBlocked(core.Point{X: 1, Y: 0})

	_, err = SpawnPairs(split, 1, 1)
	require.ErrorIs(t, err, ErrNoSpawnPairs)

	_, err = SpawnPairs(split.WithBlocked(core.Point{X: 0, Y: 0}), 1, 1)
	require.ErrorIs(t, err, ErrNoSpawnPairs)
}

func TestCreateTasks(t *testing.T) {
	cfg := smallConfig(100, "astar", "dijkstra")

	tasks, maps, err := CreateTasks(cfg, nil, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2*3*2)
	require.Len(t, maps, 2)
	assert.Equal(t, int64(100), maps[0].Seed)
	assert.Equal(t, int64(101), maps[1].Seed)

	envs := map[*grid.Environment]bool{}
	for _, task := range tasks {
		assert.False(t, envs[task.Env], "tasks must not share environments")
		envs[task.Env] = true
		assert.Equal(t, maps[task.MapIndex].Seed, task.MapSeed)
		assert.Equal(t, task.MapSeed+int64(task.SpawnIndex), task.Options.Seed)
	}

	cfg.Seed = nil
	_, _, err = CreateTasks(cfg, nil, nil)
	require.ErrorIs(t, err, ErrSeedUnset)
}

func TestCreateTasks_ReplayUsesPriorTrace(t *testing.T) {
	cfg := smallConfig(7, "dijkstra")
	cfg.MapsToTest = 1
	tasks, _, err := CreateTasks(cfg, nil, nil)
	require.NoError(t, err)

	first := tasks[0]
	prior := []trace.AgentRecord{{
		StartPos:     trace.CellOf(first.Start),
		GoalPos:      trace.CellOf(first.Goal),
		AgentVisited: []trace.Cell{trace.CellOf(first.Start), trace.CellOf(first.Goal)},
	}}

	cfg.AgentTypes = []string{"replay", "diverse_dijkstra"}
	cfg.PreviousTraces = []string{"unused"}
	tasks, _, err = CreateTasks(cfg, prior, nil)
	require.NoError(t, err)

	for _, task := range tasks {
		if task.SpawnIndex != 0 {
			assert.Empty(t, task.Options.PriorTraces)
			continue
		}
		require.Len(t, task.Options.PriorTraces, 1)
		if task.Variant.Kind == navigation.KindReplay {
			assert.Equal(t, []core.Point{first.Start, first.Goal}, task.Options.ReplayTrace)
		}
	}
}

func TestRunner_RunsEveryTask(t *testing.T) {
	cfg := smallConfig(42, "astar", "dijkstra", "dstar_lite")
	tasks, _, err := CreateTasks(cfg, nil, nil)
	require.NoError(t, err)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	r, err := NewRunner(
		WithLogger(zaptest.NewLogger(t)),
		WithTracerProvider(tp),
		WithWorkers(cfg.Workers),
		WithMaxTicks(cfg.MaxTicks),
	)
	require.NoError(t, err)

	out, err := r.Run(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, out.Results, len(tasks))

	for i := 1; i < len(out.Results); i++ {
		a, b := out.Results[i-1], out.Results[i]
		assert.True(t, a.MapIndex < b.MapIndex ||
			a.MapIndex == b.MapIndex && (a.SpawnIndex < b.SpawnIndex ||
				a.SpawnIndex == b.SpawnIndex && a.Kind < b.Kind), "results out of order at %d", i)
	}

	// Static maps with reachable pairs: every complete planner arrives
	for _, res := range out.Results {
		assert.True(t, res.Snapshot.Reached, "%s map %d spawn %d", res.Kind, res.MapIndex, res.SpawnIndex)
		assert.Equal(t, 0, core.CountInvalidMoves(res.Snapshot.Visited))
	}

	spans := sr.Ended()
	require.Len(t, spans, len(tasks))
	assert.Equal(t, "gridplan.task", spans[0].Name())

	rows := out.Summary.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, navigation.KindAStar, rows[0].Kind)
	for _, row := range rows {
		assert.Equal(t, 1.0, row.SuccessRate())
		assert.Equal(t, 6.0, row.Metrics[MetricTasks])
	}

	var buf bytes.Buffer
	require.NoError(t, out.Summary.WriteTable(&buf))
	assert.Contains(t, buf.String(), "dstar_lite")

	records := out.Records()
	require.Len(t, records, len(tasks))
	assert.Equal(t, string(out.Results[0].Kind), records[0].AgentType)
}

func TestRunner_Deterministic(t *testing.T) {
	run := func() []trace.AgentRecord {
		cfg := smallConfig(9, "astar", "random_walk")
		cfg.Map.NumDynamicAreas = 2
		tasks, _, err := CreateTasks(cfg, nil, nil)
		require.NoError(t, err)
		r, err := NewRunner(WithWorkers(4), WithMaxTicks(200))
		require.NoError(t, err)
		out, err := r.Run(context.Background(), tasks)
		require.NoError(t, err)
		records := out.Records()
		for i := range records {
			records[i].PlanningTime = 0
		}
		return records
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	cfg := smallConfig(3, "astar")
	tasks, _, err := CreateTasks(cfg, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewRunner()
	require.NoError(t, err)
	_, err = r.Run(ctx, tasks)
	require.ErrorIs(t, err, context.Canceled)
}
