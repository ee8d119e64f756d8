package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/grid"
)

func sampleRun(t *testing.T) Run {
	t.Helper()
	env, err := grid.Generate(grid.GenerateConfig{Width: 12, Height: 10, StaticAreas: 2, DynamicAreas: 1}, 77)
	require.NoError(t, err)

	return Run{
		Agents: []AgentRecord{
			{
				AgentType: "dijkstra", MapIndex: 0, SpawnIndex: 1,
				StartPos: Cell{2, 2}, GoalPos: Cell{4, 4},
				AgentVisited:  []Cell{{2, 2}, {3, 3}, {4, 4}},
				AgentExplored: []Cell{{2, 2}, {3, 3}, {3, 2}},
				PlanningTime:  0.001, PathLength: 2.8284, Reached: true, Ticks: 2,
			},
			{
				AgentType: "astar", MapIndex: 0, SpawnIndex: 1,
				StartPos: Cell{2, 2}, GoalPos: Cell{4, 4},
				AgentVisited:  []Cell{{2, 2}, {3, 3}, {4, 4}},
				AgentExplored: []Cell{{3, 3}},
				Reached:       true, Ticks: 2,
			},
		},
		Maps:   MapSet{0: NewMapRecord(77, env)},
		Config: map[string]any{"experiment_name": "unit", "run_id": "abc"},
	}
}

func TestExport_WritesRunFolder(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	out, err := Export(dir, "unit", sampleRun(t), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "unit-2025-03-04_05-06-07"), out)

	raw, err := os.ReadFile(filepath.Join(out, AgentFile))
	require.NoError(t, err)
	var generic []map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	require.Len(t, generic, 2)
	assert.Equal(t, []any{2.0, 2.0}, generic[0]["start_pos"], "cells encode as [x, y]")
	assert.Contains(t, generic[0], "agent_explored")

	rawMaps, err := os.ReadFile(filepath.Join(out, MapFile))
	require.NoError(t, err)
	assert.Contains(t, string(rawMaps), `"0": {`)

	cfg, err := os.ReadFile(filepath.Join(out, ConfigFile))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(cfg), "run_id: abc"))

	agents, err := LoadAgents(out)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "astar", agents[0].AgentType, "records sorted by agent type within a spawn")

	maps, err := LoadMaps(filepath.Join(out, MapFile))
	require.NoError(t, err)
	assert.Equal(t, int64(77), maps[0].Seed)
}

func TestMapRecord_SnapshotMatchesEnvironment(t *testing.T) {
	env, err := grid.Generate(grid.GenerateConfig{Width: 20, Height: 14, StaticAreas: 4, DynamicAreas: 2}, 9)
	require.NoError(t, err)

	snap, err := NewMapRecord(9, env).Snapshot()
	require.NoError(t, err)
	assert.Equal(t, env.FreeCells(), snap.FreeCells())

	_, err = MapRecord{}.Snapshot()
	require.ErrorIs(t, err, grid.ErrInvalidDimensions)
}

func TestCompareFolders(t *testing.T) {
	dir := t.TempDir()
	run := sampleRun(t)

	a, err := Export(dir, "a", run, time.Now())
	require.NoError(t, err)

	// Explored order and timing are ignored
	shuffled := sampleRun(t)
	shuffled.Agents[0].AgentExplored = []Cell{{3, 2}, {2, 2}, {3, 3}}
	shuffled.Agents[0].PlanningTime = 9
	b, err := Export(dir, "b", shuffled, time.Now())
	require.NoError(t, err)

	cmpAB, err := CompareFolders(a, b)
	require.NoError(t, err)
	assert.True(t, cmpAB.Equal(), cmpAB.AgentDiff)

	// Visited order matters
	reordered := sampleRun(t)
	reordered.Agents[0].AgentVisited = []Cell{{2, 2}, {4, 4}, {3, 3}}
	c, err := Export(dir, "c", reordered, time.Now())
	require.NoError(t, err)

	cmpAC, err := CompareFolders(a, c)
	require.NoError(t, err)
	assert.False(t, cmpAC.AgentsEqual)
	assert.True(t, cmpAC.MapsEqual)
	assert.NotEmpty(t, cmpAC.AgentDiff)

	_, err = CompareFolders(a, filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestPriorTraces(t *testing.T) {
	records := sampleRun(t).Agents
	records = append(records, AgentRecord{StartPos: Cell{1, 1}, GoalPos: Cell{4, 4}, AgentVisited: []Cell{{1, 1}}})

	got := PriorTraces(records, core.Point{X: 2, Y: 2}, core.Point{X: 4, Y: 4})
	require.Len(t, got, 2)
	assert.Equal(t, []core.Point{{X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}}, got[0])

	all, err := LoadPrior(nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}
