package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gridplan/config"
	"github.com/lixenwraith/gridplan/trace"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, outDir string) string {
	t.Helper()
	seed := int64(11)
	cfg := config.Default()
	cfg.ExperimentName = "cli"
	cfg.Seed = &seed
	cfg.OutputFolder = outDir
	cfg.RecordTrace = true
	cfg.SpawnsPerMap = 2
	cfg.MaxTicks = 300
	cfg.AgentTypes = []string{"astar", "dijkstra"}
	cfg.Map = config.MapConfig{GridWidth: 14, GridHeight: 10, NumStaticAreas: 2, NumDynamicAreas: 1}

	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, cfg.Save(path))
	return path
}

func onlyRun(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return filepath.Join(dir, entries[0].Name())
}

func TestRunAndCompare(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	out, err := execute(t, "run", "--config", writeConfig(t, dirA), "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "AGENT")
	assert.Contains(t, out, "dijkstra")

	_, err = execute(t, "run", "--config", writeConfig(t, dirB))
	require.NoError(t, err)

	runA, runB := onlyRun(t, dirA), onlyRun(t, dirB)
	assert.True(t, strings.HasPrefix(filepath.Base(runA), "cli-"))

	records, err := trace.LoadAgents(runA)
	require.NoError(t, err)
	assert.Len(t, records, 1*2*2)

	out, err = execute(t, "compare", runA, runB)
	require.NoError(t, err)
	assert.Contains(t, out, "identical")
}

func TestCompare_Differs(t *testing.T) {
	dirA := t.TempDir()
	_, err := execute(t, "run", "--config", writeConfig(t, dirA))
	require.NoError(t, err)
	runA := onlyRun(t, dirA)

	records, err := trace.LoadAgents(runA)
	require.NoError(t, err)
	records[0].AgentVisited = records[0].AgentVisited[:1]
	maps, err := trace.LoadMaps(runA)
	require.NoError(t, err)

	runB, err := trace.Export(t.TempDir(), "edited", trace.Run{Agents: records, Maps: maps}, time.Now())
	require.NoError(t, err)

	out, err := execute(t, "compare", runA, runB)
	require.ErrorIs(t, err, errRunsDiffer)
	assert.Contains(t, out, "agent records differ")
}

func TestAgentsCmd(t *testing.T) {
	out, err := execute(t, "agents")
	require.NoError(t, err)
	for _, name := range []string{"astar", "dijkstra", "diverse_dijkstra", "dstar_lite", "random_walk", "replay"} {
		assert.Contains(t, out, name)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent_types: [bfs]\n"), 0o644))

	_, err := execute(t, "run", "--config", path)
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestSelectTask(t *testing.T) {
	cfg := config.Default()
	seed := int64(4)
	cfg.Seed = &seed
	cfg.SpawnsPerMap = 2
	cfg.Map = config.MapConfig{GridWidth: 14, GridHeight: 10, NumStaticAreas: 1}

	task, err := selectTask(cfg, 0, 1, "dstar")
	require.NoError(t, err)
	assert.Equal(t, 1, task.SpawnIndex)
	assert.Equal(t, "dstar_lite", string(task.Variant.Kind))

	_, err = selectTask(cfg, 3, 0, "astar")
	require.Error(t, err)
}
