// Package trace persists experiment runs as JSON and compares them
package trace

import (
	"fmt"

	"github.com/lixenwraith/gridplan/agent"
	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/grid"
	"github.com/lixenwraith/gridplan/navigation"
)

// Cell is a grid position encoded as [x, y]
type Cell [2]int

// CellOf converts a point
func CellOf(p core.Point) Cell { return Cell{p.X, p.Y} }

// Point converts back to core.Point
func (c Cell) Point() core.Point { return core.Point{X: c[0], Y: c[1]} }

func cellsOf(ps []core.Point) []Cell {
	out := make([]Cell, len(ps))
	for i, p := range ps {
		out[i] = CellOf(p)
	}
	return out
}

// Points converts a cell list
func Points(cs []Cell) []core.Point {
	out := make([]core.Point, len(cs))
	for i, c := range cs {
		out[i] = c.Point()
	}
	return out
}

// AgentRecord is one agent run on one spawn pair of one map
type AgentRecord struct {
	AgentType     string  `json:"agent_type"`
	MapIndex      int     `json:"map_index"`
	SpawnIndex    int     `json:"spawn_index"`
	StartPos      Cell    `json:"start_pos"`
	GoalPos       Cell    `json:"goal_pos"`
	AgentVisited  []Cell  `json:"agent_visited"`
	AgentExplored []Cell  `json:"agent_explored"`
	PlanningTime  float64 `json:"planning_time"`
	PathLength    float64 `json:"path_length"`
	Reached       bool    `json:"reached"`
	Ticks         int     `json:"ticks"`
}

// NewAgentRecord captures an agent snapshot
func NewAgentRecord(kind navigation.Kind, mapIndex, spawnIndex int, s agent.Snapshot) AgentRecord {
	return AgentRecord{
		AgentType:     string(kind),
		MapIndex:      mapIndex,
		SpawnIndex:    spawnIndex,
		StartPos:      CellOf(s.Start),
		GoalPos:       CellOf(s.Goal),
		AgentVisited:  cellsOf(s.Visited),
		AgentExplored: cellsOf(s.Explored),
		PlanningTime:  s.PlanningTimeSeconds,
		PathLength:    s.PathLength,
		Reached:       s.Reached,
		Ticks:         s.Ticks,
	}
}

// MapRecord is the initial state of one generated map
type MapRecord struct {
	Seed            int64    `json:"seed"`
	Grid            [][]int  `json:"grid"`
	Erosion         [][]bool `json:"erosion"`
	GridWidth       int      `json:"grid_width"`
	GridHeight      int      `json:"grid_height"`
	NumStaticAreas  int      `json:"num_static_areas"`
	NumDynamicAreas int      `json:"num_dynamic_areas"`
}

// NewMapRecord captures the environment's current occupancy and inflation
func NewMapRecord(seed int64, env *grid.Environment) MapRecord {
	return MapRecord{
		Seed:            seed,
		Grid:            env.Grid(),
		Erosion:         env.Erosion(),
		GridWidth:       env.Width(),
		GridHeight:      env.Height(),
		NumStaticAreas:  len(env.StaticAreas()),
		NumDynamicAreas: len(env.DynamicAreas()),
	}
}

// Snapshot rebuilds a frozen map from the record
func (m MapRecord) Snapshot() (*grid.Snapshot, error) {
	occupied := make([][]bool, len(m.Grid))
	for y, row := range m.Grid {
		occupied[y] = make([]bool, len(row))
		for x, v := range row {
			occupied[y][x] = v != 0
		}
	}
	var inflated [][]bool
	if len(m.Erosion) > 0 {
		inflated = m.Erosion
	}
	s, err := grid.NewSnapshot(occupied, inflated)
	if err != nil {
		return nil, fmt.Errorf("map seed %d: %w", m.Seed, err)
	}
	return s, nil
}

// MapSet keys map records by map index; encoding/json writes the keys as decimal strings
type MapSet map[int]MapRecord

// PriorTraces returns the visited trajectories recorded for (start, goal)
func PriorTraces(records []AgentRecord, start, goal core.Point) [][]core.Point {
	traces := make([]navigation.Trace, 0, len(records))
	for _, r := range records {
		traces = append(traces, navigation.Trace{
			Start:   r.StartPos.Point(),
			Goal:    r.GoalPos.Point(),
			Visited: Points(r.AgentVisited),
		})
	}
	return navigation.FilterTraces(traces, start, goal)
}
