package trace

import (
	"sort"

	"github.com/google/go-cmp/cmp"
)

// Comparison is the outcome of comparing two run folders
type Comparison struct {
	AgentsEqual bool
	MapsEqual   bool
	AgentDiff   string // cmp.Diff of normalized agent entries, empty when equal
	MapDiff     string
}

// Equal reports whether both outputs match
func (c Comparison) Equal() bool { return c.AgentsEqual && c.MapsEqual }

type agentKey struct {
	AgentType     string
	MapIndex      int
	SpawnIndex    int
	AgentVisited  []Cell // Order matters
	AgentExplored []Cell // Sorted, order does not matter
}

type mapKey struct {
	MapIndex int
	Seed     int64
	Grid     [][]int
	Erosion  [][]bool
}

// CompareFolders checks two run folders for identical trajectories and maps
// Visited lists compare in order; explored sets compare unordered; timing is ignored
func CompareFolders(a, b string) (Comparison, error) {
	agentsA, err := LoadAgents(a)
	if err != nil {
		return Comparison{}, err
	}
	agentsB, err := LoadAgents(b)
	if err != nil {
		return Comparison{}, err
	}
	mapsA, err := LoadMaps(a)
	if err != nil {
		return Comparison{}, err
	}
	mapsB, err := LoadMaps(b)
	if err != nil {
		return Comparison{}, err
	}
	return Compare(agentsA, agentsB, mapsA, mapsB), nil
}

// Compare normalizes and diffs in-memory outputs
func Compare(agentsA, agentsB []AgentRecord, mapsA, mapsB MapSet) Comparison {
	na, nb := normalizeAgents(agentsA), normalizeAgents(agentsB)
	ma, mb := normalizeMaps(mapsA), normalizeMaps(mapsB)

	c := Comparison{
		AgentDiff: cmp.Diff(na, nb),
		MapDiff:   cmp.Diff(ma, mb),
	}
	c.AgentsEqual = c.AgentDiff == ""
	c.MapsEqual = c.MapDiff == ""
	return c
}

func normalizeAgents(records []AgentRecord) []agentKey {
	out := make([]agentKey, 0, len(records))
	for _, r := range records {
		explored := append([]Cell(nil), r.AgentExplored...)
		sort.Slice(explored, func(i, j int) bool {
			if explored[i][0] != explored[j][0] {
				return explored[i][0] < explored[j][0]
			}
			return explored[i][1] < explored[j][1]
		})
		out = append(out, agentKey{
			AgentType:     r.AgentType,
			MapIndex:      r.MapIndex,
			SpawnIndex:    r.SpawnIndex,
			AgentVisited:  append([]Cell{}, r.AgentVisited...),
			AgentExplored: append([]Cell{}, explored...),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MapIndex != out[j].MapIndex {
			return out[i].MapIndex < out[j].MapIndex
		}
		if out[i].SpawnIndex != out[j].SpawnIndex {
			return out[i].SpawnIndex < out[j].SpawnIndex
		}
		return out[i].AgentType < out[j].AgentType
	})
	return out
}

func normalizeMaps(maps MapSet) []mapKey {
	out := make([]mapKey, 0, len(maps))
	for idx, m := range maps {
		out = append(out, mapKey{MapIndex: idx, Seed: m.Seed, Grid: m.Grid, Erosion: m.Erosion})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MapIndex < out[j].MapIndex })
	return out
}
