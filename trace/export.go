package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Output file names inside a run folder
const (
	AgentFile  = "agent_output.json"
	MapFile    = "map_output.json"
	ConfigFile = "used_config.yaml"

	timestampLayout = "2006-01-02_15-04-05"
)

// ErrNoRecords is returned when an output file holds no entries
var ErrNoRecords = errors.New("no records")

// Run is everything one experiment writes out
type Run struct {
	Agents []AgentRecord
	Maps   MapSet
	Config any // Serialized as YAML
}

// Export writes the run under dir/<name>-<timestamp> and returns that folder
func Export(dir, name string, run Run, now time.Time) (string, error) {
	out := filepath.Join(dir, name+"-"+now.Format(timestampLayout))
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}

	agents := append([]AgentRecord{}, run.Agents...)
	SortRecords(agents)
	if err := writeJSON(filepath.Join(out, AgentFile), agents); err != nil {
		return "", err
	}

	maps := run.Maps
	if maps == nil {
		maps = MapSet{}
	}
	if err := writeJSON(filepath.Join(out, MapFile), maps); err != nil {
		return "", err
	}

	if run.Config != nil {
		data, err := yaml.Marshal(run.Config)
		if err != nil {
			return "", fmt.Errorf("encode config: %w", err)
		}
		if err := os.WriteFile(filepath.Join(out, ConfigFile), data, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", ConfigFile, err)
		}
	}
	return out, nil
}

// SortRecords orders records by (map, spawn, agent type)
func SortRecords(records []AgentRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.MapIndex != b.MapIndex {
			return a.MapIndex < b.MapIndex
		}
		if a.SpawnIndex != b.SpawnIndex {
			return a.SpawnIndex < b.SpawnIndex
		}
		return a.AgentType < b.AgentType
	})
}

// LoadAgents reads agent records from a run folder or a direct file path
func LoadAgents(path string) ([]AgentRecord, error) {
	var records []AgentRecord
	if err := readJSON(resolve(path, AgentFile), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadMaps reads map records from a run folder or a direct file path
func LoadMaps(path string) (MapSet, error) {
	var maps MapSet
	if err := readJSON(resolve(path, MapFile), &maps); err != nil {
		return nil, err
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRecords)
	}
	return maps, nil
}

// LoadPrior concatenates the agent records of several run folders
func LoadPrior(paths []string) ([]AgentRecord, error) {
	var all []AgentRecord
	for _, p := range paths {
		records, err := LoadAgents(p)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

func resolve(path, file string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, file)
	}
	return path
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read trace: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
