// Package config loads and validates experiment configuration from YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gridplan/grid"
	"github.com/lixenwraith/gridplan/navigation"
	"github.com/lixenwraith/gridplan/parameter"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the experiment configuration
type Config struct {
	ExperimentName string   `yaml:"experiment_name"`
	OutputFolder   string   `yaml:"output_folder"`
	Seed           *int64   `yaml:"seed"` // nil draws a seed at startup
	MapsToTest     int      `yaml:"maps_to_test"`
	SpawnsPerMap   int      `yaml:"spawns_per_map"`
	AgentTypes     []string `yaml:"agent_types"`
	MaxTicks       int      `yaml:"max_ticks"`
	Workers        int      `yaml:"workers"`
	RecordTrace    bool     `yaml:"record_trace"`
	PreviousTraces []string `yaml:"previous_traces"` // Run folders feeding diverse_dijkstra and replay

	Map     MapConfig     `yaml:"map"`
	Planner PlannerConfig `yaml:"planner"`

	// RunID is stamped by the CLI before the config is dumped
	RunID string `yaml:"run_id,omitempty"`
}

// MapConfig sizes generated maps
type MapConfig struct {
	GridWidth       int `yaml:"grid_width"`
	GridHeight      int `yaml:"grid_height"`
	NumStaticAreas  int `yaml:"num_static_areas"`
	NumDynamicAreas int `yaml:"num_dynamic_areas"`
}

// PlannerConfig tunes the planners
type PlannerConfig struct {
	LookaheadSteps int              `yaml:"lookahead_steps"`
	MaxExpansions  int              `yaml:"max_expansions"`
	Epsilon        float64          `yaml:"heuristic_epsilon"`
	Diverse        DiverseConfig    `yaml:"diverse"`
	RandomWalk     RandomWalkConfig `yaml:"random_walk"`
}

// DiverseConfig mirrors navigation.DiverseOptions
type DiverseConfig struct {
	LambdaOverlap float64 `yaml:"lambda_overlap"`
	LambdaBand    float64 `yaml:"lambda_band"`
	BandRadius    int     `yaml:"band_radius"`
	BandFalloff   string  `yaml:"band_falloff"` // linear or inverse
	TinyTiebreak  bool    `yaml:"tiny_tiebreak"`
}

// RandomWalkConfig tunes the random walk baseline
type RandomWalkConfig struct {
	PathLength    int     `yaml:"path_length"`
	DirectionBias float64 `yaml:"direction_bias"`
}

// Default returns a configuration that validates as-is
func Default() *Config {
	return &Config{
		ExperimentName: "experiment",
		OutputFolder:   parameter.ExpDefaultOutputFolder,
		MapsToTest:     parameter.ExpDefaultMapsToTest,
		SpawnsPerMap:   parameter.ExpDefaultSpawnsPerMap,
		AgentTypes:     []string{string(navigation.KindAStar), string(navigation.KindDStarLite)},
		MaxTicks:       parameter.ExpDefaultMaxTicks,
		Workers:        parameter.ExpDefaultWorkers,
		Map: MapConfig{
			GridWidth:       parameter.GridDefaultWidth,
			GridHeight:      parameter.GridDefaultHeight,
			NumStaticAreas:  parameter.GridDefaultStaticAreas,
			NumDynamicAreas: parameter.GridDefaultDynamicAreas,
		},
		Planner: PlannerConfig{
			LookaheadSteps: parameter.NavLookaheadSteps,
			MaxExpansions:  parameter.NavMaxExpansions,
			Epsilon:        parameter.NavHeuristicEpsilon,
			Diverse: DiverseConfig{
				LambdaOverlap: parameter.NavDiverseLambdaOverlap,
				LambdaBand:    parameter.NavDiverseLambdaBand,
				BandRadius:    parameter.NavDiverseBandRadius,
				BandFalloff:   parameter.NavDiverseFalloff,
				TinyTiebreak:  true,
			},
			RandomWalk: RandomWalkConfig{
				PathLength:    parameter.NavRandomWalkSteps,
				DirectionBias: parameter.NavRandomWalkBias,
			},
		},
	}
}

// Load reads a YAML file over the defaults; an empty path returns the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GRIDPLAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("GRIDPLAN_OUTPUT_FOLDER"); v != "" {
		c.OutputFolder = v
	}
}

// Validate returns ErrInvalid joined with every field problem found
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.ExperimentName != "", "experiment_name must not be empty")
	check(c.MapsToTest >= 1, "maps_to_test must be >= 1, got %d", c.MapsToTest)
	check(c.SpawnsPerMap >= 1, "spawns_per_map must be >= 1, got %d", c.SpawnsPerMap)
	check(c.MaxTicks >= 1, "max_ticks must be >= 1, got %d", c.MaxTicks)
	check(c.Workers >= 1, "workers must be >= 1, got %d", c.Workers)
	check(len(c.AgentTypes) > 0, "agent_types must not be empty")

	replay := false
	for _, name := range c.AgentTypes {
		v, err := navigation.Lookup(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("agent_types: %w", err))
			continue
		}
		replay = replay || v.Kind == navigation.KindReplay
	}
	check(!replay || len(c.PreviousTraces) > 0, "agent type replay needs previous_traces")

	m := c.Map
	check(m.GridWidth >= 3 && m.GridHeight >= 3, "map grid must be at least 3x3, got %dx%d", m.GridWidth, m.GridHeight)
	check(m.NumStaticAreas >= 0, "map.num_static_areas must be >= 0")
	check(m.NumDynamicAreas >= 0, "map.num_dynamic_areas must be >= 0")

	p := c.Planner
	check(p.LookaheadSteps >= 1, "planner.lookahead_steps must be >= 1, got %d", p.LookaheadSteps)
	check(p.MaxExpansions >= 1, "planner.max_expansions must be >= 1, got %d", p.MaxExpansions)
	check(p.Epsilon >= 0, "planner.heuristic_epsilon must be >= 0")
	check(p.Diverse.LambdaOverlap >= 0, "planner.diverse.lambda_overlap must be >= 0")
	check(p.Diverse.LambdaBand >= 0, "planner.diverse.lambda_band must be >= 0")
	check(p.Diverse.BandRadius >= 0, "planner.diverse.band_radius must be >= 0")
	check(p.Diverse.BandFalloff == navigation.FalloffLinear || p.Diverse.BandFalloff == navigation.FalloffInverse,
		"planner.diverse.band_falloff must be %q or %q, got %q", navigation.FalloffLinear, navigation.FalloffInverse, p.Diverse.BandFalloff)
	check(p.RandomWalk.PathLength >= 1, "planner.random_walk.path_length must be >= 1")
	check(p.RandomWalk.DirectionBias >= 0 && p.RandomWalk.DirectionBias <= 1, "planner.random_walk.direction_bias must be in [0, 1]")

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// GenerateConfig returns the map generation parameters
func (c *Config) GenerateConfig() grid.GenerateConfig {
	return grid.GenerateConfig{
		Width:        c.Map.GridWidth,
		Height:       c.Map.GridHeight,
		StaticAreas:  c.Map.NumStaticAreas,
		DynamicAreas: c.Map.NumDynamicAreas,
	}
}

// NavigationOptions returns planner options; per-task fields are filled by the caller
func (c *Config) NavigationOptions() navigation.Options {
	o := navigation.DefaultOptions()
	o.Epsilon = c.Planner.Epsilon
	o.MaxExpansions = c.Planner.MaxExpansions
	o.Lookahead = c.Planner.LookaheadSteps
	o.Diverse = navigation.DiverseOptions{
		LambdaOverlap: c.Planner.Diverse.LambdaOverlap,
		LambdaBand:    c.Planner.Diverse.LambdaBand,
		BandRadius:    c.Planner.Diverse.BandRadius,
		Falloff:       c.Planner.Diverse.BandFalloff,
		TinyTiebreak:  c.Planner.Diverse.TinyTiebreak,
	}
	o.RandomWalkSteps = c.Planner.RandomWalk.PathLength
	o.RandomWalkBias = c.Planner.RandomWalk.DirectionBias
	return o
}

// Variants resolves agent_types through the variant table, keeping config order
func (c *Config) Variants() ([]navigation.Variant, error) {
	out := make([]navigation.Variant, 0, len(c.AgentTypes))
	for _, name := range c.AgentTypes {
		v, err := navigation.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ResolveSeed fixes a nil seed to draw() and returns the base seed
func (c *Config) ResolveSeed(draw func() int64) int64 {
	if c.Seed == nil {
		s := draw()
		c.Seed = &s
	}
	return *c.Seed
}
