package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridplan/agent"
	"github.com/lixenwraith/gridplan/config"
	"github.com/lixenwraith/gridplan/experiment"
	"github.com/lixenwraith/gridplan/navigation"
	"github.com/lixenwraith/gridplan/trace"
	"github.com/lixenwraith/gridplan/viewer"
)

func newViewCmd() *cobra.Command {
	var (
		configPath string
		mapIndex   int
		spawnIndex int
		agentType  string
		interval   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Watch one agent on one map and spawn pair in the terminal",
		Long: `Builds the same tasks as "run" and animates the selected one.
Keys: q or Esc quits, p pauses, s single-steps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			task, err := selectTask(cfg, mapIndex, spawnIndex, agentType)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []viewer.Option{
				viewer.WithInterval(interval),
				viewer.WithTitle(fmt.Sprintf("%s map %d spawn %d", task.Variant.DisplayName, task.MapIndex, task.SpawnIndex)),
			}
			chime, err := viewer.NewSpeakerChime()
			if err != nil {
				logger.Warn("audio unavailable", zap.Error(err))
			} else {
				defer chime.Close()
				opts = append(opts, viewer.WithChime(chime))
			}

			// The terminal owns stderr while the viewer runs; the agent logs nothing
			a, err := agent.FromVariant(task.Variant, task.Options, task.Start, task.Goal, task.Env)
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer func() {
				if r := recover(); r != nil {
					viewer.HandleCrash(screen, r)
				}
				screen.Fini()
			}()

			err = viewer.New(screen, task.Env, a, opts...).Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "experiment YAML (defaults when empty)")
	cmd.Flags().IntVar(&mapIndex, "map", 0, "map index")
	cmd.Flags().IntVar(&spawnIndex, "spawn", 0, "spawn pair index")
	cmd.Flags().StringVar(&agentType, "agent", string(navigation.KindAStar), "agent type")
	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "time between ticks")
	return cmd
}

// selectTask builds the run's tasks and returns the one matching map, spawn and agent
func selectTask(cfg *config.Config, mapIndex, spawnIndex int, agentType string) (experiment.Task, error) {
	v, err := navigation.Lookup(agentType)
	if err != nil {
		return experiment.Task{}, err
	}
	cfg.AgentTypes = []string{string(v.Kind)}
	if mapIndex < 0 || mapIndex >= cfg.MapsToTest {
		return experiment.Task{}, fmt.Errorf("map index %d outside [0, %d)", mapIndex, cfg.MapsToTest)
	}
	if spawnIndex < 0 || spawnIndex >= cfg.SpawnsPerMap {
		return experiment.Task{}, fmt.Errorf("spawn index %d outside [0, %d)", spawnIndex, cfg.SpawnsPerMap)
	}

	prior, err := trace.LoadPrior(cfg.PreviousTraces)
	if err != nil {
		return experiment.Task{}, fmt.Errorf("load previous traces: %w", err)
	}
	tasks, _, err := experiment.CreateTasks(cfg, prior, logger)
	if err != nil {
		return experiment.Task{}, err
	}
	for _, t := range tasks {
		if t.MapIndex == mapIndex && t.SpawnIndex == spawnIndex {
			return t, nil
		}
	}
	return experiment.Task{}, fmt.Errorf("no task for map %d spawn %d", mapIndex, spawnIndex)
}
