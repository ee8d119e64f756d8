package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridplan/config"
	"github.com/lixenwraith/gridplan/experiment"
	"github.com/lixenwraith/gridplan/trace"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every configured agent type on every map and spawn pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runExperiment(ctx, cmd, configPath, workers)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "experiment YAML (defaults when empty)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel tasks, overrides the config")
	return cmd
}

// loadConfig reads, stamps and validates the configuration
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ResolveSeed(func() int64 { return time.Now().UnixNano() })
	return cfg, nil
}

func runExperiment(ctx context.Context, cmd *cobra.Command, configPath string, workers int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	cfg.RunID = uuid.NewString()

	log := logger.With(zap.String("run_id", cfg.RunID))
	log.Info("starting experiment",
		zap.String("name", cfg.ExperimentName),
		zap.Int64("seed", *cfg.Seed),
		zap.Strings("agents", cfg.AgentTypes),
		zap.Int("maps", cfg.MapsToTest),
		zap.Int("spawns", cfg.SpawnsPerMap),
		zap.Int("workers", cfg.Workers),
	)

	prior, err := trace.LoadPrior(cfg.PreviousTraces)
	if err != nil {
		return fmt.Errorf("load previous traces: %w", err)
	}

	tasks, maps, err := experiment.CreateTasks(cfg, prior, log)
	if err != nil {
		return err
	}

	runner, err := experiment.NewRunner(
		experiment.WithLogger(log),
		experiment.WithWorkers(cfg.Workers),
		experiment.WithMaxTicks(cfg.MaxTicks),
	)
	if err != nil {
		return err
	}

	begin := time.Now()
	out, err := runner.Run(ctx, tasks)
	if err != nil {
		return err
	}
	log.Info("experiment finished", zap.Int("tasks", len(tasks)), zap.Duration("elapsed", time.Since(begin)))

	if cfg.RecordTrace {
		dir, err := trace.Export(cfg.OutputFolder, cfg.ExperimentName, trace.Run{
			Agents: out.Records(),
			Maps:   maps,
			Config: cfg,
		}, time.Now())
		if err != nil {
			return fmt.Errorf("export traces: %w", err)
		}
		log.Info("traces written", zap.String("folder", dir))
	}

	return out.Summary.WriteTable(cmd.OutOrStdout())
}
