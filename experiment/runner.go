package experiment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	oteltrace "go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/gridplan/agent"
	"github.com/lixenwraith/gridplan/navigation"
	"github.com/lixenwraith/gridplan/parameter"
	"github.com/lixenwraith/gridplan/trace"
)

const instrumentationName = "github.com/lixenwraith/gridplan/experiment"

// Result is the outcome of one task
type Result struct {
	MapIndex   int
	SpawnIndex int
	Kind       navigation.Kind
	Snapshot   agent.Snapshot
	Duration   time.Duration
}

// Outcome is everything a run produces
type Outcome struct {
	Results []Result // Ordered by (map, spawn, agent type)
	Summary *Summary
}

// Records converts results to persisted agent records
func (o *Outcome) Records() []trace.AgentRecord {
	out := make([]trace.AgentRecord, len(o.Results))
	for i, r := range o.Results {
		out[i] = trace.NewAgentRecord(r.Kind, r.MapIndex, r.SpawnIndex, r.Snapshot)
	}
	return out
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func WithTracerProvider(tp oteltrace.TracerProvider) RunnerOption {
	return func(r *Runner) {
		if tp != nil {
			r.tracerProvider = tp
		}
	}
}

func WithMeterProvider(mp metric.MeterProvider) RunnerOption {
	return func(r *Runner) {
		if mp != nil {
			r.meterProvider = mp
		}
	}
}

// WithWorkers bounds the number of tasks running at once
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithMaxTicks stops a task after n ticks
func WithMaxTicks(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxTicks = n
		}
	}
}

// runnerMetrics holds the instruments, created once per Runner
type runnerMetrics struct {
	taskDuration metric.Float64Histogram
	planningTime metric.Float64Histogram
	taskCount    metric.Int64Counter
}

// Runner executes tasks on a bounded worker pool
type Runner struct {
	workers  int
	maxTicks int
	log      *zap.Logger

	tracerProvider oteltrace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         oteltrace.Tracer
	metrics        runnerMetrics
}

// NewRunner applies options and creates the instruments
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{
		workers:        parameter.ExpDefaultWorkers,
		maxTicks:       parameter.ExpDefaultMaxTicks,
		log:            zap.NewNop(),
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.tracer = r.tracerProvider.Tracer(instrumentationName)
	meter := r.meterProvider.Meter(instrumentationName)

	var err error
	r.metrics.taskDuration, err = meter.Float64Histogram(
		"gridplan.task.duration",
		metric.WithDescription("Wall time of one task in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create task duration histogram: %w", err)
	}

	r.metrics.planningTime, err = meter.Float64Histogram(
		"gridplan.planning.time",
		metric.WithDescription("Accumulated planning time of one task in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create planning time histogram: %w", err)
	}

	r.metrics.taskCount, err = meter.Int64Counter(
		"gridplan.task.count",
		metric.WithDescription("Number of tasks finished"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create task counter: %w", err)
	}

	return r, nil
}

// Run executes every task and aggregates the results
// The first task error or a cancelled ctx stops the run; ctx is checked between ticks only
func (r *Runner) Run(ctx context.Context, tasks []Task) (*Outcome, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var mu sync.Mutex
	results := make([]Result, 0, len(tasks))
	summary := NewSummary()

	for _, t := range tasks {
		g.Go(func() error {
			res, err := r.runTask(gctx, t)
			if err != nil {
				return err
			}
			summary.Add(res)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MapIndex != b.MapIndex {
			return a.MapIndex < b.MapIndex
		}
		if a.SpawnIndex != b.SpawnIndex {
			return a.SpawnIndex < b.SpawnIndex
		}
		return a.Kind < b.Kind
	})

	r.log.Info("run finished", zap.Int("tasks", len(results)))
	return &Outcome{Results: results, Summary: summary}, nil
}

func (r *Runner) runTask(ctx context.Context, t Task) (Result, error) {
	attrs := []attribute.KeyValue{
		attribute.String("agent.type", string(t.Variant.Kind)),
		attribute.Int("map.index", t.MapIndex),
		attribute.Int("spawn.index", t.SpawnIndex),
	}
	ctx, span := r.tracer.Start(ctx, "gridplan.task", oteltrace.WithAttributes(attrs...))
	defer span.End()

	log := r.log.With(
		zap.String("agent", string(t.Variant.Kind)),
		zap.Int("map", t.MapIndex),
		zap.Int("spawn", t.SpawnIndex),
	)

	a, err := agent.FromVariant(t.Variant, t.Options, t.Start, t.Goal, t.Env, agent.WithLogger(log))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("map %d spawn %d %s: %w", t.MapIndex, t.SpawnIndex, t.Variant.Kind, err)
	}

	begin := time.Now()
	for tick := 0; tick < r.maxTicks && !a.HasReachedGoal(); tick++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return Result{}, err
		}
		t.Env.Step(a.Position())
		a.Step(t.Env)
	}
	elapsed := time.Since(begin)

	snap := a.Snapshot()
	res := Result{
		MapIndex:   t.MapIndex,
		SpawnIndex: t.SpawnIndex,
		Kind:       t.Variant.Kind,
		Snapshot:   snap,
		Duration:   elapsed,
	}

	span.SetAttributes(
		attribute.Bool("agent.reached", snap.Reached),
		attribute.Int("agent.ticks", snap.Ticks),
		attribute.Int("agent.replans", snap.Replans),
		attribute.Float64("agent.path_length", snap.PathLength),
	)
	if snap.Reached {
		span.SetStatus(codes.Ok, "goal reached")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("goal not reached after %d ticks", snap.Ticks))
	}

	set := metric.WithAttributes(append(attrs[:1:1], attribute.Bool("reached", snap.Reached))...)
	r.metrics.taskDuration.Record(ctx, float64(elapsed.Microseconds())/1000, set)
	r.metrics.planningTime.Record(ctx, snap.PlanningTimeSeconds, set)
	r.metrics.taskCount.Add(ctx, 1, set)

	log.Debug("task finished",
		zap.Bool("reached", snap.Reached),
		zap.Int("ticks", snap.Ticks),
		zap.Float64("path_length", snap.PathLength),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}
