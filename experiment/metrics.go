package experiment

// MetricBundle is a set of named measurements for one finished task
type MetricBundle map[string]float64

// Metric keys recorded per task
const (
	MetricReached      = "reached"
	MetricPathLength   = "path_length"
	MetricPlanningTime = "planning_time"
	MetricExplored     = "explored"
	MetricTicks        = "ticks"
	MetricReplans      = "replans"

	MetricTasks       = "tasks"
	MetricSuccessRate = "success_rate"
)

// Get returns metric value or default if not present
func (b MetricBundle) Get(key string, defaultVal float64) float64 {
	if v, ok := b[key]; ok {
		return v
	}
	return defaultVal
}

// Collector accumulates task metrics for one agent type
type Collector struct {
	tasks  int
	sums   map[string]float64
	counts map[string]int
	mins   map[string]float64
	maxs   map[string]float64
	minSet map[string]bool
	maxSet map[string]bool
}

// NewCollector creates a reusable collector
func NewCollector() *Collector {
	return &Collector{
		sums:   make(map[string]float64),
		counts: make(map[string]int),
		mins:   make(map[string]float64),
		maxs:   make(map[string]float64),
		minSet: make(map[string]bool),
		maxSet: make(map[string]bool),
	}
}

// Collect records one task's metrics
func (c *Collector) Collect(metrics MetricBundle) {
	c.tasks++

	for key, value := range metrics {
		c.sums[key] += value
		c.counts[key]++

		if !c.minSet[key] || value < c.mins[key] {
			c.mins[key] = value
			c.minSet[key] = true
		}
		if !c.maxSet[key] || value > c.maxs[key] {
			c.maxs[key] = value
			c.maxSet[key] = true
		}
	}
}

// Finalize returns avg_, min_ and max_ per key plus task count and success rate
func (c *Collector) Finalize() MetricBundle {
	result := make(MetricBundle)
	result[MetricTasks] = float64(c.tasks)

	for key, sum := range c.sums {
		if count := c.counts[key]; count > 0 {
			result["avg_"+key] = sum / float64(count)
		}
	}
	for key, val := range c.mins {
		result["min_"+key] = val
	}
	for key, val := range c.maxs {
		result["max_"+key] = val
	}

	result[MetricSuccessRate] = result.Get("avg_"+MetricReached, 0)
	return result
}

func (c *Collector) Reset() {
	c.tasks = 0
	clear(c.sums)
	clear(c.counts)
	clear(c.mins)
	clear(c.maxs)
	clear(c.minSet)
	clear(c.maxSet)
}

// taskMetrics flattens a result into a bundle
func taskMetrics(r Result) MetricBundle {
	reached := 0.0
	if r.Snapshot.Reached {
		reached = 1
	}
	return MetricBundle{
		MetricReached:      reached,
		MetricPathLength:   r.Snapshot.PathLength,
		MetricPlanningTime: r.Snapshot.PlanningTimeSeconds,
		MetricExplored:     float64(len(r.Snapshot.Explored)),
		MetricTicks:        float64(r.Snapshot.Ticks),
		MetricReplans:      float64(r.Snapshot.Replans),
	}
}
