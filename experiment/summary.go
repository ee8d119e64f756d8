package experiment

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/lixenwraith/gridplan/navigation"
)

// Summary aggregates results per agent type; safe for concurrent Add
type Summary struct {
	mu         sync.Mutex
	collectors map[navigation.Kind]*Collector
}

func NewSummary() *Summary {
	return &Summary{collectors: make(map[navigation.Kind]*Collector)}
}

// Add folds one task result into its agent type
func (s *Summary) Add(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collectors[r.Kind]
	if !ok {
		c = NewCollector()
		s.collectors[r.Kind] = c
	}
	c.Collect(taskMetrics(r))
}

// Row is the finalized metrics of one agent type
type Row struct {
	Kind    navigation.Kind
	Metrics MetricBundle
}

func (r Row) SuccessRate() float64 { return r.Metrics.Get(MetricSuccessRate, 0) }

func (r Row) MeanPathLength() float64 { return r.Metrics.Get("avg_"+MetricPathLength, 0) }

func (r Row) MeanPlanningTime() float64 { return r.Metrics.Get("avg_"+MetricPlanningTime, 0) }

func (r Row) MeanExplored() float64 { return r.Metrics.Get("avg_"+MetricExplored, 0) }

func (r Row) MeanTicks() float64 { return r.Metrics.Get("avg_"+MetricTicks, 0) }

// Rows returns one row per agent type ordered by kind
func (s *Summary) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]Row, 0, len(s.collectors))
	for kind, c := range s.collectors {
		rows = append(rows, Row{Kind: kind, Metrics: c.Finalize()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Kind < rows[j].Kind })
	return rows
}

// WriteTable prints the rows as an aligned table
func (s *Summary) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGENT\tTASKS\tSUCCESS\tPATH\tPLAN_S\tEXPLORED\tTICKS")
	for _, r := range s.Rows() {
		fmt.Fprintf(tw, "%s\t%.0f\t%.1f%%\t%.2f\t%.6f\t%.1f\t%.1f\n",
			r.Kind,
			r.Metrics.Get(MetricTasks, 0),
			r.SuccessRate()*100,
			r.MeanPathLength(),
			r.MeanPlanningTime(),
			r.MeanExplored(),
			r.MeanTicks(),
		)
	}
	return tw.Flush()
}
