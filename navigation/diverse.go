package navigation

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/lixenwraith/gridplan/core"
	"github.com/lixenwraith/gridplan/parameter"
)

// Band falloff modes
const (
	FalloffLinear  = "linear"
	FalloffInverse = "inverse"
)

// DiverseOptions tunes the penalty field of DiverseDijkstra
type DiverseOptions struct {
	LambdaOverlap float64 // Added once per trace on each trace cell
	LambdaBand    float64 // Scaled by falloff for cells near a trace
	BandRadius    int     // Manhattan radius of the band, 0 disables it
	Falloff       string  // FalloffLinear or FalloffInverse
	TinyTiebreak  bool    // Add a per-cell hash epsilon to entry costs
}

// DefaultDiverseOptions returns the tuned defaults
func DefaultDiverseOptions() DiverseOptions {
	return DiverseOptions{
		LambdaOverlap: parameter.NavDiverseLambdaOverlap,
		LambdaBand:    parameter.NavDiverseLambdaBand,
		BandRadius:    parameter.NavDiverseBandRadius,
		Falloff:       parameter.NavDiverseFalloff,
		TinyTiebreak:  true,
	}
}

// PenaltyField holds the per-cell extra entry cost built from prior traces
type PenaltyField struct {
	width, height int
	values        []float64
}

// BuildPenaltyField accumulates overlap and band penalties for every trace
// Each trace contributes at most once per cell; band distance is to the nearest cell of that trace
func BuildPenaltyField(width, height int, traces [][]core.Point, opts DiverseOptions) *PenaltyField {
	f := &PenaltyField{width: width, height: height, values: make([]float64, width*height)}
	if width <= 0 || height <= 0 {
		return f
	}

	r := opts.BandRadius
	useBand := r > 0 && opts.LambdaBand > 0
	nearest := make([]int, width*height)

	for _, trace := range traces {
		for i := range nearest {
			nearest[i] = -1
		}
		for _, c := range trace {
			if !f.inBounds(c) {
				continue
			}
			nearest[index(c, width)] = 0
		}
		if useBand {
			for _, c := range trace {
				if !f.inBounds(c) {
					continue
				}
				for dy := -r; dy <= r; dy++ {
					for dx := -r; dx <= r; dx++ {
						d := abs(dx) + abs(dy)
						if d == 0 || d > r {
							continue
						}
						p := core.Point{X: c.X + dx, Y: c.Y + dy}
						if !f.inBounds(p) {
							continue
						}
						idx := index(p, width)
						if nearest[idx] < 0 || d < nearest[idx] {
							nearest[idx] = d
						}
					}
				}
			}
		}
		for idx, d := range nearest {
			switch {
			case d == 0:
				f.values[idx] += opts.LambdaOverlap
			case d > 0:
				f.values[idx] += opts.LambdaBand * falloff(opts.Falloff, d, r)
			}
		}
	}
	return f
}

// At returns the penalty of p, zero outside the field
func (f *PenaltyField) At(p core.Point) float64 {
	if !f.inBounds(p) {
		return 0
	}
	return f.values[index(p, f.width)]
}

func (f *PenaltyField) inBounds(p core.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < f.width && p.Y < f.height
}

func falloff(mode string, d, r int) float64 {
	if mode == FalloffInverse {
		return 1 / float64(1+d)
	}
	return 1 - float64(d)/float64(r+1)
}

// cellTiebreak returns a stable per-cell epsilon from the xxhash of its coordinates
func cellTiebreak(p core.Point) float64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(int64(p.X)))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(p.Y)))
	return float64(xxhash.Sum64(buf[:])&0xffff) * parameter.NavTiebreakScale
}

// DiverseDijkstra is Dijkstra with entry cost = move cost + penalty(v) [+ tiebreak(v)]
// The penalty field is built on first Plan and rebuilt only when map dimensions change
type DiverseDijkstra struct {
	opts   DiverseOptions
	traces [][]core.Point
	field  *PenaltyField
	search bestFirst
}

// NewDiverseDijkstra creates a planner that steers away from the given traces
func NewDiverseDijkstra(opts DiverseOptions, traces [][]core.Point) *DiverseDijkstra {
	return &DiverseDijkstra{opts: opts, traces: traces}
}

func (d *DiverseDijkstra) Plan(origin, goal core.Point, m Map) []core.Point {
	if d.field == nil || d.field.width != m.Width() || d.field.height != m.Height() {
		d.field = BuildPenaltyField(m.Width(), m.Height(), d.traces, d.opts)
	}
	field := d.field
	tiebreak := d.opts.TinyTiebreak
	entry := func(n core.Neighbor) float64 {
		c := n.Cost + field.At(n.Cell)
		if tiebreak {
			c += cellTiebreak(n.Cell)
		}
		return c
	}
	return d.search.run(origin, goal, m, nil, entry)
}

// Field returns the penalty field of the last Plan, nil before the first call
func (d *DiverseDijkstra) Field() *PenaltyField { return d.field }

func (d *DiverseDijkstra) Explored() []core.Point { return d.search.explored.sorted() }

func (d *DiverseDijkstra) Reset() { d.search.explored = nil }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Trace is a recorded trajectory with the spawn pair that produced it
type Trace struct {
	Start, Goal core.Point
	Visited     []core.Point
}

// FilterTraces keeps the trajectories recorded for the same (start, goal) pair
func FilterTraces(traces []Trace, start, goal core.Point) [][]core.Point {
	var out [][]core.Point
	for _, tr := range traces {
		if tr.Start == start && tr.Goal == goal && len(tr.Visited) > 0 {
			out = append(out, tr.Visited)
		}
	}
	return out
}
