package parameter

// Navigation - replanning and search
const (
	// NavLookaheadSteps is how many upcoming plan cells are checked each tick
	NavLookaheadSteps = 5

	// NavHeuristicEpsilon inflates the heuristic multiplicatively so ties favour deeper nodes
	NavHeuristicEpsilon = 1e-4

	// NavMaxExpansions bounds a single D* Lite repair; overrun is retried next tick
	NavMaxExpansions = 200_000

	// NavKeyTolerance is the gap below which two D* Lite key components tie
	// Keys are sums of unit and diagonal costs, so rounding noise sits far below it
	NavKeyTolerance = 1e-9

	// NavCompactThreshold is the dead D* Lite queue entry count that may trigger compaction
	NavCompactThreshold = 1024

	// NavTiebreakScale converts the 16-bit coordinate hash into a cost epsilon
	NavTiebreakScale = 1e-12
)

// Navigation - diverse dijkstra penalty field
const (
	// NavDiverseLambdaOverlap is added to every cell lying on a prior trace, per trace
	NavDiverseLambdaOverlap = 5.0

	// NavDiverseLambdaBand scales the corridor penalty around prior traces
	NavDiverseLambdaBand = 1.0

	// NavDiverseBandRadius is the Manhattan radius of the corridor band
	NavDiverseBandRadius = 2

	// NavDiverseFalloff selects the band decay: "linear" or "inverse"
	NavDiverseFalloff = "linear"
)

// Navigation - random walk baseline
const (
	// NavRandomWalkSteps is the walk step budget
	NavRandomWalkSteps = 100

	// NavRandomWalkBias is the probability of continuing in the last direction
	NavRandomWalkBias = 0.8
)
