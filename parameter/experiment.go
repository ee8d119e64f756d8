package parameter

// Experiment - task orchestration
const (
	// ExpDefaultMapsToTest is the number of generated maps per run
	ExpDefaultMapsToTest = 1

	// ExpDefaultSpawnsPerMap is the number of start/goal pairs per map
	ExpDefaultSpawnsPerMap = 5

	// ExpDefaultMaxTicks stops a task that never completes
	ExpDefaultMaxTicks = 2000

	// ExpDefaultWorkers is the parallel task limit
	ExpDefaultWorkers = 4

	// ExpSpawnPairAttempts bounds the search for one unique reachable start/goal pair
	ExpSpawnPairAttempts = 250

	// ExpDefaultOutputFolder receives exported traces
	ExpDefaultOutputFolder = "outputs"
)
