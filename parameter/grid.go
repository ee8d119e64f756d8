package parameter

// Grid - map generation
const (
	// GridDefaultWidth is the default number of cells horizontally
	GridDefaultWidth = 50

	// GridDefaultHeight is the default number of cells vertically
	GridDefaultHeight = 40

	// GridDefaultStaticAreas is the default count of non-moving obstacle groups
	GridDefaultStaticAreas = 20

	// GridDefaultDynamicAreas is the default count of moving obstacle groups
	GridDefaultDynamicAreas = 5

	// GridPlacementAttempts is how many random offsets are tried per area before giving up
	GridPlacementAttempts = 200
)

// Shape generation bounds (inclusive)
const (
	ShapeBlockMin = 2
	ShapeBlockMax = 5
	ShapeLineMin  = 3
	ShapeLineMax  = 7
)
