package graph

// Canvas and physics constants of the explorer view
const (
	CanvasWidth  = 2000
	CanvasHeight = 2000

	DefaultExpandLimit = 5

	CollisionRadius  = 20
	MinNodeRadius    = 10
	SideEdgeOpacity  = 0.2
	EdgeStrength     = 0.05
	SideEdgeStrength = 0.001

	SkeletonLinkWidth = 10

	// New nodes land within ±placementJitter of their anchor
	placementJitter = 5
)

// Node and link types
const (
	NodeActor    = "actor"
	LinkCostar   = "costar"
	LinkSkeleton = "skeleton"
)

const (
	skeletonColor = "#FF5533"
	costarColor   = "#000000"
)
