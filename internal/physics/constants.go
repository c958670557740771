package physics

import "github.com/san-kum/ridersim/internal/geom"

// Body point indices of the default rider.
const (
	SledTL = iota
	SledBL
	SledBR
	SledTR
	BodyButt
	BodyShoulder
	BodyHandLeft
	BodyHandRight
	BodyFootLeft
	BodyFootRight
)

const (
	// DefaultIterations is the number of relax/collide passes per frame.
	DefaultIterations = 6
	// EnduranceFactor scales how far a breakable bone may stretch.
	EnduranceFactor = 0.0285
)

var (
	// Gravity is the per-frame acceleration applied to every point.
	Gravity = geom.V(0, 0.175)
	// StartingMomentum is the default per-frame velocity at frame 0.
	StartingMomentum = geom.V(0.4, 0)
)

// DefaultBody is the rest pose of the rider relative to its start position.
var DefaultBody = []geom.Vec2{
	{X: 0, Y: 0},
	{X: 0, Y: 5},
	{X: 15, Y: 5},
	{X: 17.5, Y: 0},
	{X: 5, Y: 0},
	{X: 5, Y: -5.5},
	{X: 11.5, Y: -5},
	{X: 11.5, Y: -5},
	{X: 10, Y: 5},
	{X: 10, Y: 5},
}

// DefaultFriction is the contact friction of each body point.
var DefaultFriction = []float64{0.8, 0, 0, 0, 0.8, 0.8, 0.1, 0.1, 0, 0}
