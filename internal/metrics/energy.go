package metrics

import (
	"math"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/physics"
)

// RiderEnergy is the rider's kinetic plus potential energy with unit mass
// per point. Potential is measured against the origin along gravity.
func RiderEnergy(r physics.Rider, gravity geom.Vec2) float64 {
	var e float64
	for _, p := range r.Points {
		v := p.Velocity()
		e += 0.5*v.LengthSq() - gravity.Dot(p.Pos)
	}
	return e
}

type Energy struct {
	name        string
	gravity     geom.Vec2
	samples     int
	totalEnergy float64
}

func NewEnergy(gravity geom.Vec2) *Energy {
	return &Energy{
		name:    "energy",
		gravity: gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(frame int, r physics.Rider) {
	e.totalEnergy += RiderEnergy(r, e.gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change in energy from the first
// observed frame. Collisions and friction remove energy, so a drift near
// zero on a track with contact means something is wrong.
type EnergyDrift struct {
	name          string
	gravity       geom.Vec2
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity geom.Vec2) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(frame int, r physics.Rider) {
	energy := RiderEnergy(r, e.gravity)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
