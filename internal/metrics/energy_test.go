package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/physics"
)

func singlePoint(pos, prev geom.Vec2) physics.Rider {
	return physics.Rider{Points: []physics.Point{{Pos: pos, Prev: prev}}}
}

func TestRiderEnergy(t *testing.T) {
	g := geom.V(0, 0.5)
	r := singlePoint(geom.V(0, 4), geom.V(0, 2))

	// 0.5*|v|^2 with v=(0,2), minus g.pos
	expected := 0.5*4 - 2.0
	if got := RiderEnergy(r, g); math.Abs(got-expected) > 1e-12 {
		t.Errorf("expected energy %f, got %f", expected, got)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy(physics.Gravity)
	r := singlePoint(geom.V(1, 1), geom.V(0, 0))

	m.Observe(0, r)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	g := geom.V(0, 1)
	m := NewEnergyDrift(g)

	// a point that drops without gaining speed loses half its energy
	m.Observe(0, singlePoint(geom.V(0, -10), geom.V(0, -10)))
	m.Observe(1, singlePoint(geom.V(0, -5), geom.V(0, -5)))

	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected drift 0.5, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}
