package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/physics"
)

func TestSpeed(t *testing.T) {
	avg := NewSpeed()
	peak := NewPeakSpeed()

	for i, v := range []float64{1, 3, 2} {
		r := singlePoint(geom.V(v, 0), geom.V(0, 0))
		avg.Observe(i, r)
		peak.Observe(i, r)
	}

	if got := avg.Value(); math.Abs(got-2) > 1e-12 {
		t.Errorf("expected mean speed 2, got %f", got)
	}
	if got := peak.Value(); got != 3 {
		t.Errorf("expected peak speed 3, got %f", got)
	}

	avg.Reset()
	peak.Reset()
	if avg.Value() != 0 || peak.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestCrash(t *testing.T) {
	c := NewCrash()
	whole := physics.Rider{Broken: []bool{false, false}}
	broken := physics.Rider{Broken: []bool{false, true}}

	c.Observe(0, whole)
	if c.Value() != -1 {
		t.Errorf("expected -1 before any break, got %v", c.Value())
	}
	c.Observe(7, broken)
	c.Observe(8, broken)
	if c.Value() != 7 {
		t.Errorf("expected crash at 7, got %v", c.Value())
	}

	c.Reset()
	if c.Value() != -1 {
		t.Error("expected -1 after reset")
	}
}

func TestStability(t *testing.T) {
	tests := []struct {
		name     string
		spread   float64
		expected float64
	}{
		{"tight", 1, 1},
		{"scattered", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStability(10)
			r := physics.Rider{Points: []physics.Point{
				{Pos: geom.V(-tt.spread, 0)},
				{Pos: geom.V(tt.spread, 0)},
			}}
			s.Observe(0, r)
			s.Observe(1, r)
			if got := s.Value(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestStability_Invalid(t *testing.T) {
	s := NewStability(10)
	s.Observe(0, singlePoint(geom.V(math.NaN(), 0), geom.V(0, 0)))
	s.Observe(1, singlePoint(geom.V(0, 0), geom.V(0, 0)))
	if got := s.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestStability_NoSamples(t *testing.T) {
	if got := NewStability(5).Value(); got != 1 {
		t.Errorf("expected full stability before any sample, got %v", got)
	}
}
