package metrics

import (
	"math"

	"github.com/san-kum/ridersim/internal/physics"
)

// Speed averages the rider's point speed over observed frames.
type Speed struct {
	name    string
	sum     float64
	samples int
}

func NewSpeed() *Speed {
	return &Speed{name: "speed"}
}

func (s *Speed) Name() string { return s.name }

func (s *Speed) Observe(frame int, r physics.Rider) {
	s.sum += r.Speed()
	s.samples++
}

func (s *Speed) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *Speed) Reset() {
	s.sum = 0
	s.samples = 0
}

type PeakSpeed struct {
	peak float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{} }

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(frame int, r physics.Rider) {
	p.peak = math.Max(p.peak, r.Speed())
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }
