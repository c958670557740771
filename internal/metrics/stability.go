package metrics

import "github.com/san-kum/ridersim/internal/physics"

// Stability is the fraction of frames in which every point stays within
// threshold of the body's center.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(frame int, r physics.Rider) {
	s.samples++
	if !r.IsValid() {
		s.violations++
		return
	}
	c := r.Center()
	for _, p := range r.Points {
		if p.Pos.Sub(c).Length() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
