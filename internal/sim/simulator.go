package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/track"
)

// Simulator plays a registered track's timeline.
type Simulator struct {
	reg       *track.Registry
	h         track.Handle
	metrics   []Metric
	observers []Observer
}

func New(reg *track.Registry, h track.Handle) *Simulator {
	return &Simulator{
		reg:       reg,
		h:         h,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run plays frames From through From+Frames under a single read handle, so
// every frame comes from the same line set.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	rd, err := s.reg.AcquireRead(s.h)
	if err != nil {
		return nil, err
	}
	defer rd.Release()

	result := &Result{
		Metrics:      make(map[string]float64),
		CrashFrame:   -1,
		FirstInvalid: rd.FirstInvalidFrame(),
	}
	if cfg.Keep {
		result.Riders = make([]physics.Rider, 0, cfg.Frames+1)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for n := cfg.From; n <= cfg.From+cfg.Frames; n++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		r, err := rd.Frame(n)
		if err != nil {
			return result, err
		}
		s.observe(n, r, result)
		if cfg.Keep {
			result.Riders = append(result.Riders, r)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// RunWithCallback plays frames one read handle at a time, letting writers
// edit the track between frames. Playback stops when callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(frame int, r physics.Rider) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for n := cfg.From; n <= cfg.From+cfg.Frames; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var r physics.Rider
		err := s.reg.WithRead(s.h, func(rd *track.Reader) error {
			var err error
			r, err = rd.Frame(n)
			return err
		})
		if err != nil {
			return err
		}
		for _, obs := range s.observers {
			obs.OnFrame(n, r)
		}
		if !callback(n, r) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) observe(n int, r physics.Rider, result *Result) {
	for _, m := range s.metrics {
		m.Observe(n, r)
	}
	for _, obs := range s.observers {
		obs.OnFrame(n, r)
	}
	if result.CrashFrame < 0 && r.Crashed() {
		result.CrashFrame = n
	}
	result.FramesPlayed++
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.From < 0 {
		return fmt.Errorf("from must not be negative, got %d", cfg.From)
	}
	if cfg.Frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	return nil
}
