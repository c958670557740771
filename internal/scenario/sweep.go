package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/san-kum/ridersim/internal/config"
	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/metrics"
	"github.com/san-kum/ridersim/internal/sim"
	"github.com/san-kum/ridersim/internal/track"
)

// Sweep varies one scene parameter across a range.
type Sweep struct {
	Param    string
	Min, Max float64
	Steps    int
	Frames   int
}

type SweepResult struct {
	Value      float64
	CrashFrame int
	PeakSpeed  float64
	Final      geom.Vec2
}

var sweepParams = map[string]func(*config.Config, float64){
	"start_x":    func(c *config.Config, v float64) { c.Start.X = v },
	"start_y":    func(c *config.Config, v float64) { c.Start.Y = v },
	"momentum_x": func(c *config.Config, v float64) { c.Start.MomentumX = v },
	"momentum_y": func(c *config.Config, v float64) { c.Start.MomentumY = v },
	"gravity_y":  func(c *config.Config, v float64) { c.Physics.GravityY = v },
	"iterations": func(c *config.Config, v float64) { c.Physics.Iterations = int(v) },
}

// SweepParams lists the parameters RunSweep accepts.
func SweepParams() []string {
	return slices.Sorted(maps.Keys(sweepParams))
}

// RunSweep plays the scene once per parameter value, each on its own track.
func RunSweep(ctx context.Context, base *config.Config, sweep *Sweep) ([]SweepResult, error) {
	set, ok := sweepParams[sweep.Param]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter %q", sweep.Param)
	}
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.Steps)
	}

	paramStep := 0.0
	if sweep.Steps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.Steps-1)
	}

	reg := track.NewRegistry()
	results := make([]SweepResult, 0, sweep.Steps)
	for i := 0; i < sweep.Steps; i++ {
		value := sweep.Min + float64(i)*paramStep
		cfg := base.Clone()
		set(cfg, value)

		h, err := cfg.Open(reg)
		if err != nil {
			return results, fmt.Errorf("%s=%v: %w", sweep.Param, value, err)
		}

		s := sim.New(reg, h)
		peak := metrics.NewPeakSpeed()
		s.AddMetric(peak)
		res, err := s.Run(ctx, sim.Config{Frames: sweep.Frames, Keep: true})
		if err != nil {
			return results, err
		}
		if err := reg.Close(h); err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			Value:      value,
			CrashFrame: res.CrashFrame,
			PeakSpeed:  peak.Value(),
			Final:      res.Riders[len(res.Riders)-1].Center(),
		})
		slog.Debug("sweep", "step", i+1, "of", sweep.Steps, "param", sweep.Param, "value", value)
	}

	return results, nil
}
