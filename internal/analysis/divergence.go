package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ridersim/internal/config"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/sim"
	"github.com/san-kum/ridersim/internal/track"
)

type DivergenceResult struct {
	// Separation is the largest point distance between the two rides at
	// each frame.
	Separation []float64
	// Rate is the fitted slope of ln(separation) per frame. Positive
	// means the rides drift apart exponentially.
	Rate float64
}

// Divergence plays the scene twice, the second time with the start shifted
// right by perturbation, and measures how the two rides separate.
func Divergence(ctx context.Context, cfg *config.Config, perturbation float64, frames int) (*DivergenceResult, error) {
	if perturbation <= 0 {
		return nil, fmt.Errorf("perturbation must be positive, got %v", perturbation)
	}

	nudged := cfg.Clone()
	nudged.Start.X += perturbation

	reg := track.NewRegistry()
	var handles []track.Handle
	for _, c := range []*config.Config{cfg, nudged} {
		h, err := c.Open(reg)
		if err != nil {
			return nil, err
		}
		defer reg.Close(h)
		handles = append(handles, h)
	}

	results, err := sim.NewEnsemble(reg, handles, nil).Run(ctx, sim.Config{Frames: frames, Keep: true})
	if err != nil {
		return nil, err
	}

	base, other := results[0].Riders, results[1].Riders
	d := &DivergenceResult{Separation: make([]float64, len(base))}
	for i := range base {
		d.Separation[i] = separation(base[i], other[i])
	}
	d.Rate = logSlope(d.Separation)
	return d, nil
}

func separation(a, b physics.Rider) float64 {
	sep := 0.0
	for i := range a.Points {
		sep = max(sep, a.Points[i].Pos.Sub(b.Points[i].Pos).Length())
	}
	return sep
}

// logSlope is the least squares slope of ln(v) against index, skipping
// zero samples.
func logSlope(values []float64) float64 {
	var n, sx, sy, sxx, sxy float64
	for i, v := range values {
		if v <= 0 {
			continue
		}
		x, y := float64(i), math.Log(v)
		n++
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if n < 2 || den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
