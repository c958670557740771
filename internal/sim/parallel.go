package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ridersim/internal/track"
)

// Ensemble plays several tracks concurrently, one goroutine per track.
type Ensemble struct {
	reg        *track.Registry
	handles    []track.Handle
	newMetrics func() []Metric
}

// NewEnsemble builds an ensemble. newMetrics is called once per track so no
// metric is shared between goroutines; it may be nil.
func NewEnsemble(reg *track.Registry, handles []track.Handle, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{reg: reg, handles: handles, newMetrics: newMetrics}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.handles))
	g, ctx := errgroup.WithContext(ctx)

	for i, h := range e.handles {
		g.Go(func() error {
			s := New(e.reg, h)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
