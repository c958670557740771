package track

import (
	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
)

// horizontal is a left-to-right line, solid from above.
func horizontal(y, x0, x1 float64) grid.Line {
	return *grid.NewLine(0, grid.Standard, geom.V(x0, y), geom.V(x1, y))
}

func scenery(a, b geom.Vec2) grid.Line {
	return *grid.NewLine(0, grid.Scenery, a, b)
}

// simulateFresh builds an uncached track with lines and returns frames
// [0, n].
func simulateFresh(opts Options, lines []grid.Line, n int) []physics.Rider {
	t, err := New(opts)
	if err != nil {
		panic(err)
	}
	reg := NewRegistry()
	h := reg.Open(t)
	w, err := reg.AcquireWrite(h)
	if err != nil {
		panic(err)
	}
	defer w.Release()
	for _, l := range lines {
		if _, err := w.AddLine(l); err != nil {
			panic(err)
		}
	}
	out, err := w.Frames(0, n)
	if err != nil {
		panic(err)
	}
	return out
}

func firstDifference(a, b []physics.Rider) int {
	for i := range min(len(a), len(b)) {
		if !a[i].Equal(b[i]) {
			return i
		}
	}
	return -1
}
