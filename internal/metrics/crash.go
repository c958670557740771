package metrics

import "github.com/san-kum/ridersim/internal/physics"

// Crash reports the first frame with a broken bone, or -1.
type Crash struct {
	frame int
}

func NewCrash() *Crash { return &Crash{frame: -1} }

func (c *Crash) Name() string { return "crash_frame" }

func (c *Crash) Observe(frame int, r physics.Rider) {
	if c.frame < 0 && r.Crashed() {
		c.frame = frame
	}
}

func (c *Crash) Value() float64 { return float64(c.frame) }

func (c *Crash) Reset() { c.frame = -1 }
