package sim

import "github.com/san-kum/ridersim/internal/physics"

// Metric accumulates a statistic over played frames.
type Metric interface {
	Name() string
	Observe(frame int, r physics.Rider)
	Value() float64
	Reset()
}

// Observer is told about every played frame.
type Observer interface {
	OnFrame(frame int, r physics.Rider)
}

type Config struct {
	From   int // first frame played
	Frames int // number of frames after From
	Keep   bool
}

type Result struct {
	// Riders holds every played pose when Config.Keep is set.
	Riders       []physics.Rider
	Metrics      map[string]float64
	FramesPlayed int
	// CrashFrame is the first frame with a broken bone, or -1.
	CrashFrame int
	// FirstInvalid is the first invalid frame before playback started.
	FirstInvalid int
}
