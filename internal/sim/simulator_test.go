package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/track"
)

func newFloorTrack(t *testing.T, reg *track.Registry) track.Handle {
	t.Helper()
	h, err := reg.Create(track.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	err = reg.WithWrite(h, func(w *track.Writer) error {
		_, err := w.AddLine(*grid.NewLine(0, grid.Standard, geom.V(-50, 20), geom.V(600, 20)))
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(frame int, r physics.Rider) {
	t.count++
	t.sum += r.Center().Y
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type frameLog []int

func (f *frameLog) OnFrame(frame int, r physics.Rider) { *f = append(*f, frame) }

func TestSimulatorRun(t *testing.T) {
	reg := track.NewRegistry()
	s := New(reg, newFloorTrack(t, reg))

	metric := &testMetric{}
	var log frameLog
	s.AddMetric(metric)
	s.AddObserver(&log)

	result, err := s.Run(context.Background(), Config{Frames: 100, Keep: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Riders) != 101 {
		t.Errorf("expected 101 riders, got %d", len(result.Riders))
	}
	if result.FramesPlayed != 101 || metric.count != 101 || len(log) != 101 {
		t.Errorf("expected 101 observations, got %d/%d/%d", result.FramesPlayed, metric.count, len(log))
	}
	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if result.FirstInvalid != 1 {
		t.Errorf("expected a cold cache, got first invalid %d", result.FirstInvalid)
	}
	if result.CrashFrame != -1 {
		t.Errorf("rider should not crash on a flat floor, crashed at %d", result.CrashFrame)
	}

	again, err := s.Run(context.Background(), Config{From: 50, Frames: 10, Keep: true})
	if err != nil {
		t.Fatal(err)
	}
	if again.FirstInvalid != 101 {
		t.Errorf("expected warm cache, got first invalid %d", again.FirstInvalid)
	}
	if !again.Riders[0].Equal(result.Riders[50]) {
		t.Error("replayed frame differs from the first run")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	reg := track.NewRegistry()
	s := New(reg, newFloorTrack(t, reg))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative from", Config{From: -1, Frames: 10}},
		{"negative frames", Config{Frames: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorCancel(t *testing.T) {
	reg := track.NewRegistry()
	s := New(reg, newFloorTrack(t, reg))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx, Config{Frames: 10})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithCallback_AllowsEditsBetweenFrames(t *testing.T) {
	reg := track.NewRegistry()
	h := newFloorTrack(t, reg)
	s := New(reg, h)

	edited := false
	err := s.RunWithCallback(context.Background(), Config{Frames: 30}, func(frame int, r physics.Rider) bool {
		if frame == 10 {
			// a writer can get in between frames
			err := reg.WithWrite(h, func(w *track.Writer) error {
				_, err := w.AddLine(*grid.NewLine(0, grid.Standard, geom.V(-50, 10), geom.V(600, 10)))
				return err
			})
			if err != nil {
				t.Error(err)
			}
			edited = true
		}
		return frame < 20
	})
	if err != nil {
		t.Fatal(err)
	}
	if !edited {
		t.Error("callback never reached frame 10")
	}
}

func TestEnsemble(t *testing.T) {
	reg := track.NewRegistry()
	handles := []track.Handle{newFloorTrack(t, reg), newFloorTrack(t, reg), newFloorTrack(t, reg)}

	e := NewEnsemble(reg, handles, func() []Metric { return []Metric{&testMetric{}} })
	results, err := e.Run(context.Background(), Config{Frames: 60, Keep: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(handles) {
		t.Fatalf("expected %d results, got %d", len(handles), len(results))
	}
	for i := 1; i < len(results); i++ {
		if !results[i].Riders[60].Equal(results[0].Riders[60]) {
			t.Errorf("track %d diverged from identical track 0", i)
		}
		if results[i].Metrics["test"] != results[0].Metrics["test"] {
			t.Errorf("track %d metric differs", i)
		}
	}
}
