package storage

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/ridersim/internal/config"
	"github.com/san-kum/ridersim/internal/metrics"
	"github.com/san-kum/ridersim/internal/sim"
	"github.com/san-kum/ridersim/internal/track"
)

func playPreset(t *testing.T, name string, frames int) (*config.Config, *sim.Result) {
	t.Helper()
	cfg := config.GetPreset(name)
	reg := track.NewRegistry()
	h, err := cfg.Open(reg)
	if err != nil {
		t.Fatal(err)
	}
	s := sim.New(reg, h)
	s.AddMetric(metrics.NewSpeed())
	result, err := s.Run(context.Background(), sim.Config{Frames: frames, Keep: true})
	if err != nil {
		t.Fatal(err)
	}
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := playPreset(t, "flat", 40)
	runID, err := st.Save(cfg, 0, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "flat" {
		t.Errorf("expected scene 'flat', got '%s'", meta.Scene)
	}
	if meta.Frames != 41 {
		t.Errorf("expected 41 frames, got %d", meta.Frames)
	}
	if meta.Metrics["speed"] != result.Metrics["speed"] {
		t.Errorf("expected speed %f, got %f", result.Metrics["speed"], meta.Metrics["speed"])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 41 {
		t.Fatalf("expected 41 frame records, got %d", len(frames))
	}
	last := frames[40]
	want := result.Riders[40].Center()
	if last.Frame != 40 || math.Abs(last.Center.Y-want.Y) > 1e-5 {
		t.Errorf("unexpected last frame %+v, want center %v", last, want)
	}
	if len(last.Points) != len(result.Riders[40].Points) {
		t.Errorf("expected %d points, got %d", len(result.Riders[40].Points), len(last.Points))
	}

	scene, err := st.LoadScene(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(scene.Lines) != len(cfg.Lines) {
		t.Errorf("expected %d scene lines, got %d", len(cfg.Lines), len(scene.Lines))
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	for _, name := range []string{"flat", "empty"} {
		cfg, result := playPreset(t, name, 5)
		if _, err := st.Save(cfg, 0, result); err != nil {
			t.Fatal(err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Error("expected empty list for a missing directory")
	}
}
