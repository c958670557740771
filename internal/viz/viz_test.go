package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/track"
)

func TestCanvas_SetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(10, 0)

	if got := c.Grid[0][0]; got != blank|0x1 {
		t.Errorf("expected dot 1, got %U", got)
	}
	if got := c.Grid[0][1]; got != blank|0x80 {
		t.Errorf("expected dot 8, got %U", got)
	}

	c.Clear()
	if c.Lit(0, 0) || c.Lit(1, 0) {
		t.Error("expected a blank canvas after clear")
	}
}

func TestCanvas_DrawLineClips(t *testing.T) {
	c := NewCanvas(10, 2)
	c.DrawLine(-1000, 4, 1000, 4)

	for col := 0; col < c.Width; col++ {
		if !c.Lit(col, 1) {
			t.Errorf("expected column %d lit", col)
		}
		if c.Lit(col, 0) {
			t.Errorf("expected row 0 blank at column %d", col)
		}
	}

	c.Clear()
	c.DrawLine(-50, -50, -10, -60)
	if strings.ContainsFunc(c.String(), func(r rune) bool { return r != blank && r != '\n' }) {
		t.Error("segment fully outside should draw nothing")
	}
}

func TestViewport(t *testing.T) {
	v := Viewport{Center: geom.V(100, 50), Scale: 2, Width: 40, Height: 20}

	x, y := v.ToCanvas(geom.V(100, 50))
	if x != 20 || y != 10 {
		t.Errorf("center mapped to %d,%d", x, y)
	}
	x, y = v.ToCanvas(geom.V(60, 30))
	if x != 0 || y != 0 {
		t.Errorf("top-left mapped to %d,%d", x, y)
	}

	w := v.World()
	if w.Left != 60 || w.Right != 140 || w.Top != 30 || w.Bottom != 70 {
		t.Errorf("unexpected world rect %+v", w)
	}
}

func TestScene_RiderDrawsOverLines(t *testing.T) {
	s := NewScene(20, 10, 1, ThemeMinimal)
	topo := physics.DefaultTopology()
	rider := physics.NewRider(topo, geom.V(0, 0), geom.Vec2{})

	s.Reset(rider.Center())
	s.DrawLines([]*grid.Line{grid.NewLine(1, grid.Scenery, geom.V(-100, 0), geom.V(100, 0))})
	s.DrawRider(rider, topo)

	x, y := s.View.ToCanvas(rider.Points[physics.SledBL].Pos)
	if got := s.top(x/2, y/4); got != LayerRider {
		t.Errorf("expected rider layer on top, got %d", got)
	}
	if plain := s.Plain(); strings.Count(plain, "\n") != 10 {
		t.Errorf("expected 10 rows, got %q", plain)
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
	if got := SparklineChart([]float64{1, 2, 3}, 3); !strings.Contains(got, "█") {
		t.Errorf("expected a full bar for the maximum, got %q", got)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("unknown theme should fall back to the default")
	}
	seen := map[string]bool{}
	th := ThemeCyberpunk
	for range Themes {
		seen[th.Name] = true
		th = NextTheme(th)
	}
	if len(seen) != len(ThemeNames()) {
		t.Errorf("NextTheme visited %d of %d themes", len(seen), len(Themes))
	}
}

func newScrubber(t *testing.T) (Scrubber, *track.Registry, track.Handle) {
	t.Helper()
	reg := track.NewRegistry()
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
	return NewScrubber(reg, h, 40, 12), reg, h
}

func press(m Scrubber, msg tea.KeyMsg) Scrubber {
	next, _ := m.Update(msg)
	return next.(Scrubber)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestScrubber_Seek(t *testing.T) {
	m, _, _ := newScrubber(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(m, tea.KeyMsg{Type: tea.KeyShiftRight})
	if m.Frame() != 11 {
		t.Errorf("expected frame 11, got %d", m.Frame())
	}
	m = press(m, runes("H"))
	m = press(m, runes("H"))
	if m.Frame() != 0 {
		t.Errorf("seeking back should stop at 0, got %d", m.Frame())
	}
	if m.Err() != nil {
		t.Fatal(m.Err())
	}
	if !strings.Contains(m.View(), "Frame") {
		t.Error("view is missing the status panel")
	}
}

func TestScrubber_ShelfInvalidates(t *testing.T) {
	m, reg, h := newScrubber(t)
	for range 8 {
		m = press(m, runes("L"))
	}
	if m.FirstInvalid() != 81 {
		t.Fatalf("expected frames 0..80 cached, first invalid %d", m.FirstInvalid())
	}

	m = press(m, runes("e"))
	if m.Err() != nil {
		t.Fatal(m.Err())
	}
	if m.Shelf() == 0 {
		t.Fatal("expected a shelf line")
	}

	var lines int
	_ = reg.WithRead(h, func(r *track.Reader) error {
		lines = r.LineCount()
		return nil
	})
	if lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}

	m = press(m, runes("e"))
	if m.Shelf() != 0 {
		t.Error("expected the shelf to be removed")
	}
}
