package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
)

// Layer is a drawing plane. Higher layers win when cells overlap.
type Layer int

const (
	LayerScenery Layer = iota
	LayerAcceleration
	LayerStandard
	LayerRider
	layerCount
)

func layerFor(t grid.LineType) Layer {
	switch t {
	case grid.Acceleration:
		return LayerAcceleration
	case grid.Scenery:
		return LayerScenery
	default:
		return LayerStandard
	}
}

// Scene renders lines and a rider onto stacked braille canvases.
type Scene struct {
	Width, Height int // characters
	View          Viewport
	Theme         Theme
	crashed       bool
	layers        [layerCount]*Canvas
}

// NewScene builds a w x h character scene showing scale world units per
// sub-pixel.
func NewScene(w, h int, scale float64, theme Theme) *Scene {
	s := &Scene{
		Width:  w,
		Height: h,
		View:   Viewport{Scale: scale, Width: w * 2, Height: h * 4},
		Theme:  theme,
	}
	for i := range s.layers {
		s.layers[i] = NewCanvas(w, h)
	}
	return s
}

// Reset clears every layer and centers the view on c.
func (s *Scene) Reset(c geom.Vec2) {
	s.View.Center = c
	s.crashed = false
	for _, l := range s.layers {
		l.Clear()
	}
}

func (s *Scene) segment(layer Layer, a, b geom.Vec2) {
	x0, y0 := s.View.ToCanvas(a)
	x1, y1 := s.View.ToCanvas(b)
	s.layers[layer].DrawLine(x0, y0, x1, y1)
}

func (s *Scene) DrawLines(lines []*grid.Line) {
	for _, l := range lines {
		s.segment(layerFor(l.Type), l.Start, l.End)
	}
}

// DrawRider draws every intact bone. Broken bones are left out so a crash
// is visible as a detached body.
func (s *Scene) DrawRider(r physics.Rider, topo *physics.Topology) {
	s.crashed = s.crashed || r.Crashed()
	for i, b := range topo.Bones {
		if r.Broken[i] || b.Repel {
			continue
		}
		s.segment(LayerRider, r.Points[b.A].Pos, r.Points[b.B].Pos)
	}
}

func (s *Scene) styleFor(l Layer) lipgloss.Style {
	st := lipgloss.NewStyle()
	switch l {
	case LayerScenery:
		return st.Foreground(s.Theme.Scenery)
	case LayerAcceleration:
		return st.Foreground(s.Theme.Acceleration)
	case LayerRider:
		if s.crashed {
			return st.Foreground(s.Theme.Crashed)
		}
		return st.Foreground(s.Theme.Rider)
	default:
		return st.Foreground(s.Theme.Standard)
	}
}

// top returns the highest lit layer at a cell, or -1.
func (s *Scene) top(col, row int) Layer {
	for l := layerCount - 1; l >= 0; l-- {
		if s.layers[l].Lit(col, row) {
			return l
		}
	}
	return -1
}

// Plain composites the layers without color.
func (s *Scene) Plain() string {
	return s.composite(func(_ Layer, r rune) string { return string(r) })
}

// String composites the layers using the theme colors.
func (s *Scene) String() string {
	var styles [layerCount]lipgloss.Style
	for l := range styles {
		styles[l] = s.styleFor(Layer(l))
	}
	return s.composite(func(l Layer, r rune) string { return styles[l].Render(string(r)) })
}

func (s *Scene) composite(cell func(Layer, rune) string) string {
	var b strings.Builder
	for row := 0; row < s.Height; row++ {
		for col := 0; col < s.Width; col++ {
			l := s.top(col, row)
			if l < 0 {
				b.WriteRune(blank)
				continue
			}
			b.WriteString(cell(l, s.layers[l].Grid[row][col]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
