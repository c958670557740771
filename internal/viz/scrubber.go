package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/track"
)

const (
	speedHistory = 120
	cacheWindow  = 60
	minScale     = 0.25
	maxScale     = 16
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/40, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Scrubber is a Bubble Tea model for stepping through a track's timeline.
// Every update takes a short read handle; the shelf edit takes the write
// handle and then notifies the timeline.
type Scrubber struct {
	reg   *track.Registry
	h     track.Handle
	scene *Scene

	frame   int
	playing bool
	shelf   int // shelf line ID, 0 when absent

	rider        physics.Rider
	state        track.FrameState
	firstInvalid int
	lines        int
	speeds       []float64
	cache        []track.FrameState
	err          error
	showHelp     bool
}

func NewScrubber(reg *track.Registry, h track.Handle, width, height int) Scrubber {
	m := Scrubber{
		reg:   reg,
		h:     h,
		scene: NewScene(width, height, 1, CurrentTheme),
	}
	m.refresh()
	return m
}

// Frame is the frame under the cursor.
func (m Scrubber) Frame() int { return m.frame }

// FirstInvalid is the first invalid frame as of the last update.
func (m Scrubber) FirstInvalid() int { return m.firstInvalid }

// Shelf is the ID of the shelf line, or 0.
func (m Scrubber) Shelf() int { return m.shelf }

func (m Scrubber) Err() error { return m.err }

func (m Scrubber) Init() tea.Cmd { return tick() }

func (m Scrubber) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "right", "l":
			m.seek(1)
		case "left", "h":
			m.seek(-1)
		case "shift+right", "L":
			m.seek(10)
		case "shift+left", "H":
			m.seek(-10)
		case "home", "0":
			m.frame = 0
		case "e":
			m.toggleShelf()
		case "+", "=":
			m.zoom(0.5)
		case "-", "_":
			m.zoom(2)
		case "t":
			m.scene.Theme = NextTheme(m.scene.Theme)
		case "?":
			m.showHelp = !m.showHelp
		}
		m.refresh()
	case tea.WindowSizeMsg:
		w, h := max(msg.Width-48, 20), max(msg.Height-4, 8)
		m.scene = NewScene(w, h, m.scene.View.Scale, m.scene.Theme)
		m.refresh()
	case TickMsg:
		if m.playing {
			m.seek(1)
			m.refresh()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Scrubber) seek(delta int) {
	m.frame = max(0, m.frame+delta)
}

func (m *Scrubber) zoom(factor float64) {
	m.scene.View.Scale = min(maxScale, max(minScale, m.scene.View.Scale*factor))
}

// toggleShelf adds a line just under the rider at the current frame, or
// removes the one added before. Either edit invalidates the timeline from
// the first frame it changes.
func (m *Scrubber) toggleShelf() {
	m.err = m.reg.WithWrite(m.h, func(w *track.Writer) error {
		if m.shelf != 0 {
			_, err := w.RemoveLine(m.shelf)
			m.shelf = 0
			return err
		}
		b := m.rider.Bounds()
		y := b.Bottom + 8
		l, err := w.AddLine(*grid.NewLine(0, grid.Standard, geom.V(b.Left-40, y), geom.V(b.Right+40, y)))
		if err != nil {
			return err
		}
		m.shelf = l.ID
		return nil
	})
	if m.err != nil {
		return
	}
	m.err = m.reg.WithRead(m.h, func(r *track.Reader) error {
		r.NotifyChanged()
		return nil
	})
}

// refresh reads everything View needs under one read handle.
func (m *Scrubber) refresh() {
	m.err = m.reg.WithRead(m.h, func(r *track.Reader) error {
		rider, err := r.Frame(m.frame)
		if err != nil {
			return err
		}
		m.rider = rider
		m.state = r.FrameState(m.frame)
		m.firstInvalid = r.FirstInvalidFrame()
		m.lines = r.LineCount()

		from := max(0, m.frame-cacheWindow/2)
		m.cache = m.cache[:0]
		for n := from; n < from+cacheWindow; n++ {
			m.cache = append(m.cache, r.FrameState(n))
		}

		m.speeds = append(m.speeds, rider.Speed())
		if len(m.speeds) > speedHistory {
			m.speeds = m.speeds[1:]
		}

		m.scene.Reset(rider.Center())
		m.scene.DrawLines(r.LinesInRect(m.scene.View.World(), false))
		m.scene.DrawRider(rider, r.Topology())
		return nil
	})
}

func (m Scrubber) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render("RIDER") + "\n")

	switch {
	case m.rider.Crashed():
		s.WriteString(StatusCrashed.Render("CRASHED"))
	case m.playing:
		s.WriteString(StatusRunning.Render("PLAYING"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.frame))
	row("State", m.state.String())
	row("Invalid at", fmt.Sprintf("%d", m.firstInvalid))
	row("Lines", fmt.Sprintf("%d", m.lines))
	row("Speed", fmt.Sprintf("%.2f", m.rider.Speed()))
	c := m.rider.Center()
	row("Center", fmt.Sprintf("%.1f, %.1f", c.X, c.Y))
	if m.shelf != 0 {
		row("Shelf", fmt.Sprintf("line %d", m.shelf))
	}
	if m.err != nil {
		s.WriteString(StatusCrashed.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + SparklineChart(m.speeds, 30) + "\n")
	s.WriteString(CacheBar(m.cache, m.frame-max(0, m.frame-cacheWindow/2)) + "\n")

	s.WriteString(KeyHint.Render("\n←/→ step  ⇧←/⇧→ x10  SP play\nE shelf  +/- zoom  T theme  Q quit"))
	if m.showHelp {
		s.WriteString(KeyHint.Render("\n\nThe bar shows cached frames around the\ncursor: solid valid, shaded stale."))
	}

	canvasView := canvasStyle.Render(m.scene.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
