package track

import (
	"fmt"
	"slices"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/resource"
)

// Reader grants shared access to a track until Release. Lines returned by a
// Reader are immutable and remain usable after release.
type Reader struct {
	reg  *Registry
	h    Handle
	lock *resource.Lock
}

// Release returns the handle. It is safe to call more than once.
func (r *Reader) Release() {
	r.lock.Release()
}

// Handle is the registry handle this reader was acquired on.
func (r *Reader) Handle() Handle { return r.h }

func (r *Reader) track() *Track {
	if r.lock.Released() {
		panic(fmt.Errorf("%w (%s handle %d)", ErrReleased, r.lock.Mode(), r.h))
	}
	t, err := r.reg.lookup(r.h)
	if err != nil {
		panic(err)
	}
	return t
}

func (r *Reader) Name() string { return r.track().name }

func (r *Reader) LineCount() int { return len(r.track().lines) }

// Line resolves a line by ID.
func (r *Reader) Line(id int) (*grid.Line, bool) {
	l, ok := r.track().lines[id]
	return l, ok
}

// Lines returns every line in insertion order.
func (r *Reader) Lines() []*grid.Line {
	t := r.track()
	out := make([]*grid.Line, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.lines[id])
	}
	return out
}

// NewestLine is the most recently added line, or nil for an empty track.
func (r *Reader) NewestLine() *grid.Line {
	t := r.track()
	if len(t.order) == 0 {
		return nil
	}
	return t.lines[t.order[len(t.order)-1]]
}

// OldestLine is the earliest surviving line, or nil for an empty track.
func (r *Reader) OldestLine() *grid.Line {
	t := r.track()
	if len(t.order) == 0 {
		return nil
	}
	return t.lines[t.order[0]]
}

// LinesInRect returns lines, scenery included, indexed near rect. With
// precise set only lines whose segment actually meets rect are kept.
func (r *Reader) LinesInRect(rect geom.Rect, precise bool) []*grid.Line {
	found := r.track().editor.LinesInRect(rect)
	if !precise {
		return found
	}
	return slices.DeleteFunc(found, func(l *grid.Line) bool {
		return !rect.SegmentIntersects(l.Start, l.End)
	})
}

// SimulationLines is the number of physical lines in the simulation grid.
func (r *Reader) SimulationLines() int { return r.track().sim.Len() }

func (r *Reader) CellSize() float64 { return r.track().sim.CellSize() }

// GridVersion changes whenever the grid is repartitioned.
func (r *Reader) GridVersion() int { return r.track().sim.Version() }

func (r *Reader) Topology() *physics.Topology { return r.track().topo }

func (r *Reader) Params() physics.Params { return r.track().params }

// Start returns the start position and momentum.
func (r *Reader) Start() (pos, momentum geom.Vec2) {
	t := r.track()
	return t.start, t.momentum
}

// StartRider is the frame 0 pose.
func (r *Reader) StartRider() physics.Rider { return r.track().startRider() }

// TickBasic advances state by one frame against the current lines without
// touching the timeline. iterations <= 0 uses the track's setting.
func (r *Reader) TickBasic(state physics.Rider, iterations int) physics.Rider {
	t := r.track()
	p := t.params
	if iterations > 0 {
		p.Iterations = iterations
	}
	return physics.Simulate(state, t.sim, t.topo, p)
}

// Frame returns the pose at frame n, re-simulating stale frames as needed.
func (r *Reader) Frame(n int) (physics.Rider, error) {
	if n < 0 {
		return physics.Rider{}, fmt.Errorf("%w: %d", ErrNegativeFrame, n)
	}
	t := r.track()
	return t.timeline.frame(t, n), nil
}

// Frames returns the poses for frames [from, to].
func (r *Reader) Frames(from, to int) ([]physics.Rider, error) {
	if from < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeFrame, from)
	}
	if to < from {
		return nil, nil
	}
	t := r.track()
	out := make([]physics.Rider, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, t.timeline.frame(t, n))
	}
	return out, nil
}

func (r *Reader) FrameState(n int) FrameState { return r.track().timeline.State(n) }

func (r *Reader) FirstInvalidFrame() int { return r.track().timeline.FirstInvalidFrame() }

// Timeline exposes cache statistics.
func (r *Reader) Timeline() *Timeline { return r.track().timeline }

// NotifyChanged folds the cells recorded by earlier edits into the first
// invalid frame and returns it. Call it once a batch of edits is done; it
// needs only shared access.
func (r *Reader) NotifyChanged() int {
	t := r.track()
	return t.timeline.notifyChanged(t)
}

// Snapshot is a detached copy of a track's persistent state.
type Snapshot struct {
	Name     string
	Start    geom.Vec2
	Momentum geom.Vec2
	CellSize float64
	Lines    []grid.Line
}

func (r *Reader) Snapshot() Snapshot {
	t := r.track()
	s := Snapshot{
		Name:     t.name,
		Start:    t.start,
		Momentum: t.momentum,
		CellSize: t.sim.CellSize(),
		Lines:    make([]grid.Line, 0, len(t.order)),
	}
	for _, id := range t.order {
		s.Lines = append(s.Lines, *t.lines[id])
	}
	return s
}

// Features names the optional line properties the track uses.
func (r *Reader) Features() map[string]bool {
	t := r.track()
	f := make(map[string]bool)
	for _, l := range t.lines {
		switch l.Type {
		case grid.Acceleration:
			f["acceleration"] = true
			if l.Multiplier != grid.DefaultMultiplier {
				f["multiplier"] = true
			}
		case grid.Scenery:
			f["scenery"] = true
		}
		if l.Flipped {
			f["flipped"] = true
		}
		if l.LeftExt || l.RightExt {
			f["extensions"] = true
		}
	}
	if t.sim.CellSize() != grid.DefaultCellSize {
		f["cellsize"] = true
	}
	return f
}
