package track

import (
	"log/slog"
	"sync"

	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
)

// FrameState classifies a frame index against the cache.
type FrameState int

const (
	// Uncomputed frames have never been simulated or fell outside retention.
	Uncomputed FrameState = iota
	// Valid frames are cached and below the first invalid frame.
	Valid
	// Stale frames are cached but at or past the first invalid frame.
	Stale
)

func (s FrameState) String() string {
	switch s {
	case Valid:
		return "valid"
	case Stale:
		return "stale"
	default:
		return "uncomputed"
	}
}

// Frame is one cached simulation step.
type Frame struct {
	Rider physics.Rider
	// Cells is every grid cell consulted while producing Rider.
	Cells grid.CellRect
	// Version is the grid version Cells was computed against.
	Version int
}

// Timeline caches simulated frames and tracks which of them an edit may have
// invalidated. Frame 0 is the start pose and is always valid.
//
// The timeline has its own mutex so that concurrent readers can extend the
// cache. Callers always hold a track handle first.
type Timeline struct {
	mu           sync.Mutex
	frames       []Frame
	firstInvalid int
	retention    int
	changed      map[grid.GridPoint]struct{}

	// tail is the last pose simulated past the retention window, so
	// playing forward continues from it instead of from the window's end.
	tail      tailFrame
	simulated int // physics steps taken, for tests
}

type tailFrame struct {
	n       int // 0 when unset
	rider   physics.Rider
	version int
}

func newTimeline(start physics.Rider, retention int) *Timeline {
	tl := &Timeline{
		retention: retention,
		changed:   make(map[grid.GridPoint]struct{}),
	}
	tl.reset(start)
	return tl
}

// reset drops every cached frame but the start pose.
func (tl *Timeline) reset(start physics.Rider) {
	tl.frames = append(tl.frames[:0], Frame{Rider: start})
	tl.firstInvalid = 1
	tl.tail = tailFrame{}
	clear(tl.changed)
}

// capacity is the number of frames the cache may hold, or 0 for no limit.
func (tl *Timeline) capacity() int {
	return tl.retention
}

func (tl *Timeline) FirstInvalidFrame() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.firstInvalid
}

// Cached is the number of frames currently held, valid or stale.
func (tl *Timeline) Cached() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.frames)
}

func (tl *Timeline) State(n int) FrameState {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	switch {
	case n < 0 || n >= len(tl.frames):
		return Uncomputed
	case n < tl.firstInvalid:
		return Valid
	default:
		return Stale
	}
}

// PendingCells is the number of changed cells not yet folded into the
// first invalid frame.
func (tl *Timeline) PendingCells() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.changed)
}

// frame returns the pose at n, re-simulating the invalid suffix up to n.
// Frames past the retention window are simulated but not cached.
func (tl *Timeline) frame(t *Track, n int) physics.Rider {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	target := n
	if c := tl.capacity(); c > 0 && target > c-1 {
		target = c - 1
	}
	if target >= tl.firstInvalid {
		from := tl.firstInvalid
		for i := from; i <= target; i++ {
			next, cells := physics.Step(tl.frames[i-1].Rider, t.sim, t.topo, t.params)
			tl.simulated++
			f := Frame{Rider: next, Cells: cells, Version: t.sim.Version()}
			if i < len(tl.frames) {
				tl.frames[i] = f
			} else {
				tl.frames = append(tl.frames, f)
			}
		}
		tl.firstInvalid = target + 1
		tl.tail = tailFrame{}
		slog.Debug("timeline recomputed", "from", from, "to", target)
	}
	if n <= target {
		return tl.frames[n].Rider
	}

	i, r := target, tl.frames[target].Rider
	if tl.tail.n > target && tl.tail.n <= n && tl.tail.version == t.sim.Version() {
		i, r = tl.tail.n, tl.tail.rider
	}
	for i < n {
		r = physics.Simulate(r, t.sim, t.topo, t.params)
		tl.simulated++
		i++
	}
	tl.tail = tailFrame{n: n, rider: r, version: t.sim.Version()}
	return r
}

// saveCells records the cells covered by a segment that was just inserted
// into or removed from the simulation grid.
func (tl *Timeline) saveCells(t *Track, l *grid.Line) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.tail = tailFrame{}

	cells, err := t.sim.Positions(l.Start, l.End, t.sim.Version())
	if err != nil {
		return err
	}
	for _, p := range cells {
		tl.changed[p] = struct{}{}
	}
	return nil
}

// notifyChanged folds the pending cells into the first invalid frame and
// returns the new value. It only ever lowers the watermark.
func (tl *Timeline) notifyChanged(t *Track) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if len(tl.changed) == 0 {
		return tl.firstInvalid
	}
	var region grid.CellRect
	for p := range tl.changed {
		region = region.Include(p)
	}
	pending := len(tl.changed)
	first := tl.firstInteraction(t, region)
	clear(tl.changed)
	tl.tail = tailFrame{}

	if first > 0 && first < tl.firstInvalid {
		slog.Debug("timeline invalidated", "frame", first, "was", tl.firstInvalid, "cells", pending)
		tl.firstInvalid = first
	}
	return tl.firstInvalid
}

// rescan re-checks every valid frame after the grid was repartitioned. A
// frame's cell record no longer describes the new partition, so each one is
// re-simulated until the first that differs.
func (tl *Timeline) rescan(t *Track) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	clear(tl.changed)
	tl.tail = tailFrame{}
	first := tl.firstInteraction(t, grid.CellRect{})
	if first > 0 && first < tl.firstInvalid {
		slog.Debug("timeline invalidated by repartition", "frame", first, "was", tl.firstInvalid)
		tl.firstInvalid = first
	}
	return tl.firstInvalid
}

// firstInteraction returns the earliest valid frame whose result changes
// under the current grid, or -1. Only frames whose consulted cells overlap
// the pending change are re-simulated. Frames recorded against an older
// grid version are always re-simulated.
func (tl *Timeline) firstInteraction(t *Track, region grid.CellRect) int {
	version := t.sim.Version()
	for i := 1; i < tl.firstInvalid && i < len(tl.frames); i++ {
		f := &tl.frames[i]
		if f.Version != version {
			if tl.checkInteraction(t, i) {
				return i
			}
			continue
		}
		if !region.Intersects(f.Cells) || !tl.touchesChanged(f.Cells) {
			continue
		}
		if tl.checkInteraction(t, i) {
			return i
		}
	}
	return -1
}

func (tl *Timeline) touchesChanged(cells grid.CellRect) bool {
	for p := range tl.changed {
		if cells.Contains(p) {
			return true
		}
	}
	return false
}

// checkInteraction re-simulates frame i from its cached predecessor and
// reports whether the result differs. An unchanged frame takes the fresh
// cell record.
func (tl *Timeline) checkInteraction(t *Track, i int) bool {
	next, cells := physics.Step(tl.frames[i-1].Rider, t.sim, t.topo, t.params)
	if !next.Equal(tl.frames[i].Rider) {
		return true
	}
	tl.frames[i].Cells = cells
	tl.frames[i].Version = t.sim.Version()
	return false
}
