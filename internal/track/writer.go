package track

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
)

// Writer grants exclusive access to a track. It carries every Reader query;
// only a Writer can change lines or settings.
//
// Edits record the cells they touch. Call NotifyChanged after a batch to
// update the first invalid frame.
type Writer struct {
	Reader
}

// AddLine places a copy of l. A zero ID is replaced by the next free ID.
// Physical lines also enter the simulation grid.
func (w *Writer) AddLine(l grid.Line) (*grid.Line, error) {
	t := w.track()
	if err := checkLine(l); err != nil {
		return nil, err
	}
	id := l.ID
	if id == 0 {
		id = t.nextID + 1
	}
	if id < 0 {
		return nil, fmt.Errorf("line id must be positive, got %d", id)
	}
	if _, ok := t.lines[id]; ok {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateLine, id)
	}
	placed := l.With(id)
	if err := t.editor.Insert(placed); err != nil {
		return nil, err
	}
	if placed.Type.Physical() {
		if err := t.sim.Insert(placed); err != nil {
			_, _ = t.editor.Remove(id)
			return nil, err
		}
		if err := t.timeline.saveCells(t, placed); err != nil {
			return nil, err
		}
	}
	t.lines[id] = placed
	t.order = append(t.order, id)
	t.nextID = max(t.nextID, id)
	return placed, nil
}

// RemoveLine deletes a line and returns it.
func (w *Writer) RemoveLine(id int) (*grid.Line, error) {
	t := w.track()
	l, ok := t.lines[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLine, id)
	}
	if _, err := t.editor.Remove(id); err != nil {
		return nil, err
	}
	if l.Type.Physical() {
		if _, err := t.sim.Remove(id); err != nil {
			return nil, err
		}
		if err := t.timeline.saveCells(t, l); err != nil {
			return nil, err
		}
	}
	delete(t.lines, id)
	if i := slices.Index(t.order, id); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	return l, nil
}

// ReplaceLine swaps the line with id for a copy of l carrying the same ID.
// The replacement becomes the newest line.
func (w *Writer) ReplaceLine(id int, l grid.Line) (*grid.Line, error) {
	if err := checkLine(l); err != nil {
		return nil, err
	}
	old, err := w.RemoveLine(id)
	if err != nil {
		return nil, err
	}
	l.ID = id
	placed, err := w.AddLine(l)
	if err != nil {
		if _, rerr := w.AddLine(*old); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}
	return placed, nil
}

func checkLine(l grid.Line) error {
	switch {
	case l.Type != grid.Standard && l.Type != grid.Acceleration && l.Type != grid.Scenery:
		return fmt.Errorf("%w: type %d", ErrInvalidLine, l.Type)
	case !l.Start.IsValid() || !l.End.IsValid():
		return fmt.Errorf("%w: endpoints %v %v", ErrInvalidLine, l.Start, l.End)
	}
	return nil
}

func (w *Writer) SetName(name string) {
	w.track().name = name
}

// SetStart moves the start pose. Every cached frame depends on it, so the
// timeline is rebuilt from scratch.
func (w *Writer) SetStart(pos, momentum geom.Vec2) {
	t := w.track()
	t.start, t.momentum = pos, momentum
	t.timeline.mu.Lock()
	t.timeline.reset(t.startRider())
	t.timeline.mu.Unlock()
	slog.Debug("timeline reset", "reason", "start moved")
}

// Repartition re-indexes both grids with a new cell size and re-validates
// the timeline against the new partition. It returns the first invalid
// frame.
func (w *Writer) Repartition(cellSize float64) (int, error) {
	t := w.track()
	if err := t.sim.Repartition(cellSize); err != nil {
		return 0, err
	}
	if err := t.editor.Repartition(cellSize); err != nil {
		return 0, err
	}
	return t.timeline.rescan(t), nil
}
