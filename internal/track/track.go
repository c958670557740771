package track

import (
	"fmt"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/resource"
)

// Options configure a new Track.
type Options struct {
	Name      string
	Topology  *physics.Topology // nil selects the default rider
	Params    physics.Params
	Start     geom.Vec2
	Momentum  geom.Vec2
	CellSize  float64 // 0 selects grid.DefaultCellSize
	Retention int     // cached frames kept, 0 keeps every frame
}

func DefaultOptions() Options {
	return Options{
		Name:     "untitled",
		Params:   physics.DefaultParams(),
		Momentum: physics.StartingMomentum,
		CellSize: grid.DefaultCellSize,
	}
}

// Track is the editable aggregate: lines, the simulation and editor grids,
// the rider topology and the timeline. Every field is guarded by sync and is
// only reached through a Reader or Writer.
type Track struct {
	sync resource.Sync

	name     string
	lines    map[int]*grid.Line
	order    []int // insertion order, oldest first
	nextID   int
	sim      *grid.Grid // physical lines only
	editor   *grid.Grid // every line
	topo     *physics.Topology
	params   physics.Params
	start    geom.Vec2
	momentum geom.Vec2
	timeline *Timeline
}

// New validates the topology and builds an empty track.
func New(opts Options) (*Track, error) {
	topo := opts.Topology
	if topo == nil {
		topo = physics.DefaultTopology()
	}
	if err := topo.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rider topology: %w", err)
	}
	if opts.Retention < 0 {
		return nil, fmt.Errorf("retention must not be negative, got %d", opts.Retention)
	}
	cellSize := opts.CellSize
	if cellSize == 0 {
		cellSize = grid.DefaultCellSize
	}
	sim, err := grid.New(cellSize)
	if err != nil {
		return nil, err
	}
	editor, err := grid.New(cellSize)
	if err != nil {
		return nil, err
	}

	t := &Track{
		name:     opts.Name,
		lines:    make(map[int]*grid.Line),
		sim:      sim,
		editor:   editor,
		topo:     topo,
		params:   opts.Params,
		start:    opts.Start,
		momentum: opts.Momentum,
	}
	t.timeline = newTimeline(t.startRider(), opts.Retention)
	return t, nil
}

func (t *Track) startRider() physics.Rider {
	return physics.NewRider(t.topo, t.start, t.momentum)
}
