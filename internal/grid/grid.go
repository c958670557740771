package grid

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/ridersim/internal/geom"
)

// DefaultCellSize is the cell edge of a new grid.
const DefaultCellSize = 14.0

// Grid maps cells to the lines whose bounding box overlaps them. Lines in a
// cell are kept sorted by ID so every query returns them in the same order.
//
// The version counter changes whenever the partitioning changes. Cell
// coordinates computed against one version must not be reused against
// another.
//
// Grid is not safe for concurrent mutation; callers serialise access through
// the track's resource lock.
type Grid struct {
	cellSize float64
	version  int
	cells    map[GridPoint][]*Line
	lines    map[int]*Line
}

func New(cellSize float64) (*Grid, error) {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidCellSize, cellSize)
	}
	return &Grid{
		cellSize: cellSize,
		version:  1,
		cells:    make(map[GridPoint][]*Line),
		lines:    make(map[int]*Line),
	}, nil
}

func (g *Grid) CellSize() float64 { return g.cellSize }

// Version identifies the current partitioning.
func (g *Grid) Version() int { return g.version }

// Len is the number of indexed lines.
func (g *Grid) Len() int { return len(g.lines) }

// CellOf returns the cell containing p.
func (g *Grid) CellOf(p geom.Vec2) GridPoint {
	return GridPoint{
		X: int(math.Floor(p.X / g.cellSize)),
		Y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// CellsFor returns the cells overlapped by the bounding box of a and b.
func (g *Grid) CellsFor(a, b geom.Vec2) CellRect {
	return CellRectAt(g.CellOf(a)).Include(g.CellOf(b))
}

// CellsForRect returns the cells overlapped by r.
func (g *Grid) CellsForRect(r geom.Rect) CellRect {
	return g.CellsFor(geom.V(r.Left, r.Top), geom.V(r.Right, r.Bottom))
}

// Positions enumerates the cells a line from start to end would be indexed
// in. version must match the grid's current version.
func (g *Grid) Positions(start, end geom.Vec2, version int) ([]GridPoint, error) {
	if version != g.version {
		return nil, fmt.Errorf("%w: have %d, current %d", ErrStaleVersion, version, g.version)
	}
	return g.CellsFor(start, end).Points(), nil
}

// Insert indexes l in every cell its bounding box overlaps.
func (g *Grid) Insert(l *Line) error {
	if _, ok := g.lines[l.ID]; ok {
		return fmt.Errorf("%w: id %d", ErrDuplicateLine, l.ID)
	}
	g.lines[l.ID] = l
	g.register(l)
	return nil
}

func (g *Grid) register(l *Line) {
	for _, p := range g.CellsFor(l.Start, l.End).Points() {
		cell := g.cells[p]
		i, _ := slices.BinarySearchFunc(cell, l.ID, byID)
		g.cells[p] = slices.Insert(cell, i, l)
	}
}

// Remove drops l from every cell it was indexed in.
func (g *Grid) Remove(id int) (*Line, error) {
	l, ok := g.lines[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownLine, id)
	}
	delete(g.lines, id)
	for _, p := range g.CellsFor(l.Start, l.End).Points() {
		cell := g.cells[p]
		i, found := slices.BinarySearchFunc(cell, id, byID)
		if !found {
			continue
		}
		cell = slices.Delete(cell, i, i+1)
		if len(cell) == 0 {
			delete(g.cells, p)
		} else {
			g.cells[p] = cell
		}
	}
	return l, nil
}

// Line resolves an indexed line by ID.
func (g *Grid) Line(id int) (*Line, bool) {
	l, ok := g.lines[id]
	return l, ok
}

// LinesIn returns the lines registered in cell p in ID order. The slice is
// owned by the grid.
func (g *Grid) LinesIn(p GridPoint) []*Line {
	return g.cells[p]
}

// LinesInCells collects the distinct lines registered anywhere in r, in ID
// order.
func (g *Grid) LinesInCells(r CellRect) []*Line {
	if !r.Valid {
		return nil
	}
	var out []*Line
	for y := r.Top; y <= r.Bottom; y++ {
		for x := r.Left; x <= r.Right; x++ {
			out = append(out, g.cells[GridPoint{x, y}]...)
		}
	}
	if len(out) < 2 {
		return out
	}
	slices.SortFunc(out, func(a, b *Line) int { return cmp.Compare(a.ID, b.ID) })
	return slices.CompactFunc(out, func(a, b *Line) bool { return a.ID == b.ID })
}

// LinesNear returns the lines that may act on a point moving from a to b,
// along with the cells that were consulted.
func (g *Grid) LinesNear(a, b geom.Vec2) ([]*Line, CellRect) {
	cells := g.CellsFor(a, b).Grow(g.reach())
	return g.LinesInCells(cells), cells
}

// reach is how many cells a contact can lie from a line's bounding box. A
// point may sit Zone behind an endpoint extension that is itself up to Zone
// long, so on one axis it can be up to 2*Zone away.
func (g *Grid) reach() int {
	return max(1, int(math.Ceil(2*Zone/g.cellSize)))
}

// LinesInRect returns the lines indexed in cells overlapping r. The result
// may include lines that do not touch r itself.
func (g *Grid) LinesInRect(r geom.Rect) []*Line {
	return g.LinesInCells(g.CellsForRect(r))
}

// Repartition re-indexes every line with a new cell size and bumps the
// version.
func (g *Grid) Repartition(cellSize float64) error {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidCellSize, cellSize)
	}
	g.cellSize = cellSize
	g.version++
	g.cells = make(map[GridPoint][]*Line, len(g.cells))
	ids := make([]int, 0, len(g.lines))
	for id := range g.lines {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		g.register(g.lines[id])
	}
	return nil
}

func byID(l *Line, id int) int { return cmp.Compare(l.ID, id) }
