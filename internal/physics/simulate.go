package physics

import (
	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
)

// LineQuery finds the lines that may act on a point moving from a to b and
// reports the cells it consulted. *grid.Grid implements it.
type LineQuery interface {
	LinesNear(a, b geom.Vec2) ([]*grid.Line, grid.CellRect)
}

// Params are the per-frame physics settings.
type Params struct {
	Gravity    geom.Vec2
	Iterations int
}

func DefaultParams() Params {
	return Params{Gravity: Gravity, Iterations: DefaultIterations}
}

func (p Params) iterations() int {
	if p.Iterations <= 0 {
		return DefaultIterations
	}
	return p.Iterations
}

// Simulate advances prev by one frame.
func Simulate(prev Rider, lines LineQuery, topo *Topology, p Params) Rider {
	next, _ := Step(prev, lines, topo, p)
	return next
}

// Step advances prev by one frame and also returns every grid cell the
// frame's collision queries consulted. A line edit outside those cells
// cannot change the result.
func Step(prev Rider, lines LineQuery, topo *Topology, p Params) (Rider, grid.CellRect) {
	next := prev.Clone()
	verlet(next.Points, p.Gravity)

	var touched grid.CellRect
	for i := 0; i < p.iterations(); i++ {
		relax(&next, topo)
		touched = touched.Union(collide(next.Points, lines, topo))
	}
	return next, touched
}

// relax applies every bone once in topology order.
func relax(r *Rider, topo *Topology) {
	for i, b := range topo.Bones {
		if r.Broken[i] {
			continue
		}
		a, c := &r.Points[b.A], &r.Points[b.B]
		d := a.Pos.Sub(c.Pos)
		length := d.Length()
		if length == 0 || (b.Repel && length >= b.Rest) {
			continue
		}
		scalar := (length - b.Rest) / length * 0.5
		if b.Breakable && scalar > b.Rest*topo.Endurance*0.5 {
			r.Broken[i] = true
			continue
		}
		offset := d.Scale(scalar)
		a.Pos = a.Pos.Sub(offset)
		c.Pos = c.Pos.Add(offset)
	}
}

func collide(points []Point, lines LineQuery, topo *Topology) grid.CellRect {
	var touched grid.CellRect
	for i := range points {
		p := &points[i]
		near, cells := lines.LinesNear(p.Prev, p.Pos)
		touched = touched.Union(cells)
		c := grid.Contact{Pos: p.Pos, Prev: p.Prev, Friction: topo.friction(i)}
		for _, l := range near {
			c, _ = l.Interact(c)
		}
		p.Pos, p.Prev = c.Pos, c.Prev
	}
	return touched
}
