package physics

import "github.com/san-kum/ridersim/internal/geom"

// verlet advances every point by position Verlet with a frame time of one:
// next = 2*pos - prev + acc.
func verlet(points []Point, acc geom.Vec2) {
	for i := range points {
		p := &points[i]
		next := p.Pos.Add(p.Pos.Sub(p.Prev)).Add(acc)
		p.Prev = p.Pos
		p.Pos = next
	}
}
