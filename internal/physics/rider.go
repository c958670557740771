package physics

import (
	"math"

	"github.com/san-kum/ridersim/internal/geom"
)

// Point is one body point. Velocity is implicit in Pos - Prev.
type Point struct {
	Pos, Prev geom.Vec2
}

func (p Point) Velocity() geom.Vec2 { return p.Pos.Sub(p.Prev) }

// Rider is the pose at one simulated instant. Broken is indexed like the
// topology's bones. A Rider is treated as immutable once produced.
type Rider struct {
	Points []Point
	Broken []bool
}

// NewRider places the topology's rest pose at start moving with momentum
// per frame.
func NewRider(topo *Topology, start, momentum geom.Vec2) Rider {
	r := Rider{
		Points: make([]Point, len(topo.Body)),
		Broken: make([]bool, len(topo.Bones)),
	}
	for i, p := range topo.Body {
		pos := p.Add(start)
		r.Points[i] = Point{Pos: pos, Prev: pos.Sub(momentum)}
	}
	return r
}

func (r Rider) Clone() Rider {
	c := Rider{
		Points: make([]Point, len(r.Points)),
		Broken: make([]bool, len(r.Broken)),
	}
	copy(c.Points, r.Points)
	copy(c.Broken, r.Broken)
	return c
}

// Equal compares two poses bit for bit.
func (r Rider) Equal(o Rider) bool {
	if len(r.Points) != len(o.Points) || len(r.Broken) != len(o.Broken) {
		return false
	}
	for i := range r.Points {
		if !sameBits(r.Points[i].Pos, o.Points[i].Pos) || !sameBits(r.Points[i].Prev, o.Points[i].Prev) {
			return false
		}
	}
	for i := range r.Broken {
		if r.Broken[i] != o.Broken[i] {
			return false
		}
	}
	return true
}

func sameBits(a, b geom.Vec2) bool {
	return math.Float64bits(a.X) == math.Float64bits(b.X) &&
		math.Float64bits(a.Y) == math.Float64bits(b.Y)
}

// Crashed reports whether any bone has broken.
func (r Rider) Crashed() bool {
	for _, b := range r.Broken {
		if b {
			return true
		}
	}
	return false
}

// IsValid reports whether every coordinate is finite.
func (r Rider) IsValid() bool {
	for _, p := range r.Points {
		if !p.Pos.IsValid() || !p.Prev.IsValid() {
			return false
		}
	}
	return true
}

// Bounds is the world rectangle covering the current positions.
func (r Rider) Bounds() geom.Rect {
	if len(r.Points) == 0 {
		return geom.Rect{}
	}
	b := geom.RectFromPoints(r.Points[0].Pos, r.Points[0].Pos)
	for _, p := range r.Points[1:] {
		b = b.Include(p.Pos)
	}
	return b
}

// Center is the mean body point position.
func (r Rider) Center() geom.Vec2 {
	var c geom.Vec2
	if len(r.Points) == 0 {
		return c
	}
	for _, p := range r.Points {
		c = c.Add(p.Pos)
	}
	return c.Scale(1 / float64(len(r.Points)))
}

// Speed is the mean per-frame speed of the body points.
func (r Rider) Speed() float64 {
	if len(r.Points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range r.Points {
		sum += p.Velocity().Length()
	}
	return sum / float64(len(r.Points))
}
