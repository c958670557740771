package grid

import (
	"math"

	"github.com/san-kum/ridersim/internal/geom"
)

// LineType tags a line with how it takes part in the simulation.
type LineType int

const (
	Standard LineType = iota
	Acceleration
	Scenery
)

func (t LineType) String() string {
	switch t {
	case Standard:
		return "standard"
	case Acceleration:
		return "acceleration"
	case Scenery:
		return "scenery"
	default:
		return "unknown"
	}
}

// Physical reports whether lines of this type collide with the rider.
func (t LineType) Physical() bool {
	return t == Standard || t == Acceleration
}

// ParseLineType is the inverse of String.
func ParseLineType(s string) (LineType, error) {
	switch s {
	case "standard", "":
		return Standard, nil
	case "acceleration", "accel":
		return Acceleration, nil
	case "scenery":
		return Scenery, nil
	}
	return 0, &LineTypeError{Name: s}
}

const (
	// Zone is how far behind its collision side a line still catches points.
	Zone = 10.0
	// MaxExtensionRatio caps an endpoint extension as a fraction of the line.
	MaxExtensionRatio = 0.25
	// AccelerationFactor scales an acceleration line's multiplier per contact.
	AccelerationFactor = 0.1
	// DefaultMultiplier is the acceleration multiplier when none is given.
	DefaultMultiplier = 1.0
)

// Line is a placed segment. A Line is immutable once created; editing a line
// means replacing it.
type Line struct {
	ID         int
	Type       LineType
	Start, End geom.Vec2
	Flipped    bool
	LeftExt    bool
	RightExt   bool
	Multiplier float64

	diff       geom.Vec2
	normal     geom.Vec2
	dir        geom.Vec2
	invLenSq   float64
	limLeft    float64
	limRight   float64
	prepared   bool
	degenerate bool
}

// NewLine builds a line and precomputes its collision frame.
func NewLine(id int, typ LineType, start, end geom.Vec2) *Line {
	return (&Line{ID: id, Type: typ, Start: start, End: end}).prepare()
}

// With returns a prepared copy of l carrying id. Used when a line created
// without identity is placed into a track.
func (l Line) With(id int) *Line {
	l.ID = id
	l.prepared = false
	return l.prepare()
}

func (l *Line) prepare() *Line {
	if l.prepared {
		return l
	}
	if l.Type == Acceleration && l.Multiplier == 0 {
		l.Multiplier = DefaultMultiplier
	}
	l.diff = l.End.Sub(l.Start)
	lenSq := l.diff.LengthSq()
	if lenSq == 0 {
		l.degenerate = true
		l.prepared = true
		return l
	}
	length := math.Sqrt(lenSq)
	l.invLenSq = 1 / lenSq
	l.dir = l.diff.Scale(1 / length)
	l.normal = l.dir.PerpLeft()
	if l.Flipped {
		l.normal = l.normal.Scale(-1)
	}
	ext := math.Min(MaxExtensionRatio, Zone/length)
	l.limLeft, l.limRight = 0, 1
	if l.LeftExt {
		l.limLeft = -ext
	}
	if l.RightExt {
		l.limRight = 1 + ext
	}
	l.prepared = true
	return l
}

// Normal is the unit vector pointing from the collision side into the line.
func (l *Line) Normal() geom.Vec2 { return l.normal }

func (l *Line) Length() float64 { return l.diff.Length() }

// Bounds is the world-space bounding box of the segment.
func (l *Line) Bounds() geom.Rect { return geom.RectFromPoints(l.Start, l.End) }

// Contact is the state of one body point as seen by collision.
type Contact struct {
	Pos, Prev geom.Vec2
	Friction  float64
}

// Interact resolves a point against the line. A point moving into the line
// that sits within Zone behind it is projected back onto the line, friction
// removes tangential velocity and acceleration lines push it along. The
// second return value reports whether the line acted.
func (l *Line) Interact(c Contact) (Contact, bool) {
	if !l.Type.Physical() || l.degenerate {
		return c, false
	}
	vel := c.Pos.Sub(c.Prev)
	if vel.Dot(l.normal) <= 0 {
		return c, false
	}
	rel := c.Pos.Sub(l.Start)
	depth := rel.Dot(l.normal)
	if depth <= 0 || depth >= Zone {
		return c, false
	}
	along := rel.Dot(l.diff) * l.invLenSq
	if along < l.limLeft || along > l.limRight {
		return c, false
	}

	pos := c.Pos.Sub(l.normal.Scale(depth))
	prev := c.Prev

	// friction removes at most friction*depth of tangential velocity
	tangential := vel.Dot(l.dir)
	limit := c.Friction * depth
	prev = prev.Add(l.dir.Scale(clamp(tangential, -limit, limit)))

	if l.Type == Acceleration {
		prev = prev.Sub(l.dir.Scale(l.Multiplier * AccelerationFactor))
	}
	return Contact{Pos: pos, Prev: prev, Friction: c.Friction}, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
