package geom

import "math"

// Vec2 is a double precision 2D vector. The world uses screen orientation:
// +X is right, +Y is down.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) LengthSq() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec2) Length() float64 { return math.Sqrt(v.LengthSq()) }

// PerpLeft rotates v by 90 degrees. For a left-to-right vector in screen
// orientation the result points down.
func (v Vec2) PerpLeft() Vec2 { return Vec2{-v.Y, v.X} }

func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// IsValid reports whether both components are finite.
func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
