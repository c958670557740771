package geom

import "math"

// Rect is an axis aligned world-space rectangle stored as edges.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectFromPoints returns the smallest rectangle containing a and b.
func RectFromPoints(a, b Vec2) Rect {
	return Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Max(a.Y, b.Y),
	}
}

// RectXYWH builds a rectangle from an origin and a size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

func (r Rect) Intersects(o Rect) bool {
	return r.Left <= o.Right && o.Left <= r.Right && r.Top <= o.Bottom && o.Top <= r.Bottom
}

// Include grows r so that it contains p.
func (r Rect) Include(p Vec2) Rect {
	return Rect{
		Left:   math.Min(r.Left, p.X),
		Top:    math.Min(r.Top, p.Y),
		Right:  math.Max(r.Right, p.X),
		Bottom: math.Max(r.Bottom, p.Y),
	}
}

// SegmentIntersects reports whether the segment a-b touches r.
func (r Rect) SegmentIntersects(a, b Vec2) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}
	if !r.Intersects(RectFromPoints(a, b)) {
		return false
	}
	corners := [4]Vec2{
		{r.Left, r.Top}, {r.Right, r.Top}, {r.Right, r.Bottom}, {r.Left, r.Bottom},
	}
	for i := range corners {
		if segmentsCross(a, b, corners[i], corners[(i+1)%4]) {
			return true
		}
	}
	return false
}

func segmentsCross(a, b, c, d Vec2) bool {
	o1 := orient(a, b, c)
	o2 := orient(a, b, d)
	o3 := orient(c, d, a)
	o4 := orient(c, d, b)
	return o1*o2 <= 0 && o3*o4 <= 0
}

func orient(a, b, c Vec2) float64 {
	return b.Sub(a).X*c.Sub(a).Y - b.Sub(a).Y*c.Sub(a).X
}
