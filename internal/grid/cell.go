package grid

// GridPoint is an integer cell coordinate.
type GridPoint struct {
	X, Y int
}

// CellRect is an inclusive rectangle of cells. The zero value with Valid
// unset is empty.
type CellRect struct {
	Left, Top, Right, Bottom int
	Valid                    bool
}

// CellRectAt returns the rectangle holding exactly p.
func CellRectAt(p GridPoint) CellRect {
	return CellRect{Left: p.X, Top: p.Y, Right: p.X, Bottom: p.Y, Valid: true}
}

// Include grows r to contain p.
func (r CellRect) Include(p GridPoint) CellRect {
	if !r.Valid {
		return CellRectAt(p)
	}
	r.Left = min(r.Left, p.X)
	r.Top = min(r.Top, p.Y)
	r.Right = max(r.Right, p.X)
	r.Bottom = max(r.Bottom, p.Y)
	return r
}

// Union returns the smallest rectangle covering r and o.
func (r CellRect) Union(o CellRect) CellRect {
	if !o.Valid {
		return r
	}
	if !r.Valid {
		return o
	}
	return CellRect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
		Valid:  true,
	}
}

// Grow expands r by n cells on every side.
func (r CellRect) Grow(n int) CellRect {
	if !r.Valid {
		return r
	}
	r.Left -= n
	r.Top -= n
	r.Right += n
	r.Bottom += n
	return r
}

func (r CellRect) Contains(p GridPoint) bool {
	return r.Valid && p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

func (r CellRect) Intersects(o CellRect) bool {
	return r.Valid && o.Valid &&
		r.Left <= o.Right && o.Left <= r.Right &&
		r.Top <= o.Bottom && o.Top <= r.Bottom
}

// Points enumerates the cells of r row by row.
func (r CellRect) Points() []GridPoint {
	if !r.Valid {
		return nil
	}
	out := make([]GridPoint, 0, (r.Right-r.Left+1)*(r.Bottom-r.Top+1))
	for y := r.Top; y <= r.Bottom; y++ {
		for x := r.Left; x <= r.Right; x++ {
			out = append(out, GridPoint{x, y})
		}
	}
	return out
}
