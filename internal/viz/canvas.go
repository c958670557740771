package viz

import (
	"math"
	"strings"

	"github.com/san-kum/ridersim/internal/geom"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights a sub-pixel. The canvas is (Width*2) x (Height*4) sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Lit reports whether the character cell at (col, row) has any dot set.
func (c *Canvas) Lit(col, row int) bool {
	return c.Grid[row][col] != blank
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm. Endpoints far outside
// the canvas are clipped first so huge world lines stay cheap.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	if !c.clip(&x0, &y0, &x1, &y1) {
		return
	}
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// clip trims the segment to the sub-pixel area using Liang-Barsky.
func (c *Canvas) clip(x0, y0, x1, y1 *int) bool {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	ax, ay := float64(*x0), float64(*y0)
	dx, dy := float64(*x1)-ax, float64(*y1)-ay
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{{-dx, ax}, {dx, w - ax}, {-dy, ay}, {dy, h - ay}} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return false
		}
	}
	*x0, *y0 = int(math.Round(ax+t0*dx)), int(math.Round(ay+t0*dy))
	*x1, *y1 = int(math.Round(ax+t1*dx)), int(math.Round(ay+t1*dy))
	return true
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world coordinates onto canvas sub-pixels. Both use y down.
type Viewport struct {
	Center geom.Vec2
	// Scale is world units per sub-pixel.
	Scale  float64
	Width  int // sub-pixels
	Height int
}

func (v Viewport) ToCanvas(p geom.Vec2) (int, int) {
	x := (p.X-v.Center.X)/v.Scale + float64(v.Width)/2
	y := (p.Y-v.Center.Y)/v.Scale + float64(v.Height)/2
	return int(math.Floor(x)), int(math.Floor(y))
}

// World is the visible world rectangle.
func (v Viewport) World() geom.Rect {
	hw, hh := float64(v.Width)/2*v.Scale, float64(v.Height)/2*v.Scale
	return geom.Rect{
		Left:   v.Center.X - hw,
		Top:    v.Center.Y - hh,
		Right:  v.Center.X + hw,
		Bottom: v.Center.Y + hh,
	}
}
