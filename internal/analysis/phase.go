package analysis

import (
	"strings"

	"github.com/san-kum/ridersim/internal/geom"
)

// PhasePortrait pairs sled height (X) with vertical speed (Y), up positive.
type PhasePortrait struct {
	Points []geom.Vec2
}

// NewPhasePortrait builds a portrait from consecutive rider centers.
func NewPhasePortrait(centers []geom.Vec2) *PhasePortrait {
	p := &PhasePortrait{}
	for i := 1; i < len(centers); i++ {
		p.Points = append(p.Points, geom.V(-centers[i].Y, centers[i-1].Y-centers[i].Y))
	}
	return p
}

// ASCII plots the portrait into a width x height block of runes, with axes
// drawn where they cross the visible range.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	b := geom.RectFromPoints(p.Points[0], p.Points[0])
	for _, pt := range p.Points {
		b = b.Include(pt)
	}

	// Add padding
	rangeX := max(b.Width(), 1)
	rangeY := max(b.Height(), 1)
	minX := b.Left - rangeX*0.1
	minY := b.Top - rangeY*0.1
	rangeX *= 1.2
	rangeY *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	toCell := func(x, y float64) (int, int) {
		col := int((x - minX) / rangeX * float64(width-1))
		row := height - 1 - int((y-minY)/rangeY*float64(height-1))
		return col, row
	}

	for _, pt := range p.Points {
		col, row := toCell(pt.X, pt.Y)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if col, _ := toCell(0, 0); minX <= 0 && col >= 0 && col < width {
		for row := range canvas {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if _, row := toCell(0, 0); minY <= 0 && row >= 0 && row < height {
		for col := range canvas[row] {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
