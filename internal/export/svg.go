package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/track"
)

var lineColors = map[grid.LineType]string{
	grid.Standard:     "#00ccff",
	grid.Acceleration: "#ff3366",
	grid.Scenery:      "#44cc44",
}

// TrackToSVG draws a track snapshot, the path of the rider's center and the
// rider's final pose. The picture is fitted into width x height.
func TrackToSVG(s track.Snapshot, riders []physics.Rider, topo *physics.Topology, width, height int) string {
	bounds, ok := snapshotBounds(s, riders)
	if !ok {
		return ""
	}

	// Add padding
	padX := bounds.Width()*0.05 + 1
	padY := bounds.Height()*0.05 + 1
	bounds = geom.Rect{
		Left: bounds.Left - padX, Top: bounds.Top - padY,
		Right: bounds.Right + padX, Bottom: bounds.Bottom + padY,
	}
	scale := min(float64(width)/bounds.Width(), float64(height)/bounds.Height())
	project := func(p geom.Vec2) (float64, float64) {
		return (p.X - bounds.Left) * scale, (p.Y - bounds.Top) * scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, l := range s.Lines {
		x1, y1 := project(l.Start)
		x2, y2 := project(l.End)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
`, x1, y1, x2, y2, lineColors[l.Type]))
	}

	if len(riders) > 1 {
		sb.WriteString(`<path fill="none" stroke="#ffcc00" stroke-width="1" stroke-dasharray="3,2" d="M`)
		for i, r := range riders {
			x, y := project(r.Center())
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	if len(riders) > 0 && topo != nil {
		last := riders[len(riders)-1]
		color := "#ffffff"
		if last.Crashed() {
			color = "#ff4444"
		}
		sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="1.5">
`, color))
		for i, b := range topo.Bones {
			if last.Broken[i] || b.Repel {
				continue
			}
			x1, y1 := project(last.Points[b.A].Pos)
			x2, y2 := project(last.Points[b.B].Pos)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func snapshotBounds(s track.Snapshot, riders []physics.Rider) (geom.Rect, bool) {
	var b geom.Rect
	ok := false
	include := func(p geom.Vec2) {
		if !ok {
			b = geom.RectFromPoints(p, p)
			ok = true
			return
		}
		b = b.Include(p)
	}
	for _, l := range s.Lines {
		include(l.Start)
		include(l.End)
	}
	for _, r := range riders {
		for _, p := range r.Points {
			include(p.Pos)
		}
	}
	return b, ok
}
