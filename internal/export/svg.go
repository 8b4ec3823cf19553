package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/slabpot/internal/grid"
)

// Palette cycles through these stroke colors.
var Palette = []string{"#00ff00", "#ff5f5f", "#5fafff", "#ffd75f", "#d787ff", "#5fffd7"}

// ProfilesToSVG draws profiles as polylines sharing one set of bounds, with
// a legend in the top-left corner. Profiles with fewer than two points are
// skipped.
func ProfilesToSVG(profiles []grid.Profile, width, height int) string {
	var drawn []grid.Profile
	for _, p := range profiles {
		if len(p.X) >= 2 && len(p.X) == len(p.Y) {
			drawn = append(drawn, p)
		}
	}
	if len(drawn) == 0 {
		return ""
	}

	// Find bounds
	minX, maxX := drawn[0].X[0], drawn[0].X[0]
	minY, maxY := drawn[0].Y[0], drawn[0].Y[0]
	for _, p := range drawn {
		for i := range p.X {
			minX, maxX = min(minX, p.X[i]), max(maxX, p.X[i])
			minY, maxY = min(minY, p.Y[i]), max(maxY, p.Y[i])
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for n, p := range drawn {
		color := Palette[n%len(Palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i := range p.X {
			x := (p.X[i] - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y[i]-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(n+1), color, escape(p.Name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
