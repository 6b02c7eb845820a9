package export

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/phsim/internal/beaker"
	"github.com/san-kum/phsim/internal/chem"
)

const fallbackColor = "#888888"

// CurveToSVG draws a titration curve on a fixed 0–14 pH axis. A positive
// equivalenceVolume inside the sampled range adds a dashed marker.
func CurveToSVG(curve []chem.CurvePoint, width, height int, strokeColor string, equivalenceVolume float64) string {
	if len(curve) < 2 {
		return ""
	}

	minX, maxX := curve[0].Volume, curve[len(curve)-1].Volume
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}
	x := func(v float64) float64 { return (v - minX) / rangeX * float64(width) }
	y := func(ph float64) float64 {
		ph = min(max(ph, 0), chem.PKw)
		return float64(height) - ph/chem.PKw*float64(height)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-width="1"/>
`, width, height, width, height, y(chem.NeutralPH), width, y(chem.NeutralPH)))

	if equivalenceVolume > minX && equivalenceVolume <= maxX {
		ex := x(equivalenceVolume)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%d" stroke="#666666" stroke-dasharray="4 4"/>
`, ex, ex, height))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range curve {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x(p.Volume), y(p.PH)))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x(p.Volume), y(p.PH)))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// BeakerToSVG draws each particle as a circle in its grid cell. Row 0 is
// the bottom of the beaker. Particles mid-transition are drawn at progress
// between their display and target colors.
func BeakerToSVG(particles []beaker.Particle, columns, rows int, cell float64, progress float64) string {
	width := float64(columns) * cell
	height := float64(rows) * cell
	radius := cell * 0.4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, p := range particles {
		cx := float64(p.Position.Col)*cell + cell/2
		cy := height - (float64(p.Position.Row)*cell + cell/2)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, radius, BlendHex(p.DisplayColor, p.TargetColor, progress)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// BlendHex mixes two #rrggbb colors in Lab space, t=0 giving from and t=1
// giving to. Unparseable colors fall back to gray.
func BlendHex(from, to string, t float64) string {
	a, errA := colorful.Hex(from)
	b, errB := colorful.Hex(to)
	switch {
	case errA != nil && errB != nil:
		return fallbackColor
	case errA != nil:
		return b.Hex()
	case errB != nil:
		return a.Hex()
	}
	switch {
	case t <= 0:
		return a.Hex()
	case t >= 1:
		return b.Hex()
	}
	return a.BlendLab(b, t).Clamped().Hex()
}
