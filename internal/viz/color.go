package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// blend mixes two hex colors in Lab space. An unparseable side yields the
// other; both unparseable yields the theme's muted color.
func blend(from, to string, t float64) lipgloss.Color {
	a, errA := colorful.Hex(from)
	b, errB := colorful.Hex(to)
	switch {
	case errA != nil && errB != nil:
		return CurrentTheme.Muted
	case errA != nil:
		return lipgloss.Color(b.Hex())
	case errB != nil:
		return lipgloss.Color(a.Hex())
	}
	switch {
	case t <= 0:
		return lipgloss.Color(a.Hex())
	case t >= 1:
		return lipgloss.Color(b.Hex())
	}
	return lipgloss.Color(a.BlendLab(b, t).Clamped().Hex())
}

// PHColor maps a pH onto the theme's acid → neutral → base scale.
func PHColor(ph float64) lipgloss.Color {
	ph = min(max(ph, 0), 14)
	if ph <= 7 {
		return blend(string(CurrentTheme.Acid), string(CurrentTheme.Neutral), ph/7)
	}
	return blend(string(CurrentTheme.Neutral), string(CurrentTheme.Base), (ph-7)/7)
}
