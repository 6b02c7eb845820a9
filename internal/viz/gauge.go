package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const (
	gaugeFrequency = 6.0
	gaugeDamping   = 0.6
)

// Gauge is a pH needle that eases toward its target on a damped spring.
type Gauge struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
}

func NewGauge(fps int, initial float64) *Gauge {
	return &Gauge{
		spring: harmonica.NewSpring(harmonica.FPS(fps), gaugeFrequency, gaugeDamping),
		pos:    initial,
		target: initial,
	}
}

func (g *Gauge) SetTarget(ph float64) { g.target = ph }

// Jump moves the needle to ph immediately.
func (g *Gauge) Jump(ph float64) {
	g.pos, g.vel, g.target = ph, 0, ph
}

// Update advances the spring by one frame and returns the needle position.
func (g *Gauge) Update() float64 {
	g.pos, g.vel = g.spring.Update(g.pos, g.vel, g.target)
	return g.pos
}

func (g *Gauge) Value() float64  { return g.pos }
func (g *Gauge) Target() float64 { return g.target }

// Settled reports whether the needle is within tol of its target and nearly
// at rest.
func (g *Gauge) Settled(tol float64) bool {
	return math.Abs(g.pos-g.target) < tol && math.Abs(g.vel) < tol
}

// View renders the needle over a 0–14 scale width cells wide.
func (g *Gauge) View(width int) string {
	return RenderPHScale(g.pos, width)
}

// RenderPHScale draws a colored 0–14 bar with a marker at ph.
func RenderPHScale(ph float64, width int) string {
	if width < 2 {
		width = 2
	}
	clamped := min(max(ph, 0), 14)
	marker := int(math.Round(clamped / 14 * float64(width-1)))

	var bar strings.Builder
	for i := 0; i < width; i++ {
		cellPH := float64(i) / float64(width-1) * 14
		style := lipgloss.NewStyle().Foreground(PHColor(cellPH))
		if i == marker {
			bar.WriteString(style.Bold(true).Render("▼"))
		} else {
			bar.WriteString(style.Render("▬"))
		}
	}

	label := lipgloss.NewStyle().Bold(true).Foreground(PHColor(clamped)).Render(fmt.Sprintf("pH %.2f", ph))
	ends := Subtle.Render("0" + strings.Repeat(" ", max(width-3, 0)) + "14")
	return label + "\n" + bar.String() + "\n" + ends
}
