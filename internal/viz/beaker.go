package viz

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/phsim/internal/beaker"
	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/grid"
)

const (
	particleGlyph = "●"
	waterGlyph    = "·"
)

// Transition is a color change in progress.
type Transition struct {
	From     string
	Start    time.Time
	Duration time.Duration
}

// Progress is in [0, 1].
func (t Transition) Progress(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	elapsed := now.Sub(t.Start)
	if elapsed <= 0 {
		return 0
	}
	return min(float64(elapsed)/float64(t.Duration), 1)
}

// Transitions tracks color changes by particle id.
type Transitions map[string]Transition

// Track records the transmutations of d starting after the minimum delay,
// and forgets removed particles. A reset clears everything.
func (ts Transitions) Track(d beaker.Diff, colors chem.Colors, now time.Time) {
	if d.Reset {
		clear(ts)
	}
	for _, p := range d.Removed {
		delete(ts, p.ID)
	}
	for _, tr := range d.Transmuted {
		ts[tr.ID] = Transition{
			From:     beaker.ColorOf(colors, tr.From),
			Start:    now.Add(beaker.MinTransitionDelay),
			Duration: beaker.ColorTransition,
		}
	}
}

// Prune drops finished transitions.
func (ts Transitions) Prune(now time.Time) {
	for id, t := range ts {
		if t.Progress(now) >= 1 {
			delete(ts, id)
		}
	}
}

// RenderBeaker draws the grid top row first, so row 0 sits at the bottom.
// Rows at or above effectiveRows are drawn empty. Newly added particles
// stay hidden until their appearance delay has passed; particles with a
// tracked transition blend toward their target color.
func RenderBeaker(particles []beaker.Particle, columns, rows, effectiveRows int, ts Transitions, now time.Time) string {
	byPos := make(map[grid.Position]beaker.Particle, len(particles))
	for _, p := range particles {
		if visible(p, now) {
			byPos[p.Position] = p
		}
	}

	water := lipgloss.NewStyle().Foreground(CurrentTheme.Water)
	wall := Subtle.Render("│")

	var sb strings.Builder
	for row := rows - 1; row >= 0; row-- {
		sb.WriteString(wall)
		for col := 0; col < columns; col++ {
			p, ok := byPos[grid.Position{Col: col, Row: row}]
			switch {
			case ok:
				style := lipgloss.NewStyle().Foreground(particleColor(p, ts, now))
				sb.WriteString(style.Render(particleGlyph))
			case row < effectiveRows:
				sb.WriteString(water.Render(waterGlyph))
			default:
				sb.WriteString(" ")
			}
			if col < columns-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(wall + "\n")
	}
	sb.WriteString(Subtle.Render("└" + strings.Repeat("─", max(2*columns-1, 0)) + "┘"))
	return sb.String()
}

func visible(p beaker.Particle, now time.Time) bool {
	if !p.IsInitialAppearance || p.CreatedAt.IsZero() {
		return true
	}
	return !now.Before(p.CreatedAt.Add(time.Duration(p.TransitionDelayMs) * time.Millisecond))
}

func particleColor(p beaker.Particle, ts Transitions, now time.Time) lipgloss.Color {
	if t, ok := ts[p.ID]; ok {
		return blend(t.From, p.TargetColor, t.Progress(now))
	}
	return blend(p.DisplayColor, p.TargetColor, 0)
}
