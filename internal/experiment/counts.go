package experiment

import (
	"math"

	"github.com/san-kum/phsim/internal/beaker"
	"github.com/san-kum/phsim/internal/chem"
)

// ToCounts converts concentrations into particle counts at scale particles
// per unit concentration. If the result exceeds capacity, all three counts
// shrink proportionally until it fits.
func ToCounts(sp chem.Species, scale float64, capacity int) chem.Counts {
	round := func(c float64) int {
		if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return 0
		}
		return int(math.Round(c * scale))
	}
	counts := chem.Counts{
		Substance: round(sp.Substance),
		Primary:   round(sp.Primary),
		Secondary: round(sp.Secondary),
	}
	total := counts.Total()
	if capacity < 0 {
		capacity = 0
	}
	if total <= capacity {
		return counts
	}
	f := float64(capacity) / float64(total)
	return chem.Counts{
		Substance: int(math.Floor(float64(counts.Substance) * f)),
		Primary:   int(math.Floor(float64(counts.Primary) * f)),
		Secondary: int(math.Floor(float64(counts.Secondary) * f)),
	}
}

// BufferCounts are the particle counts after salt particles have been added
// to an equilibrium with the given counts, each secondary ion consuming one
// primary ion while any remain.
func BufferCounts(initial chem.Counts, salt int) chem.Counts {
	if salt <= 0 {
		return initial
	}
	reacted := min(salt, initial.Primary)
	return chem.Counts{
		Substance: initial.Substance + reacted,
		Primary:   initial.Primary - reacted,
		Secondary: initial.Secondary + salt - reacted,
	}
}

// unitsFor is the number of substance units a grid of capacity cells can
// show through every mode, including a buffer run to its maximum salt.
func unitsFor(capacity int) int {
	return capacity / 2
}

func applyCounts(b *beaker.Model, target chem.Counts, colors chem.Colors) beaker.Diff {
	var d beaker.Diff
	unsubscribe := b.Subscribe(func(got beaker.Diff) {
		if !got.Empty() && len(got.Recolored) == 0 {
			d = got
		}
	})
	defer unsubscribe()
	b.UpdateParticles(target, colors, beaker.UpdateOptions{Instant: true})
	return d
}
