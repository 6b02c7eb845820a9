package beaker

import (
	"fmt"
	"time"

	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/grid"
)

type ParticleType int

const (
	Substance ParticleType = iota
	PrimaryIon
	SecondaryIon
)

// Types lists every particle type in reconciliation order.
var Types = [...]ParticleType{Substance, PrimaryIon, SecondaryIon}

var particleTypeNames = [...]string{"substance", "primaryIon", "secondaryIon"}

func (t ParticleType) String() string {
	if t >= 0 && int(t) < len(particleTypeNames) {
		return particleTypeNames[t]
	}
	return fmt.Sprintf("particleType(%d)", int(t))
}

func (t ParticleType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ParticleType) UnmarshalText(b []byte) error {
	for i, name := range particleTypeNames {
		if name == string(b) {
			*t = ParticleType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown particle type: %q", b)
}

// Particle is one drawn molecule or ion. Positions of live particles are
// unique within a Model.
type Particle struct {
	ID                  string        `json:"id"`
	Position            grid.Position `json:"position"`
	Type                ParticleType  `json:"type"`
	DisplayColor        string        `json:"display_color"`
	TargetColor         string        `json:"target_color"`
	TransitionMs        int           `json:"transition_ms,omitempty"`
	TransitionDelayMs   int           `json:"transition_delay_ms,omitempty"`
	IsInitialAppearance bool          `json:"is_initial_appearance"`
	CreatedAt           time.Time     `json:"created_at"`
}

// Rule is a 1:1 reaction: each added Reactant consumes one ReactingWith
// particle, which becomes Producing in place.
type Rule struct {
	Reactant     ParticleType `json:"reactant"`
	ReactingWith ParticleType `json:"reacting_with"`
	Producing    ParticleType `json:"producing"`
}

// CommonIonRule is salt addition to a buffer: each incoming secondary ion
// recombines with a free primary ion into neutral substance. Secondary ions
// beyond the free primary ions stay as added.
var CommonIonRule = Rule{Reactant: SecondaryIon, ReactingWith: PrimaryIon, Producing: Substance}

// CountOf returns the entry of c for type t.
func CountOf(c chem.Counts, t ParticleType) int {
	switch t {
	case Substance:
		return c.Substance
	case PrimaryIon:
		return c.Primary
	case SecondaryIon:
		return c.Secondary
	}
	return 0
}

// ColorOf returns the entry of c for type t.
func ColorOf(c chem.Colors, t ParticleType) string {
	switch t {
	case Substance:
		return c.Substance
	case PrimaryIon:
		return c.Primary
	case SecondaryIon:
		return c.Secondary
	}
	return ""
}

func addCount(c *chem.Counts, t ParticleType, n int) {
	switch t {
	case Substance:
		c.Substance += n
	case PrimaryIon:
		c.Primary += n
	case SecondaryIon:
		c.Secondary += n
	}
}
