package beaker

import "github.com/san-kum/phsim/internal/grid"

// Transmutation is a particle that changed type without moving.
type Transmutation struct {
	ID       string        `json:"id"`
	Position grid.Position `json:"position"`
	From     ParticleType  `json:"from"`
	To       ParticleType  `json:"to"`
}

// Diff describes what one call did to the particle list. Listeners receive
// it after the call has finished mutating the model.
type Diff struct {
	Added      []Particle      `json:"added,omitempty"`
	Removed    []Particle      `json:"removed,omitempty"`
	Transmuted []Transmutation `json:"transmuted,omitempty"`
	// Recolored lists particles whose display color caught up with their
	// target color.
	Recolored []string `json:"recolored,omitempty"`
	// Reset is set when the particle list was replaced wholesale.
	Reset bool `json:"reset,omitempty"`
}

func (d Diff) Empty() bool {
	return !d.Reset && len(d.Added) == 0 && len(d.Removed) == 0 &&
		len(d.Transmuted) == 0 && len(d.Recolored) == 0
}

// Churn is the number of particles created or destroyed.
func (d Diff) Churn() int { return len(d.Added) + len(d.Removed) }
