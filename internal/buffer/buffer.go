// Package buffer models adding a common-ion salt to a weak acid or base
// solution at equilibrium.
//
// A salt particle carries the secondary ion. While free primary ions remain,
// each incoming secondary ion combines with one of them back into neutral
// substance; once the primary ions are exhausted the secondary ion simply
// accumulates. The model is immutable: rebuild it whenever the equilibrium
// inputs change.
package buffer

import (
	"math"

	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/equation"
)

// degenerateFloor is the concentration at or below which the
// Henderson–Hasselbalch ratio is treated as undefined.
const degenerateFloor = 1e-10

// Concentrations are the continuous endpoints of the piecewise curves.
type Concentrations struct {
	EquilibriumSubstance float64 `json:"equilibrium_substance"`
	InitialSubstance     float64 `json:"initial_substance"`
	IonConcentration     float64 `json:"ion_concentration"`
}

// Snapshot is the pre-salt equilibrium. Counts drive the thresholds and must
// agree with the particle view; Concentrations drive the curve values.
type Snapshot struct {
	Counts         chem.Counts    `json:"counts"`
	Concentrations Concentrations `json:"concentrations"`
}

// Point is one sample of the salt-addition curve.
type Point struct {
	Salt    float64      `json:"salt"`
	PH      float64      `json:"ph"`
	Species chem.Species `json:"species"`
}

type Model struct {
	pK           float64
	acid         bool
	threshold    float64
	maxSubstance int
	substance    equation.Equation
	primary      equation.Equation
	secondary    equation.Equation
}

// New builds the salt-addition model of a weak acid with the given pKa.
func New(pKa float64, snap Snapshot) *Model {
	return build(pKa, true, snap)
}

// NewForSubstance builds the model from a weak substance dissolved at
// molarity, using its plain equilibrium concentrations and the given
// particle counts. Bases use pKb and report pH through pOH.
func NewForSubstance(s chem.Substance, molarity float64, counts chem.Counts) *Model {
	eq := chem.Concentrations(s, molarity)
	snap := Snapshot{
		Counts: counts,
		Concentrations: Concentrations{
			EquilibriumSubstance: eq.Substance,
			InitialSubstance:     molarity,
			IonConcentration:     eq.Primary,
		},
	}
	if s.IsAcid() {
		return build(s.PKA(), true, snap)
	}
	return build(s.PKB(), false, snap)
}

func build(pK float64, acid bool, snap Snapshot) *Model {
	c := snap.Concentrations
	threshold := float64(snap.Counts.Primary)
	maxSubstance := snap.Counts.Substance + snap.Counts.Primary - snap.Counts.Secondary

	return &Model{
		pK:           pK,
		acid:         acid,
		threshold:    threshold,
		maxSubstance: maxSubstance,
		substance: equation.NewSwitching(threshold,
			equation.NewLinear(0, c.EquilibriumSubstance, threshold, c.InitialSubstance),
			equation.NewConstant(c.InitialSubstance),
		),
		primary: equation.NewSwitching(threshold,
			equation.NewLinear(0, c.IonConcentration, threshold, 0),
			equation.NewConstant(0),
		),
		secondary: equation.NewSwitching(threshold,
			equation.NewConstant(c.IonConcentration),
			equation.NewLinear(threshold, c.IonConcentration, float64(maxSubstance), c.InitialSubstance),
		),
	}
}

// PK is pKa for acid models and pKb for base models.
func (m *Model) PK() float64 { return m.pK }

// Threshold is the salt amount at which the free primary ion runs out.
func (m *Model) Threshold() float64 { return m.threshold }

// MaxSubstance is the largest salt amount the model covers.
func (m *Model) MaxSubstance() int { return m.maxSubstance }

func (m *Model) Concentrations(salt float64) chem.Species {
	return chem.Species{
		Substance: m.substance.At(salt),
		Primary:   m.primary.At(salt),
		Secondary: m.secondary.At(salt),
	}
}

// PH applies Henderson–Hasselbalch to the secondary/substance ratio. Either
// concentration at or below 1e-10 yields 7.
func (m *Model) PH(salt float64) float64 {
	c := m.Concentrations(salt)
	if c.Secondary <= degenerateFloor || c.Substance <= degenerateFloor {
		return chem.NeutralPH
	}
	p := m.pK + math.Log10(c.Secondary/c.Substance)
	if m.acid {
		return p
	}
	return chem.PKw - p
}

// Sample evaluates n evenly spaced salt amounts from 0 to MaxSubstance.
func (m *Model) Sample(n int) []Point {
	if n < 2 {
		n = 2
	}
	points := make([]Point, n)
	for i := range points {
		x := float64(m.maxSubstance) * float64(i) / float64(n-1)
		points[i] = Point{Salt: x, PH: m.PH(x), Species: m.Concentrations(x)}
	}
	return points
}
