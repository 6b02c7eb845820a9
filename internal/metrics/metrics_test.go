package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/experiment"
)

func TestChurn(t *testing.T) {
	m := NewChurn()
	m.Observe(experiment.Step{Churn: 4})
	m.Observe(experiment.Step{Churn: 0})

	if m.Value() != 2 {
		t.Errorf("expected churn 2, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero churn after reset")
	}
}

func TestFidelity(t *testing.T) {
	m := NewFidelity()
	if m.Value() != 1 {
		t.Error("expected fidelity 1 with no samples")
	}

	c := chem.Counts{Substance: 3}
	m.Observe(experiment.Step{Target: c, Counts: c})
	m.Observe(experiment.Step{Target: c, Counts: chem.Counts{Substance: 2}})

	if m.Value() != 0.5 {
		t.Errorf("expected fidelity 0.5, got %f", m.Value())
	}
}

func TestPHSwing(t *testing.T) {
	m := NewPHSwing()
	for _, ph := range []float64{3, 4, 8.5, 9} {
		m.Observe(experiment.Step{PH: ph})
	}
	if math.Abs(m.Value()-4.5) > 1e-12 {
		t.Errorf("expected swing 4.5, got %f", m.Value())
	}
}

func TestObserver(t *testing.T) {
	exp, err := experiment.New(experiment.Config{
		Substance:       chem.NewWeakAcid("acetic_acid", "CH3COOH", "CH₃COO⁻", 1.8e-5, 2),
		Mode:            experiment.ModeTitration,
		Molarity:        0.1,
		BeakerVolume:    50,
		TitrantMolarity: 0.1,
		MaxVolume:       100,
		Steps:           20,
		Seed:            1,
	})
	if err != nil {
		t.Fatal(err)
	}
	ms := Defaults()
	exp.AddObserver(Observer(ms))
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	values := Values(ms)
	if values["fidelity"] != 1 {
		t.Errorf("expected fidelity 1, got %f", values["fidelity"])
	}
	if values["ph_swing"] < 1 {
		t.Errorf("expected a jump at equivalence, got swing %f", values["ph_swing"])
	}
}
