package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/phsim/internal/beaker"
	"github.com/san-kum/phsim/internal/buffer"
	"github.com/san-kum/phsim/internal/chem"
)

type Mode string

const (
	ModeEquilibrium Mode = "equilibrium"
	ModeBuffer      Mode = "buffer"
	ModeTitration   Mode = "titration"
)

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := defaultRegistry.runners[m]; !ok {
		return "", fmt.Errorf("%w: unknown mode: %s", ErrInvalidConfig, s)
	}
	return m, nil
}

// Runner steps an experiment, emitting each step in order.
type Runner func(ctx context.Context, e *Experiment, emit func(Step)) error

type Registry struct {
	runners map[Mode]Runner
}

var defaultRegistry = NewRegistry()

func DefaultRegistry() *Registry { return defaultRegistry }

func NewRegistry() *Registry {
	r := &Registry{runners: make(map[Mode]Runner)}
	r.runners[ModeEquilibrium] = runEquilibrium
	r.runners[ModeBuffer] = runBuffer
	r.runners[ModeTitration] = runTitration
	return r
}

func (r *Registry) Get(mode Mode) (Runner, error) {
	fn, ok := r.runners[mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}
	return fn, nil
}

func (r *Registry) ListModes() []string {
	names := make([]string, 0, len(r.runners))
	for m := range r.runners {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}

// runEquilibrium dissolves the substance in Steps equal increments up to the
// configured molarity.
func runEquilibrium(ctx context.Context, e *Experiment, emit func(Step)) error {
	s := e.cfg.Substance
	units := unitsFor(e.Capacity())

	for i := 1; i <= e.cfg.Steps; i++ {
		if err := e.cancelled(ctx); err != nil {
			return err
		}
		frac := float64(i) / float64(e.cfg.Steps)
		molarity := frac * e.cfg.Molarity
		target := chem.SpeciesCounts(s, molarity, int(math.Round(frac*float64(units))))
		d := applyCounts(e.beaker, target, s.Colors)
		emit(Step{
			Index:      i,
			Input:      molarity,
			PH:         chem.CalculatePH(s, molarity),
			Species:    chem.Concentrations(s, molarity),
			Target:     target,
			Counts:     e.beaker.Counts(),
			Churn:      d.Churn(),
			Transmuted: len(d.Transmuted),
		})
	}
	return nil
}

// runBuffer starts from the plain equilibrium and adds the common-ion salt
// in Steps increments up to the buffer model's maximum.
func runBuffer(ctx context.Context, e *Experiment, emit func(Step)) error {
	s := e.cfg.Substance
	initial := chem.SpeciesCounts(s, e.cfg.Molarity, unitsFor(e.Capacity()))
	e.beaker.Initialize(initial, s.Colors)
	model := buffer.NewForSubstance(s, e.cfg.Molarity, initial)

	emit(Step{
		PH:      model.PH(0),
		Species: model.Concentrations(0),
		Target:  initial,
		Counts:  e.beaker.Counts(),
	})

	added := 0
	for i := 1; i <= e.cfg.Steps; i++ {
		if err := e.cancelled(ctx); err != nil {
			return err
		}
		salt := int(math.Round(float64(model.MaxSubstance()) * float64(i) / float64(e.cfg.Steps)))

		var d beaker.Diff
		unsubscribe := e.beaker.Subscribe(func(got beaker.Diff) {
			if len(got.Recolored) == 0 {
				d = got
			}
		})
		e.beaker.AddWithReaction(beaker.CommonIonRule, salt-added, s.Colors)
		unsubscribe()
		added = salt

		x := float64(salt)
		emit(Step{
			Index:      i,
			Input:      x,
			PH:         model.PH(x),
			Species:    model.Concentrations(x),
			Target:     BufferCounts(initial, salt),
			Counts:     e.beaker.Counts(),
			Churn:      d.Churn(),
			Transmuted: len(d.Transmuted),
		})
	}
	return nil
}

// runTitration samples Steps+1 titrant volumes from 0 to MaxVolume. The
// starting molarity maps to the full unit count; later concentrations are
// diluted by the growing volume.
func runTitration(ctx context.Context, e *Experiment, emit func(Step)) error {
	s := e.cfg.Substance
	capacity := e.Capacity()
	scale := float64(unitsFor(capacity)) / e.cfg.Molarity
	volumes := floats.Span(make([]float64, e.cfg.Steps+1), 0, e.cfg.MaxVolume)

	for i, v := range volumes {
		if err := e.cancelled(ctx); err != nil {
			return err
		}
		sp := chem.TitrationSpecies(s, e.cfg.Molarity, e.cfg.BeakerVolume, e.cfg.TitrantMolarity, v)
		target := ToCounts(sp, scale, capacity)
		d := applyCounts(e.beaker, target, s.Colors)
		emit(Step{
			Index:      i,
			Input:      v,
			PH:         chem.TitrationPH(s, e.cfg.Molarity, e.cfg.BeakerVolume, e.cfg.TitrantMolarity, v),
			Species:    sp,
			Target:     target,
			Counts:     e.beaker.Counts(),
			Churn:      d.Churn(),
			Transmuted: len(d.Transmuted),
		})
	}
	return nil
}
