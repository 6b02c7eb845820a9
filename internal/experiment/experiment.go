// Package experiment drives a substance through one of the simulator's
// scenarios, feeding each step's chemistry into a reacting beaker.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/phsim/internal/beaker"
	"github.com/san-kum/phsim/internal/chem"
)

const DefaultSteps = 20

type Config struct {
	Substance       chem.Substance
	Mode            Mode
	Molarity        float64
	BeakerVolume    float64
	TitrantMolarity float64
	MaxVolume       float64
	Steps           int
	WaterLevel      float64 // 0 keeps every row visible
	Columns         int
	Rows            int
	Seed            int64
	Scheduler       beaker.Scheduler
	Logger          *slog.Logger
}

// Step is the state after one input increment.
type Step struct {
	Index      int          `json:"index"`
	Input      float64      `json:"input"`
	PH         float64      `json:"ph"`
	Species    chem.Species `json:"species"`
	Target     chem.Counts  `json:"target"`
	Counts     chem.Counts  `json:"counts"`
	Churn      int          `json:"churn"`
	Transmuted int          `json:"transmuted"`
}

type Result struct {
	Mode              Mode              `json:"mode"`
	Substance         string            `json:"substance"`
	EquivalenceVolume float64           `json:"equivalence_volume,omitempty"`
	Steps             []Step            `json:"steps"`
	Particles         []beaker.Particle `json:"particles"`
}

// Curve returns the (input, pH) pairs of the run.
func (r *Result) Curve() []chem.CurvePoint {
	out := make([]chem.CurvePoint, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = chem.CurvePoint{Volume: s.Input, PH: s.PH}
	}
	return out
}

// Observer is notified after every step.
type Observer interface {
	OnStep(Step)
}

type ObserverFunc func(Step)

func (f ObserverFunc) OnStep(s Step) { f(s) }

type Experiment struct {
	cfg       Config
	beaker    *beaker.Model
	observers []Observer
	log       *slog.Logger
}

func New(cfg Config) (*Experiment, error) {
	if cfg.Steps <= 0 {
		cfg.Steps = DefaultSteps
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = beaker.ImmediateScheduler()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := beaker.New(beaker.Config{
		Columns:   cfg.Columns,
		Rows:      cfg.Rows,
		Seed:      cfg.Seed,
		Scheduler: cfg.Scheduler,
	})
	if cfg.WaterLevel > 0 {
		b.SetWaterLevel(cfg.WaterLevel)
	}

	return &Experiment{
		cfg:    cfg,
		beaker: b,
		log:    cfg.Logger.With("substance", cfg.Substance.Name, "mode", string(cfg.Mode)),
	}, nil
}

func (c Config) validate() error {
	if err := c.Substance.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.Molarity <= 0 {
		return fmt.Errorf("%w: molarity must be positive", ErrInvalidConfig)
	}
	if c.Mode == ModeTitration {
		if c.BeakerVolume <= 0 || c.TitrantMolarity <= 0 || c.MaxVolume <= 0 {
			return fmt.Errorf("%w: titration needs positive volumes and titrant molarity", ErrInvalidConfig)
		}
	}
	if c.Mode == ModeBuffer && c.Substance.IsStrong() {
		return fmt.Errorf("%w: buffer mode needs a weak substance, %s is %s", ErrInvalidConfig, c.Substance.Name, c.Substance.Type)
	}
	return nil
}

func (e *Experiment) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Beaker returns the beaker the experiment reconciles.
func (e *Experiment) Beaker() *beaker.Model { return e.beaker }

// Capacity is the number of visible cells.
func (e *Experiment) Capacity() int {
	return e.beaker.Columns() * e.beaker.EffectiveRows()
}

// Run executes every step. On cancellation it returns the steps completed so
// far together with the context's error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	runner, err := DefaultRegistry().Get(e.cfg.Mode)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Mode:      e.cfg.Mode,
		Substance: e.cfg.Substance.Name,
		Steps:     make([]Step, 0, e.cfg.Steps+1),
	}
	if e.cfg.Mode == ModeTitration {
		result.EquivalenceVolume = chem.EquivalenceVolume(e.cfg.Molarity, e.cfg.BeakerVolume, e.cfg.TitrantMolarity)
	}

	e.log.Debug("run started", "steps", e.cfg.Steps, "capacity", e.Capacity())
	err = runner(ctx, e, func(s Step) {
		result.Steps = append(result.Steps, s)
		for _, o := range e.observers {
			o.OnStep(s)
		}
		e.log.Debug("step", "index", s.Index, "input", s.Input, "ph", s.PH, "churn", s.Churn)
	})
	result.Particles = e.beaker.Particles()
	if err != nil {
		var se *StepError
		if !errors.As(err, &se) {
			err = &StepError{Step: len(result.Steps), Mode: e.cfg.Mode, Wrapped: err}
		}
		return result, err
	}
	return result, nil
}

func (e *Experiment) cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
