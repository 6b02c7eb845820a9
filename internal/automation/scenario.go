// Package automation runs scripted lab sessions and parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/phsim/internal/config"
	"github.com/san-kum/phsim/internal/experiment"
	"github.com/san-kum/phsim/internal/metrics"
	"github.com/san-kum/phsim/internal/substance"
)

// Scenario defines a scripted sequence of experiments.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single experiment. Zero fields inherit the base config.
type ScenarioStep struct {
	Substance       string  `yaml:"substance"`
	Mode            string  `yaml:"mode"`
	Molarity        float64 `yaml:"molarity"`
	BeakerVolume    float64 `yaml:"beaker_volume"`
	TitrantMolarity float64 `yaml:"titrant_molarity"`
	MaxVolume       float64 `yaml:"max_volume"`
	Steps           int     `yaml:"steps"`
	WaterLevel      float64 `yaml:"water_level"`
	Seed            int64   `yaml:"seed"`
	SaveAs          string  `yaml:"save_as"`
}

// Outcome is the result of one scenario step.
type Outcome struct {
	Step    ScenarioStep
	Result  *experiment.Result
	Metrics map[string]float64
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// RunScenario executes all steps in order. On error it returns the outcomes
// of the steps that finished.
func RunScenario(ctx context.Context, scenario *Scenario, catalog *substance.Catalog, base *config.Config, log *slog.Logger) ([]Outcome, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	outcomes := make([]Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		step = step.withDefaults(base)
		log.Info("scenario step", "index", i+1, "of", len(scenario.Steps), "substance", step.Substance, "mode", step.Mode)

		s, err := catalog.Get(step.Substance)
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}
		mode, err := experiment.ParseMode(step.Mode)
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(experiment.Config{
			Substance:       s,
			Mode:            mode,
			Molarity:        step.Molarity,
			BeakerVolume:    step.BeakerVolume,
			TitrantMolarity: step.TitrantMolarity,
			MaxVolume:       step.MaxVolume,
			Steps:           step.Steps,
			WaterLevel:      step.WaterLevel,
			Columns:         base.Grid.Columns,
			Rows:            base.Grid.Rows,
			Seed:            step.Seed,
			Logger:          log,
		})
		if err != nil {
			return outcomes, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		ms := metrics.Defaults()
		exp.AddObserver(metrics.Observer(ms))

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("step %d run: %w", i+1, err)
		}

		outcomes = append(outcomes, Outcome{Step: step, Result: result, Metrics: metrics.Values(ms)})
	}

	return outcomes, nil
}

func (s ScenarioStep) withDefaults(base *config.Config) ScenarioStep {
	if s.Substance == "" {
		s.Substance = base.Substance
	}
	if s.Mode == "" {
		s.Mode = string(experiment.ModeTitration)
	}
	if s.Molarity <= 0 {
		s.Molarity = base.Molarity
	}
	if s.BeakerVolume <= 0 {
		s.BeakerVolume = base.BeakerVolume
	}
	if s.TitrantMolarity <= 0 {
		s.TitrantMolarity = base.TitrantMolarity
	}
	if s.MaxVolume <= 0 {
		s.MaxVolume = base.MaxVolume
	}
	if s.WaterLevel <= 0 {
		s.WaterLevel = base.WaterLevel
	}
	if s.Seed == 0 {
		s.Seed = base.Seed
	}
	return s
}
