package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/phsim/internal/analysis"
	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/config"
)

// Sweepable parameters.
const (
	ParamMolarity        = "molarity"
	ParamTitrantMolarity = "titrant_molarity"
	ParamBeakerVolume    = "beaker_volume"
)

// ParameterSweep titrates one substance across a range of one parameter.
type ParameterSweep struct {
	Substance chem.Substance
	Base      config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the curve features of one sweep point.
type SweepResult struct {
	ParamValue        float64
	InitialPH         float64
	EquivalenceVolume float64
	Steepest          analysis.Inflection
	HalfEquivalencePH float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, log *slog.Logger) ([]SweepResult, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 points, got %d", sweep.NumSteps)
	}
	if sweep.ParamMin <= 0 || sweep.ParamMax < sweep.ParamMin {
		return nil, fmt.Errorf("invalid sweep range [%g, %g]", sweep.ParamMin, sweep.ParamMax)
	}

	values := floats.Span(make([]float64, sweep.NumSteps), sweep.ParamMin, sweep.ParamMax)
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		cfg := sweep.Base
		switch sweep.ParamName {
		case ParamMolarity:
			cfg.Molarity = v
		case ParamTitrantMolarity:
			cfg.TitrantMolarity = v
		case ParamBeakerVolume:
			cfg.BeakerVolume = v
		default:
			return nil, fmt.Errorf("unknown sweep parameter: %s", sweep.ParamName)
		}

		s := sweep.Substance
		curve := chem.GenerateTitrationCurveN(s, cfg.Molarity, cfg.BeakerVolume, cfg.TitrantMolarity, cfg.MaxVolume, cfg.Samples)
		veq := chem.EquivalenceVolume(cfg.Molarity, cfg.BeakerVolume, cfg.TitrantMolarity)
		steepest, err := analysis.SteepestPoint(curve)
		if err != nil {
			return nil, err
		}
		half, err := analysis.HalfEquivalencePH(curve, veq)
		if err != nil {
			half = math.NaN()
		}

		results = append(results, SweepResult{
			ParamValue:        v,
			InitialPH:         curve[0].PH,
			EquivalenceVolume: veq,
			Steepest:          steepest,
			HalfEquivalencePH: half,
		})

		log.Debug("sweep point", "index", i+1, "of", len(values), sweep.ParamName, v, "veq", veq)
	}

	return results, nil
}
