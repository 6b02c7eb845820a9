package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/phsim/internal/chem"
)

var (
	ErrShortCurve = errors.New("analysis: curve needs at least two points")
	ErrOutOfRange = errors.New("analysis: volume outside the sampled range")
)

// Inflection is the midpoint of the steepest curve segment.
type Inflection struct {
	Volume float64 `json:"volume"`
	PH     float64 `json:"ph"`
	Slope  float64 `json:"slope"`
}

// Region is a closed volume interval.
type Region struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r Region) Width() float64 { return r.End - r.Start }

type Summary struct {
	InitialPH         float64    `json:"initial_ph"`
	FinalPH           float64    `json:"final_ph"`
	MinPH             float64    `json:"min_ph"`
	MaxPH             float64    `json:"max_ph"`
	Steepest          Inflection `json:"steepest"`
	HalfEquivalencePH float64    `json:"half_equivalence_ph"`
	Buffer            *Region    `json:"buffer,omitempty"`
}

// Slopes returns dpH/dV between consecutive samples. Segments of zero width
// have slope 0.
func Slopes(curve []chem.CurvePoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, len(curve)-1)
	for i := range out {
		dv := curve[i+1].Volume - curve[i].Volume
		if dv == 0 {
			continue
		}
		out[i] = (curve[i+1].PH - curve[i].PH) / dv
	}
	return out
}

// SteepestPoint locates the segment with the largest |dpH/dV|.
func SteepestPoint(curve []chem.CurvePoint) (Inflection, error) {
	slopes := Slopes(curve)
	if len(slopes) == 0 {
		return Inflection{}, ErrShortCurve
	}
	abs := make([]float64, len(slopes))
	for i, s := range slopes {
		abs[i] = math.Abs(s)
	}
	i := floats.MaxIdx(abs)
	return Inflection{
		Volume: (curve[i].Volume + curve[i+1].Volume) / 2,
		PH:     (curve[i].PH + curve[i+1].PH) / 2,
		Slope:  slopes[i],
	}, nil
}

// Interpolate returns the linearly interpolated pH at volume v. Volumes must
// be strictly increasing.
func Interpolate(curve []chem.CurvePoint, v float64) (float64, error) {
	if len(curve) < 2 {
		return 0, ErrShortCurve
	}
	if v < curve[0].Volume || v > curve[len(curve)-1].Volume {
		return 0, ErrOutOfRange
	}
	xs := make([]float64, len(curve))
	ys := make([]float64, len(curve))
	for i, p := range curve {
		xs[i], ys[i] = p.Volume, p.PH
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return 0, err
	}
	return pl.Predict(v), nil
}

// HalfEquivalencePH is the pH at half the equivalence volume.
func HalfEquivalencePH(curve []chem.CurvePoint, equivalenceVolume float64) (float64, error) {
	return Interpolate(curve, equivalenceVolume/2)
}

// BufferRegion returns the first run of consecutive samples whose pH lies
// within width of pka. ok is false when no sample qualifies.
func BufferRegion(curve []chem.CurvePoint, pka, width float64) (r Region, ok bool) {
	for _, p := range curve {
		in := math.Abs(p.PH-pka) <= width
		switch {
		case in && !ok:
			r = Region{Start: p.Volume, End: p.Volume}
			ok = true
		case in:
			r.End = p.Volume
		case ok:
			return r, true
		}
	}
	return r, ok
}

// Summarize analyzes a curve. pka is used for the buffer region and may be
// NaN for strong substances, in which case Buffer is nil.
func Summarize(curve []chem.CurvePoint, equivalenceVolume, pka float64) (Summary, error) {
	steepest, err := SteepestPoint(curve)
	if err != nil {
		return Summary{}, err
	}
	phs := make([]float64, len(curve))
	for i, p := range curve {
		phs[i] = p.PH
	}

	s := Summary{
		InitialPH: phs[0],
		FinalPH:   phs[len(phs)-1],
		MinPH:     floats.Min(phs),
		MaxPH:     floats.Max(phs),
		Steepest:  steepest,
	}
	if half, err := HalfEquivalencePH(curve, equivalenceVolume); err == nil {
		s.HalfEquivalencePH = half
	} else {
		s.HalfEquivalencePH = math.NaN()
	}
	if !math.IsNaN(pka) {
		if r, ok := BufferRegion(curve, pka, 1); ok {
			s.Buffer = &r
		}
	}
	return s, nil
}
