// Package equation provides scalar functions used to build piecewise
// concentration curves.
//
// Every [Equation] is stateless and maps a scalar input (an amount of salt
// added, a titrant volume, ...) to a scalar output:
//
//   - [Constant]: a flat line
//   - [Linear]: the line through two points, unclamped
//   - [Switching]: one equation below a threshold, another at or above it
package equation

// Equation is a pure function of one variable.
type Equation interface {
	At(x float64) float64
}

// Func adapts an ordinary function to the Equation interface.
type Func func(x float64) float64

func (f Func) At(x float64) float64 { return f(x) }

type Constant struct {
	Value float64
}

func NewConstant(v float64) Constant { return Constant{Value: v} }

func (c Constant) At(float64) float64 { return c.Value }

// Linear is the line through (X1, Y1) and (X2, Y2). Callers own the domain:
// inputs outside [X1, X2] extrapolate.
type Linear struct {
	X1, Y1 float64
	X2, Y2 float64
}

func NewLinear(x1, y1, x2, y2 float64) Linear {
	return Linear{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Slope returns 0 for a degenerate line whose two x values coincide.
func (l Linear) Slope() float64 {
	if l.X2 == l.X1 {
		return 0
	}
	return (l.Y2 - l.Y1) / (l.X2 - l.X1)
}

func (l Linear) At(x float64) float64 {
	return l.Y1 + l.Slope()*(x-l.X1)
}

// Switching evaluates Before for x < Threshold and After otherwise.
type Switching struct {
	Threshold float64
	Before    Equation
	After     Equation
}

func NewSwitching(threshold float64, before, after Equation) Switching {
	return Switching{Threshold: threshold, Before: before, After: after}
}

func (s Switching) At(x float64) float64 {
	if x < s.Threshold {
		return s.Before.At(x)
	}
	return s.After.At(x)
}
