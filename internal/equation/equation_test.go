package equation

import (
	"math"
	"testing"
)

func TestConstant(t *testing.T) {
	c := NewConstant(0.25)
	for _, x := range []float64{-10, 0, 3.5, 1e9} {
		if got := c.At(x); got != 0.25 {
			t.Errorf("At(%v) = %v, want 0.25", x, got)
		}
	}
}

func TestLinear(t *testing.T) {
	tests := []struct {
		name string
		line Linear
		x    float64
		want float64
	}{
		{"first point", NewLinear(0, 1, 10, 3), 0, 1},
		{"second point", NewLinear(0, 1, 10, 3), 10, 3},
		{"midpoint", NewLinear(0, 1, 10, 3), 5, 2},
		{"extrapolates right", NewLinear(0, 1, 10, 3), 20, 5},
		{"extrapolates left", NewLinear(0, 1, 10, 3), -10, -1},
		{"falling", NewLinear(2, 0.02, 6, 0), 4, 0.01},
		{"degenerate", NewLinear(5, 7, 5, 9), 100, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.At(tt.x); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("At(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestSwitching(t *testing.T) {
	s := NewSwitching(5, NewLinear(0, 10, 5, 0), NewConstant(0))

	if got := s.At(0); got != 10 {
		t.Errorf("At(0) = %v, want 10", got)
	}
	if got := s.At(4.999); got <= 0 {
		t.Errorf("At(4.999) = %v, want > 0", got)
	}
	if got := s.At(5); got != 0 {
		t.Errorf("At(threshold) = %v, want 0 from the after-equation", got)
	}
	if got := s.At(50); got != 0 {
		t.Errorf("At(50) = %v, want 0", got)
	}
}

func TestFunc(t *testing.T) {
	var e Equation = Func(func(x float64) float64 { return x * x })
	if got := e.At(3); got != 9 {
		t.Errorf("At(3) = %v, want 9", got)
	}
}
