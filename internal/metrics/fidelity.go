package metrics

import "github.com/san-kum/phsim/internal/experiment"

// Fidelity is the fraction of steps whose beaker counts matched the target.
// It drops below 1 only when the visible grid was too small.
type Fidelity struct {
	name    string
	misses  int
	samples int
}

func NewFidelity() *Fidelity {
	return &Fidelity{
		name: "fidelity",
	}
}

func (f *Fidelity) Name() string {
	return f.name
}

func (f *Fidelity) Observe(s experiment.Step) {
	f.samples++
	if s.Counts != s.Target {
		f.misses++
	}
}

func (f *Fidelity) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(f.misses)/float64(f.samples)
}

func (f *Fidelity) Reset() {
	f.misses = 0
	f.samples = 0
}
