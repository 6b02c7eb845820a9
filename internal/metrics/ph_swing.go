package metrics

import (
	"math"

	"github.com/san-kum/phsim/internal/experiment"
)

// PHSwing is the largest pH change between consecutive steps.
type PHSwing struct {
	name    string
	last    float64
	max     float64
	samples int
}

func NewPHSwing() *PHSwing {
	return &PHSwing{name: "ph_swing"}
}

func (p *PHSwing) Name() string { return p.name }

func (p *PHSwing) Observe(s experiment.Step) {
	if p.samples > 0 {
		p.max = math.Max(p.max, math.Abs(s.PH-p.last))
	}
	p.last = s.PH
	p.samples++
}

func (p *PHSwing) Value() float64 { return p.max }

func (p *PHSwing) Reset() {
	p.last = 0
	p.max = 0
	p.samples = 0
}
