package metrics

import "github.com/san-kum/phsim/internal/experiment"

// Churn is the mean number of particles added or removed per step.
// Transmutations do not count.
type Churn struct {
	name    string
	sum     int
	samples int
}

func NewChurn() *Churn {
	return &Churn{
		name: "churn",
	}
}

func (c *Churn) Name() string {
	return c.name
}

func (c *Churn) Observe(s experiment.Step) {
	c.sum += s.Churn
	c.samples++
}

func (c *Churn) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Churn) Reset() {
	c.sum = 0
	c.samples = 0
}
