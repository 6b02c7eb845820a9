package experiment

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("experiment: invalid configuration")

// StepError records how far a run got before it stopped.
type StepError struct {
	Step    int // steps completed
	Mode    Mode
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("experiment: %s run stopped after %d steps: %v", e.Mode, e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
