package physics

import (
	"errors"
	"fmt"
)

// ErrStepDiverged is returned by World.Step when a body ends a step with a
// non-finite position, orientation or velocity. The world is unusable after it.
var ErrStepDiverged = errors.New("physics: step diverged")

// StepError names the body that diverged.
type StepError struct {
	Body  *Body
	Step  uint64
	Time  float64
	Field string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("physics: body %d (%s) has non-finite %s after step %d (t=%.3fs)",
		e.Body.ID, e.Body.Shape.Kind(), e.Field, e.Step, e.Time)
}

func (e *StepError) Unwrap() error {
	return ErrStepDiverged
}
