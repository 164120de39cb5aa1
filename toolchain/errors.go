package toolchain

import (
	"errors"
	"fmt"
)

var ErrToolchain = errors.New("dependency toolchain preparation failed")

// StepError identifies the preparer step that failed and preserves the
// originating tool's exit code for diagnosis.
type StepError struct {
	Step string
	Code int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("dependency toolchain: step %s failed (exit code %d): %v", e.Step, e.Code, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Is(target error) bool {
	return target == ErrToolchain
}
