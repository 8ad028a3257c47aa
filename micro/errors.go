package micro

import (
	"errors"
	"fmt"

	"github.com/GG1991/MicroPP/types"
)

var (
	ErrConfiguration = types.ErrConfiguration
	ErrConvergence   = errors.New("convergence failure")
	ErrLinearSolve   = errors.New("linear solve failure")
	ErrMisuse        = errors.New("misuse")
)

// ConvergenceError is the failure of one RVE, it never affects the others
type ConvergenceError struct {
	GP   int
	Its  int     // Newton iterations performed
	Norm float64 // Last residual norm
	Err  error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("gp %d: newton-raphson failed after %d iterations, |r| = %e: %v",
		e.GP, e.Its, e.Norm, e.Err)
}

func (e *ConvergenceError) Unwrap() []error { return []error{ErrConvergence, e.Err} }

func misuse(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMisuse, fmt.Sprintf(format, args...))
}

func wrapLinearSolve(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", ErrLinearSolve, fmt.Sprintf(format, args...), err)
}
