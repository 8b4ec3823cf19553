package errs

import (
	"errors"
	"fmt"
)

// Domain errors for model construction and solving.
var (
	// ErrConfig indicates a non-positive length, grid count, width or dielectric value.
	ErrConfig = errors.New("slabpot: invalid configuration")

	// ErrShape indicates grids or arrays of incompatible size.
	ErrShape = errors.New("slabpot: shape mismatch")

	// ErrDegenerate indicates a quantity that would be NaN or Inf.
	ErrDegenerate = errors.New("slabpot: numerically degenerate input")

	// ErrInconsistentData indicates externally supplied profiles that disagree.
	ErrInconsistentData = errors.New("slabpot: inconsistent external data")
)

// ValueError wraps a domain error with the offending field and value.
type ValueError struct {
	Op      string
	Field   string
	Value   any
	Detail  string
	Wrapped error
}

func (e *ValueError) Error() string {
	msg := fmt.Sprintf("%s: %s=%v", e.Op, e.Field, e.Value)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg + " (" + e.Wrapped.Error() + ")"
}

func (e *ValueError) Unwrap() error {
	return e.Wrapped
}

// Config reports an invalid configuration value.
func Config(op, field string, value any, format string, args ...any) error {
	return &ValueError{Op: op, Field: field, Value: value, Detail: fmt.Sprintf(format, args...), Wrapped: ErrConfig}
}

// Degenerate reports an input that would produce a non-finite result.
func Degenerate(op, field string, value any, format string, args ...any) error {
	return &ValueError{Op: op, Field: field, Value: value, Detail: fmt.Sprintf(format, args...), Wrapped: ErrDegenerate}
}

// Shape reports a dimension mismatch.
func Shape(op string, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), ErrShape)
}

// Inconsistent reports disagreeing external data.
func Inconsistent(op string, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), ErrInconsistentData)
}
