package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Sample errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrInvalidSample    = errors.New("invalid sample")
	ErrDegenerateSample = errors.New("degenerate sample")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnknownMethod = errors.New("unknown comparison method")

	// Data source errors
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvariant marks a computed value that no valid input can produce
	ErrInvariant = errors.New("internal invariant violated")
)

// Error constructors with context
func NewInsufficientDataError(operation string, need, got int) error {
	return fmt.Errorf("%w: %s needs at least %d observations, got %d", ErrInsufficientData, operation, need, got)
}

func NewInvalidSampleError(index int, value float64) error {
	return fmt.Errorf("%w: observation %d is not finite (%v)", ErrInvalidSample, index, value)
}

func NewDegenerateSampleError(label string) error {
	return fmt.Errorf("%w: sample %s has zero variance", ErrDegenerateSample, label)
}

func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, reason)
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

// Error checking helpers
func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsInvalidSampleError(err error) bool {
	return errors.Is(err, ErrInvalidSample)
}

func IsDegenerateSampleError(err error) bool {
	return errors.Is(err, ErrDegenerateSample)
}

// IsInputError reports whether err was caused by the samples rather than the caller's setup.
func IsInputError(err error) bool {
	return IsInsufficientDataError(err) || IsInvalidSampleError(err)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrUnknownMethod)
}
