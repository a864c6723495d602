package orbit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidElements reports orbital elements that cannot be simulated.
	ErrInvalidElements = errors.New("invalid orbital elements")

	// ErrInvalidParameter reports a bad sampling parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ElementsError is returned when a body's orbital elements fail validation.
type ElementsError struct {
	Body   string  // Body name or ID, if known
	Field  string  // Offending field (e.g. "eccentricity")
	Value  float64 // Offending value
	Reason string
}

// Error returns the error message for ElementsError.
func (e *ElementsError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: %s=%g: %s", ErrInvalidElements, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s=%g: %s", ErrInvalidElements, e.Body, e.Field, e.Value, e.Reason)
}

// Is lets errors.Is match ErrInvalidElements.
func (e *ElementsError) Is(target error) bool {
	return target == ErrInvalidElements
}

// ParameterError is returned when a sampling parameter is out of range.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

// Error returns the error message for ParameterError.
func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s=%g: %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

// Is lets errors.Is match ErrInvalidParameter.
func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
