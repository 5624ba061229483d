package feature

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFeature marks artifact drift: a catalog feature has no value.
	ErrMissingFeature = errors.New("missing feature")

	// ErrInvalidInput marks a user input rejected at the boundary.
	ErrInvalidInput = errors.New("invalid input")
)

// MissingFeatureError is returned when a catalog feature is absent from the
// reconstructed values. It indicates inconsistent training and deployment
// artifacts and is not retryable.
type MissingFeatureError struct {
	Name string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("feature %q is in the catalog but has no value: artifacts are inconsistent", e.Name)
}

func (e *MissingFeatureError) Is(target error) bool {
	return target == ErrMissingFeature
}

// UnknownFeatureError is returned when input names a feature that is not editable.
type UnknownFeatureError struct {
	Name string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("unknown feature %q: only important features can be set", e.Name)
}

func (e *UnknownFeatureError) Is(target error) bool {
	return target == ErrInvalidInput
}

// RangeError is returned when an input value falls outside [MinValue, MaxValue].
type RangeError struct {
	Name  string
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %v for %q is outside [%v, %v]", e.Value, e.Name, MinValue, MaxValue)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidInput
}
