package sequence

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidSide      = errors.New("invalid side")
	ErrResourceNotFound = errors.New("resource not found")
)

// ValidationError reports user input that was rejected before any state
// changed.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// OutOfRangeError is a numeric assignment outside [1, Max]. It matches
// ErrValidation.
type OutOfRangeError struct {
	Side  Side
	Value int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: side %d: artwork %d out of range [1, %d]", ErrValidation, e.Side, e.Value, e.Max)
}

func (e *OutOfRangeError) Unwrap() error { return ErrValidation }

// InvalidSideError is an assignment to a side the road mode does not have.
type InvalidSideError struct {
	Side Side
	Mode RoadMode
}

func (e *InvalidSideError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: side %d in %s mode", ErrInvalidSide, e.Side, e.Mode.Title())
}

func (e *InvalidSideError) Unwrap() error { return ErrInvalidSide }

// ResourceNotFoundError reports a missing image file, catalog entry or
// placement. Err carries the underlying cause, if any.
type ResourceNotFoundError struct {
	Kind string
	Ref  string
	Err  error
}

func (e *ResourceNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s %q", ErrResourceNotFound, e.Kind, e.Ref)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResourceNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrResourceNotFound}
	}
	return []error{ErrResourceNotFound, e.Err}
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a ResourceNotFoundError.
func NotFound(kind, ref string, cause error) error {
	return &ResourceNotFoundError{Kind: kind, Ref: ref, Err: cause}
}
