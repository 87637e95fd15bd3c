package planconv

import (
	"errors"
	"fmt"
)

// Standard errors returned by the plan converter.
var (
	// ErrInvalidPlan indicates a structurally broken plan: a missing
	// required child, an empty file list, an unparsable iterator URI.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrNotImplemented indicates a construct the converter does not
	// translate: an unknown relation kind, an unsupported join type.
	ErrNotImplemented = errors.New("not implemented")
)

// InvalidPlanError carries the structural reason.
type InvalidPlanError struct {
	Reason string
}

func (e *InvalidPlanError) Error() string {
	return "invalid plan: " + e.Reason
}

func (e *InvalidPlanError) Unwrap() error { return ErrInvalidPlan }

func invalidPlanf(format string, args ...any) error {
	return &InvalidPlanError{Reason: fmt.Sprintf(format, args...)}
}

// NotImplementedError carries a description of the offending construct.
type NotImplementedError struct {
	What string
}

func (e *NotImplementedError) Error() string {
	return "not implemented: " + e.What
}

func (e *NotImplementedError) Unwrap() error { return ErrNotImplemented }

func notImplementedf(format string, args ...any) error {
	return &NotImplementedError{What: fmt.Sprintf(format, args...)}
}
