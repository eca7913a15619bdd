package shipping

import (
	"errors"
)

// ShippingError is an orchestration-level failure: empty order data,
// missing buyer fields, or a wrapped provider failure.
type ShippingError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ShippingError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ShippingError) Unwrap() error {
	return e.Cause
}

func newShippingError(message string, cause error) *ShippingError {
	return &ShippingError{Message: message, Cause: cause}
}

// TrackingNotFoundError reports a provider call that succeeded without a
// tracking number. Callers may retry it.
type TrackingNotFoundError struct {
	OrderID string
}

// Error implements the error interface.
func (e *TrackingNotFoundError) Error() string {
	return "tracking not returned by provider"
}

// IsTrackingNotFound reports whether err is or wraps a TrackingNotFoundError.
func IsTrackingNotFound(err error) bool {
	var target *TrackingNotFoundError
	return errors.As(err, &target)
}

// IsShippingError reports whether err is or wraps a ShippingError.
func IsShippingError(err error) bool {
	var target *ShippingError
	return errors.As(err, &target)
}
