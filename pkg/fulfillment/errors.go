package fulfillment

import (
	"errors"
	"fmt"
)

// Error codes reported by fulfillment clients.
const (
	CodeMissingOrderID     = "MISSING_ORDER_ID"
	CodeMissingProducts    = "MISSING_PRODUCTS"
	CodeMissingBuyerFields = "MISSING_BUYER_FIELDS"
	CodeNoShippableItems   = "NO_SHIPPABLE_ITEMS"
	CodeMockNotFound       = "MOCK_NOT_FOUND"
	CodeIdempotency        = "IDEMPOTENCY_ERROR"
	CodeRequestBuild       = "REQUEST_BUILD_ERROR"
	CodeUnavailable        = "UNAVAILABLE"
)

// ProviderError represents a failure raised by a fulfillment client.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Provider, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Provider, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is matches provider errors by code.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, code, message string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
	}
}

// WithCause adds a cause to the error.
func (e *ProviderError) WithCause(err error) *ProviderError {
	e.Cause = err
	return e
}

// Sentinels for errors.Is checks. Only the code is compared.
var (
	ErrMissingOrderID     = &ProviderError{Code: CodeMissingOrderID}
	ErrMissingProducts    = &ProviderError{Code: CodeMissingProducts}
	ErrMissingBuyerFields = &ProviderError{Code: CodeMissingBuyerFields}
	ErrNoShippableItems   = &ProviderError{Code: CodeNoShippableItems}
	ErrMockNotFound       = &ProviderError{Code: CodeMockNotFound}
	ErrUnavailable        = &ProviderError{Code: CodeUnavailable}
)

// AsProviderError normalizes err into a ProviderError. Errors that already
// are (or wrap) a ProviderError are returned as such; anything else is
// reported as an unavailable backend.
func AsProviderError(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return NewProviderError(provider, CodeUnavailable, "fulfillment backend unavailable").WithCause(err)
}
