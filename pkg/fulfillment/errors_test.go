package fulfillment_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/fba/pkg/fulfillment"
)

func TestProviderError_Error(t *testing.T) {
	err := fulfillment.NewProviderError("stub", fulfillment.CodeMissingProducts, "order payload is missing products")
	assert.Equal(t, "stub error (MISSING_PRODUCTS): order payload is missing products", err.Error())
}

func TestProviderError_ErrorWithCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := fulfillment.NewProviderError("stub", fulfillment.CodeMockNotFound, "mock not found").WithCause(cause)
	assert.Contains(t, err.Error(), "mock not found")
	assert.Contains(t, err.Error(), "permission denied")
	assert.True(t, errors.Is(err, cause))
}

func TestProviderError_IsByCode(t *testing.T) {
	err := fulfillment.NewProviderError("network", fulfillment.CodeMissingOrderID, "whatever")
	assert.True(t, errors.Is(err, fulfillment.ErrMissingOrderID))
	assert.False(t, errors.Is(err, fulfillment.ErrMissingProducts))
}

func TestAsProviderError(t *testing.T) {
	assert.Nil(t, fulfillment.AsProviderError("stub", nil))

	original := fulfillment.NewProviderError("stub", fulfillment.CodeMissingProducts, "missing")
	assert.Same(t, original, fulfillment.AsProviderError("other", original))

	foreign := errors.New("dial tcp: i/o timeout")
	normalized := fulfillment.AsProviderError("network", foreign)
	assert.Equal(t, "network", normalized.Provider)
	assert.Equal(t, fulfillment.CodeUnavailable, normalized.Code)
	assert.ErrorIs(t, normalized, foreign)
}
