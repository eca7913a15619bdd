// Package fulfillment defines the provider-side contract for submitting
// fulfillment orders and the validation every client repeats at its boundary.
package fulfillment

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Buyer data keys. NormalizedBuyerData carries exactly these.
const (
	BuyerCountryID    = "country_id"
	BuyerCountryCode  = "country_code"
	BuyerCountryCode3 = "country_code3"
	BuyerShopUsername = "shop_username"
	BuyerEmail        = "email"
	BuyerPhone        = "phone"
	BuyerAddress      = "address"
	BuyerDataBag      = "data"
)

// Order data keys read by clients.
const (
	OrderIDKey       = "order_id"
	OrderProductsKey = "products"
)

// BuyerKeys lists the normalized buyer keys in declaration order.
var BuyerKeys = []string{
	BuyerCountryID,
	BuyerCountryCode,
	BuyerCountryCode3,
	BuyerShopUsername,
	BuyerEmail,
	BuyerPhone,
	BuyerAddress,
	BuyerDataBag,
}

// RequiredBuyerFields must be present and non-empty, checked in this order.
var RequiredBuyerFields = []string{BuyerCountryCode, BuyerAddress, BuyerEmail}

// OrderData is the attribute mapping describing what is being shipped.
type OrderData map[string]any

// BuyerData is the normalized recipient mapping.
type BuyerData map[string]any

// Status is the provider-reported outcome of a fulfillment call.
type Status string

const (
	StatusSuccess    Status = "SUCCESS"
	StatusMockedHTTP Status = "MOCKED_HTTP"
)

// Result is returned by a fulfillment client.
type Result struct {
	Status         Status
	TrackingNumber string
	OrderID        string

	// Source is the canned document that satisfied a stub request.
	Source string

	// Prepared is set by clients that build, but do not send, a provider request.
	Prepared *PreparedRequest
}

// PreparedRequest describes an outbound provider call. Headers never carry
// authorization material.
type PreparedRequest struct {
	Method           string
	CreateEndpoint   string
	TrackingEndpoint string
	Headers          map[string]string
	Body             []byte
	Timeout          time.Duration
}

// Client submits fulfillment requests to a provider.
type Client interface {
	// Name returns the client identifier (e.g., "stub", "network").
	Name() string

	// Fulfill submits the order for fulfillment and returns the provider result.
	// Failures are reported as *ProviderError.
	Fulfill(ctx context.Context, order OrderData, buyer BuyerData) (*Result, error)
}

// IsBlank reports whether v counts as absent: nil or an empty string.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// OrderID returns the stringified order_id, or "" when absent.
func (d OrderData) OrderID() string {
	return cast.ToString(d[OrderIDKey])
}

// Products returns the products sequence. A missing or non-sequence value
// yields nil.
func (d OrderData) Products() []any {
	switch v := d[OrderProductsKey].(type) {
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i, p := range v {
			out[i] = p
		}
		return out
	default:
		return nil
	}
}

// MissingBuyerFields returns the required buyer fields that are blank, in
// declaration order.
func MissingBuyerFields(buyer BuyerData) []string {
	var missing []string
	for _, k := range RequiredBuyerFields {
		if IsBlank(buyer[k]) {
			missing = append(missing, k)
		}
	}
	return missing
}

// ValidateOrder checks order_id and products and returns the order id.
func ValidateOrder(provider string, order OrderData) (string, error) {
	orderID := order.OrderID()
	if orderID == "" {
		return "", NewProviderError(provider, CodeMissingOrderID,
			"order payload is missing required field: order_id")
	}
	if len(order.Products()) == 0 {
		return "", NewProviderError(provider, CodeMissingProducts, "order payload is missing products")
	}
	return orderID, nil
}

// ValidateBuyer reports every missing required buyer field at once.
func ValidateBuyer(provider string, buyer BuyerData) error {
	if missing := MissingBuyerFields(buyer); len(missing) > 0 {
		return NewProviderError(provider, CodeMissingBuyerFields,
			"buyer payload is missing required fields: "+strings.Join(missing, ","))
	}
	return nil
}

// ValidateBuyerFirst stops at the first missing required buyer field.
func ValidateBuyerFirst(provider string, buyer BuyerData) error {
	for _, k := range RequiredBuyerFields {
		if IsBlank(buyer[k]) {
			return NewProviderError(provider, CodeMissingBuyerFields,
				"buyer payload is missing required field: "+k)
		}
	}
	return nil
}
