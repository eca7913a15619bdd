// Package network prepares provider-shaped fulfillment requests. It builds
// the outbound HTTP request but never sends it; authentication and transport
// are out of scope.
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/tournevent/fba/pkg/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const clientName = "network"

const defaultTimeout = 5 * time.Second

// Config holds network client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client builds createFulfillmentOrder requests against BaseURL.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *otelzap.Logger
	tracer  trace.Tracer
}

// New creates a new network client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer("fba/network")
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		logger:  logger,
		tracer:  tracer,
	}
}

// Name returns the client name.
func (c *Client) Name() string {
	return clientName
}

// Fulfill validates the request and prepares the provider call. Buyer fields
// are checked one at a time and the first missing one is reported. The
// returned tracking number is freshly generated on every call.
func (c *Client) Fulfill(ctx context.Context, order fulfillment.OrderData, buyer fulfillment.BuyerData) (*fulfillment.Result, error) {
	ctx, span := c.tracer.Start(ctx, "network.Fulfill")
	defer span.End()

	orderID, err := fulfillment.ValidateOrder(clientName, order)
	if err != nil {
		return nil, err
	}
	if err := fulfillment.ValidateBuyerFirst(clientName, buyer); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("order_id", orderID))

	items := lineItems(order.Products())
	if len(items) == 0 {
		return nil, fulfillment.NewProviderError(clientName, fulfillment.CodeNoShippableItems,
			"order has no shippable items")
	}

	payload := &CreateFulfillmentOrderRequest{
		SellerFulfillmentOrderID: orderID,
		DisplayableOrderID:       orderID,
		DestinationAddress:       destinationAddress(order, buyer),
		Items:                    items,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fulfillment.NewProviderError(clientName, fulfillment.CodeRequestBuild,
			"failed to marshal request body").WithCause(err)
	}

	req, err := c.buildRequest(ctx, http.MethodPost, c.CreateEndpoint(), body)
	if err != nil {
		return nil, fulfillment.NewProviderError(clientName, fulfillment.CodeRequestBuild,
			"failed to prepare request").WithCause(err)
	}

	tracking, err := fulfillment.NewTrackingNumber()
	if err != nil {
		return nil, fulfillment.NewProviderError(clientName, fulfillment.CodeUnavailable,
			"failed to generate tracking number").WithCause(err)
	}

	c.logger.Ctx(ctx).Info("Prepared fulfillment request",
		zap.String("order_id", orderID),
		zap.String("endpoint", req.URL.String()),
		zap.Int("item_count", len(items)),
	)

	// The request is intentionally not executed.
	return &fulfillment.Result{
		Status:         fulfillment.StatusMockedHTTP,
		TrackingNumber: tracking,
		OrderID:        orderID,
		Prepared: &fulfillment.PreparedRequest{
			Method:           req.Method,
			CreateEndpoint:   req.URL.String(),
			TrackingEndpoint: c.TrackingEndpoint(orderID),
			Headers:          flattenHeaders(req.Header),
			Body:             body,
			Timeout:          c.timeout,
		},
	}, nil
}

// CreateEndpoint returns the create-fulfillment-order URL.
func (c *Client) CreateEndpoint() string {
	return c.baseURL + createFulfillmentOrderPath
}

// TrackingEndpoint returns the tracking-by-order-id URL.
func (c *Client) TrackingEndpoint(orderID string) string {
	return c.baseURL + trackingPathPrefix + url.PathEscape(orderID)
}

// buildRequest creates the HTTP request with JSON headers. No credentials
// are attached.
func (c *Client) buildRequest(ctx context.Context, method, endpoint string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// lineItems converts product entries, dropping entries without a sku or
// with a non-positive quantity.
func lineItems(products []any) []LineItem {
	items := make([]LineItem, 0, len(products))
	for _, p := range products {
		product, ok := p.(map[string]any)
		if !ok {
			continue
		}

		skuValue := product[productSKUKey]
		if skuValue == nil {
			skuValue = product[productCodeKey]
		}
		sku := cast.ToString(skuValue)
		qty := cast.ToInt(product[productQuantityKey])
		if sku == "" || qty <= 0 {
			continue
		}

		items = append(items, LineItem{
			SellerSKU: sku,
			Quantity:  qty,
		})
	}
	return items
}

func destinationAddress(order fulfillment.OrderData, buyer fulfillment.BuyerData) DestinationAddress {
	return DestinationAddress{
		Name:          stringOr(order[orderBuyerNameKey], "Buyer"),
		AddressLine1:  cast.ToString(order[orderStreetKey]),
		CountryCode:   stringOr(order[orderCountryKey], cast.ToString(buyer[fulfillment.BuyerCountryCode])),
		StateOrRegion: cast.ToString(order[orderStateKey]),
		City:          cast.ToString(order[orderCityKey]),
		PostalCode:    cast.ToString(order[orderZipKey]),
		Phone:         cast.ToString(buyer[fulfillment.BuyerPhone]),
	}
}

// stringOr returns fallback only when v is absent; an empty string is kept.
func stringOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	return cast.ToString(v)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[strings.ToLower(k)] = h.Get(k)
	}
	return out
}

var _ fulfillment.Client = (*Client)(nil)
