// Package stub provides a deterministic fulfillment client backed by a
// directory of canned order documents.
package stub

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"github.com/tournevent/fba/pkg/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const clientName = "stub"

// DefaultOrderID names the fallback document used when no document exists
// for the requested order.
const DefaultOrderID = 16400

// Config holds stub client configuration.
type Config struct {
	MockDir        string
	DefaultOrderID int      // Fallback document id; DefaultOrderID when zero
	Fs             afero.Fs // Defaults to the OS filesystem
}

// Client is a fulfillment client that resolves canned documents instead of
// calling a provider. The first successful fulfillment for an order id
// stores a tracking number in the idempotency store; later calls return it.
type Client struct {
	config Config
	fs     afero.Fs
	store  fulfillment.IdempotencyStore
	logger *otelzap.Logger
	tracer trace.Tracer
}

// New creates a stub client. Instances sharing a store share tracking
// numbers; a nil store gives the client a private in-memory one.
func New(cfg Config, store fulfillment.IdempotencyStore, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if cfg.DefaultOrderID == 0 {
		cfg.DefaultOrderID = DefaultOrderID
	}
	if store == nil {
		store = fulfillment.NewMemoryStore()
	}
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer("fba/stub")
	}

	return &Client{
		config: cfg,
		fs:     fs,
		store:  store,
		logger: logger,
		tracer: tracer,
	}
}

// Name returns the client name.
func (c *Client) Name() string {
	return clientName
}

// Fulfill validates the request, resolves the canned document and returns
// the idempotent tracking number for the order.
func (c *Client) Fulfill(ctx context.Context, order fulfillment.OrderData, buyer fulfillment.BuyerData) (*fulfillment.Result, error) {
	ctx, span := c.tracer.Start(ctx, "stub.Fulfill")
	defer span.End()

	orderID, err := fulfillment.ValidateOrder(clientName, order)
	if err != nil {
		return nil, err
	}
	if err := fulfillment.ValidateBuyer(clientName, buyer); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("order_id", orderID))

	source, err := c.resolve(orderID)
	if err != nil {
		return nil, err
	}

	tracking, err := c.store.GetOrCreate(ctx, orderID, fulfillment.NewTrackingNumber)
	if err != nil {
		c.logger.Ctx(ctx).Error("Idempotency store error",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, fulfillment.NewProviderError(clientName, fulfillment.CodeIdempotency,
			"failed to resolve tracking number").WithCause(err)
	}

	c.logger.Ctx(ctx).Debug("Stub fulfillment resolved",
		zap.String("order_id", orderID),
		zap.String("source", source),
	)

	return &fulfillment.Result{
		Status:         fulfillment.StatusSuccess,
		TrackingNumber: tracking,
		OrderID:        orderID,
		Source:         source,
	}, nil
}

// resolve returns the document for orderID, falling back to the default
// document.
func (c *Client) resolve(orderID string) (string, error) {
	candidate := documentPath(c.config.MockDir, orderID)
	if ok, err := afero.Exists(c.fs, candidate); err == nil && ok {
		return candidate, nil
	}

	fallback := documentPath(c.config.MockDir, strconv.Itoa(c.config.DefaultOrderID))
	ok, err := afero.Exists(c.fs, fallback)
	if err != nil {
		return "", fulfillment.NewProviderError(clientName, fulfillment.CodeMockNotFound,
			"mock not found: "+fallback).WithCause(err)
	}
	if !ok {
		return "", fulfillment.NewProviderError(clientName, fulfillment.CodeMockNotFound,
			"mock not found: "+fallback)
	}
	return fallback, nil
}

// DocumentName returns the canned document file name for an order id.
func DocumentName(orderID string) string {
	return fmt.Sprintf("order.%s.json", orderID)
}

func documentPath(dir, orderID string) string {
	return filepath.Join(dir, DocumentName(orderID))
}

var _ fulfillment.Client = (*Client)(nil)
