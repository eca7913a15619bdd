// Package shipping orchestrates shipping an order through a fulfillment
// client: it loads and validates order and buyer data, submits the request
// and interprets the provider result.
package shipping

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"github.com/tournevent/fba/pkg/buyer"
	"github.com/tournevent/fba/pkg/fulfillment"
	"github.com/tournevent/fba/pkg/order"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service ships an order to a buyer and returns the tracking number.
type Service interface {
	Ship(ctx context.Context, ord order.Record, b buyer.Record) (string, error)
}

// Orchestrator is the Service backed by a fulfillment.Client. A single Ship
// call performs at most one load and one provider call, with no retries.
type Orchestrator struct {
	client fulfillment.Client
	logger *otelzap.Logger
	tracer trace.Tracer
}

// New creates an orchestrator. A nil logger discards events.
func New(client fulfillment.Client, logger *otelzap.Logger, tracer trace.Tracer) *Orchestrator {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer("fba/shipping")
	}
	return &Orchestrator{
		client: client,
		logger: logger,
		tracer: tracer,
	}
}

// Ship ships ord to b. It returns a *ShippingError for invalid input or a
// failed provider call, and a *TrackingNotFoundError when the provider
// returns no tracking number.
func (o *Orchestrator) Ship(ctx context.Context, ord order.Record, b buyer.Record) (string, error) {
	ctx, span := o.tracer.Start(ctx, "shipping.Ship", trace.WithAttributes(
		attribute.Int("order.id", ord.ID()),
		attribute.String("fulfillment.client", o.client.Name()),
	))
	defer span.End()

	log := o.logger.Ctx(ctx)
	requestID := uuid.New().String()

	data := ord.Data()
	if len(data) == 0 {
		if err := ord.Load(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "order load failed")
			return "", newShippingError("failed to load order: "+err.Error(), err)
		}
		data = ord.Data()
	}

	buyerData := buyer.Normalize(b)

	if len(data) == 0 {
		span.SetStatus(codes.Error, "empty order data")
		return "", newShippingError("order or buyer data is empty", nil)
	}

	if missing := fulfillment.MissingBuyerFields(buyerData); len(missing) > 0 {
		span.SetStatus(codes.Error, "invalid buyer")
		return "", newShippingError("buyer data missing required fields: "+strings.Join(missing, ","), nil)
	}

	orderData := fulfillment.OrderData(data)
	orderID := orderData.OrderID()

	log.Info("FBA ship request prepared",
		zap.String("request_id", requestID),
		zap.String("order_id", orderID),
		zap.Int("products_count", len(orderData.Products())),
		zap.String("country_code", cast.ToString(buyerData[fulfillment.BuyerCountryCode])),
	)

	resp, err := o.client.Fulfill(ctx, orderData, buyerData)
	if err != nil {
		perr := fulfillment.AsProviderError(o.client.Name(), err)
		log.Error("FBA call failed",
			zap.String("request_id", requestID),
			zap.String("order_id", orderID),
			zap.String("code", perr.Code),
			zap.Error(perr),
		)
		span.RecordError(perr)
		span.SetStatus(codes.Error, "provider call failed")
		return "", newShippingError("FBA call failed: "+perr.Error(), perr)
	}

	if resp == nil || resp.TrackingNumber == "" {
		log.Warn("FBA did not return tracking number",
			zap.String("request_id", requestID),
			zap.String("order_id", orderID),
		)
		span.SetStatus(codes.Error, "tracking not returned")
		return "", &TrackingNotFoundError{OrderID: orderID}
	}

	log.Info("FBA ship succeeded",
		zap.String("request_id", requestID),
		zap.String("order_id", orderID),
		zap.String("status", string(resp.Status)),
		zap.String("tracking_prefix", trackingPrefix(resp.TrackingNumber)),
	)
	return resp.TrackingNumber, nil
}

// trackingPrefix returns at most the first 4 characters for logging.
func trackingPrefix(tracking string) string {
	if len(tracking) <= 4 {
		return tracking
	}
	return tracking[:4]
}

var _ Service = (*Orchestrator)(nil)
