package main

import (
	"context"
	"fmt"

	"github.com/tournevent/fba/internal/config"
	"github.com/tournevent/fba/internal/telemetry"
	"github.com/tournevent/fba/pkg/fulfillment"
	"github.com/tournevent/fba/pkg/fulfillment/network"
	"github.com/tournevent/fba/pkg/fulfillment/stub"
	"github.com/tournevent/fba/pkg/order"
	"github.com/tournevent/fba/pkg/shipping"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// app wires the shipping service from configuration.
type app struct {
	cfg          *config.Config
	logger       *otelzap.Logger
	client       fulfillment.Client
	orders       order.Loader
	orchestrator *shipping.Orchestrator
	closers      []func(context.Context) error
}

func newApp(ctx context.Context) (*app, error) {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func(context.Context) error { return logger.Sync() })

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		a.closers = append(a.closers, tracerShutdown)
	}
	tracer := otel.Tracer(cfg.ServiceName)

	store, closeStore, err := initIdempotencyStore(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	a.client = initFulfillmentClient(cfg, store, logger, tracer)
	a.orders = order.NewFileLoader(nil, cfg.OrderDataDir)
	a.orchestrator = shipping.New(a.client, logger, tracer)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

// initIdempotencyStore creates the single store shared by every stub client
// in this process.
func initIdempotencyStore(ctx context.Context, cfg *config.Config) (fulfillment.IdempotencyStore, func(context.Context) error, error) {
	if cfg.IdempotencyBackend != config.IdempotencyRedis {
		return fulfillment.NewMemoryStore(), func(context.Context) error { return nil }, nil
	}

	store, err := fulfillment.NewRedisStore(cfg.RedisURL, cfg.IdempotencyTTL)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("idempotency store: %w", err)
	}
	return store, func(context.Context) error { return store.Close() }, nil
}

func initFulfillmentClient(cfg *config.Config, store fulfillment.IdempotencyStore, logger *otelzap.Logger, tracer trace.Tracer) fulfillment.Client {
	if cfg.FBAClient == config.ClientNetwork {
		return network.New(network.Config{
			BaseURL: cfg.FBABaseURL,
			Timeout: cfg.FBARequestTimeout,
		}, logger, tracer)
	}

	return stub.New(stub.Config{
		MockDir:        cfg.FBAMockDir,
		DefaultOrderID: cfg.FBADefaultOrderID,
	}, store, logger, tracer)
}
