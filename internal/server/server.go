package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/fba/internal/telemetry"
	"github.com/tournevent/fba/pkg/buyer"
	"github.com/tournevent/fba/pkg/fulfillment"
	"github.com/tournevent/fba/pkg/order"
	"github.com/tournevent/fba/pkg/shipping"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP host for the shipping service.
type Server struct {
	port       int
	clientName string
	service    shipping.Service
	orders     order.Loader
	logger     *otelzap.Logger
	metrics    *telemetry.Metrics
	gatherer   prometheus.Gatherer
}

// Config holds server configuration.
type Config struct {
	Port       int
	ClientName string // fulfillment client label for metrics
}

// New creates a new server instance. Metrics are registered with reg; a nil
// reg uses the default Prometheus registry.
func New(cfg Config, service shipping.Service, orders order.Loader, logger *otelzap.Logger, reg *prometheus.Registry) *Server {
	if logger == nil {
		logger = telemetry.NewNopLogger()
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	return &Server{
		port:       cfg.Port,
		clientName: cfg.ClientName,
		service:    service,
		orders:     orders,
		logger:     logger,
		metrics:    telemetry.NewMetrics(registerer),
		gatherer:   gatherer,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/v1/shipments", s.handleShip)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type shipRequest struct {
	OrderID int            `json:"order_id"`
	Buyer   map[string]any `json:"buyer"`
}

type shipResponse struct {
	OrderID        int        `json:"order_id"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	Error          *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleShip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, shipResponse{
			Error: &errorBody{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed, use POST"},
		})
		return
	}

	var req shipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, shipResponse{
			Error: &errorBody{Code: "INVALID_JSON", Message: "Invalid JSON: " + err.Error()},
		})
		return
	}
	if req.OrderID <= 0 {
		writeJSON(w, http.StatusBadRequest, shipResponse{
			Error: &errorBody{Code: "INVALID_ORDER_ID", Message: "order_id must be a positive integer"},
		})
		return
	}

	start := time.Now()
	tracking, err := s.service.Ship(r.Context(), order.New(req.OrderID, s.orders), buyer.Map(req.Buyer))
	duration := time.Since(start).Seconds()

	if err != nil {
		status, body := s.classify(err, duration)
		s.logger.Ctx(r.Context()).Warn("Ship request failed",
			zap.Int("order_id", req.OrderID),
			zap.String("code", body.Code),
			zap.Error(err),
		)
		writeJSON(w, status, shipResponse{OrderID: req.OrderID, Error: body})
		return
	}

	s.metrics.RecordShipment(s.clientName, telemetry.OutcomeSuccess, duration)
	writeJSON(w, http.StatusOK, shipResponse{OrderID: req.OrderID, TrackingNumber: tracking})
}

// classify maps a ship error to an HTTP status and records metrics.
func (s *Server) classify(err error, duration float64) (int, *errorBody) {
	if shipping.IsTrackingNotFound(err) {
		s.metrics.RecordShipment(s.clientName, telemetry.OutcomeTrackingNotFound, duration)
		return http.StatusBadGateway, &errorBody{Code: "TRACKING_NOT_FOUND", Message: err.Error()}
	}

	s.metrics.RecordShipment(s.clientName, telemetry.OutcomeShippingError, duration)

	var provErr *fulfillment.ProviderError
	if errors.As(err, &provErr) {
		s.metrics.RecordProviderError(s.clientName, provErr.Code)
		switch provErr.Code {
		case fulfillment.CodeMockNotFound, fulfillment.CodeUnavailable, fulfillment.CodeIdempotency:
			return http.StatusServiceUnavailable, &errorBody{Code: provErr.Code, Message: err.Error()}
		}
		return http.StatusUnprocessableEntity, &errorBody{Code: provErr.Code, Message: err.Error()}
	}

	if shipping.IsShippingError(err) {
		return http.StatusUnprocessableEntity, &errorBody{Code: "SHIPPING_ERROR", Message: err.Error()}
	}
	return http.StatusInternalServerError, &errorBody{Code: "INTERNAL", Message: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
