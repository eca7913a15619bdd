package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Shipment outcomes recorded by RecordShipment.
const (
	OutcomeSuccess          = "success"
	OutcomeShippingError    = "shipping_error"
	OutcomeTrackingNotFound = "tracking_not_found"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ShipmentsTotal   *prometheus.CounterVec
	ShipmentDuration *prometheus.HistogramVec
	ProviderErrors   *prometheus.CounterVec
}

// NewMetrics creates metrics and registers them with reg. A nil reg uses
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ShipmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fba_shipments_total",
				Help: "Total number of ship calls by fulfillment client and outcome",
			},
			[]string{"client", "outcome"},
		),
		ShipmentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fba_shipment_duration_seconds",
				Help:    "Ship call duration in seconds by fulfillment client",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"client"},
		),
		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fba_provider_errors_total",
				Help: "Total fulfillment provider errors by client and error code",
			},
			[]string{"client", "code"},
		),
	}

	reg.MustRegister(m.ShipmentsTotal, m.ShipmentDuration, m.ProviderErrors)
	return m
}

// RecordShipment records a ship call.
func (m *Metrics) RecordShipment(client, outcome string, duration float64) {
	m.ShipmentsTotal.WithLabelValues(client, outcome).Inc()
	m.ShipmentDuration.WithLabelValues(client).Observe(duration)
}

// RecordProviderError records a provider error metric.
func (m *Metrics) RecordProviderError(client, code string) {
	m.ProviderErrors.WithLabelValues(client, code).Inc()
}
