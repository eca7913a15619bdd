package telemetry_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/fba/internal/telemetry"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, telemetry.ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, telemetry.ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, telemetry.ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, telemetry.ParseLevel("verbose"))
}

func TestNewLogger(t *testing.T) {
	logger, err := telemetry.NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.RecordShipment("stub", telemetry.OutcomeSuccess, 0.01)
	m.RecordShipment("stub", telemetry.OutcomeSuccess, 0.02)
	m.RecordProviderError("stub", "MOCK_NOT_FOUND")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShipmentsTotal.WithLabelValues("stub", telemetry.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderErrors.WithLabelValues("stub", "MOCK_NOT_FOUND")))
}
