package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.WorkshopTransition("planned", "published")
	m.WorkshopTransition("planned", "published")
	m.Registration("confirmed")
	m.RefundDecision("processed")
	m.StockAdjusted()
	m.NotificationEnqueued("invitation", errors.New("closed"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.workshopTransitions.WithLabelValues("planned", "published")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refunds.WithLabelValues("processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockAdjustments))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("invitation", "error")))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.WorkshopTransition("a", "b")
		m.Registration("x")
		m.RefundDecision("x")
		m.StockAdjusted()
		m.NotificationEnqueued("x", nil)
	})
}
