package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.JoinAttemptsTotal)
	assert.NotNil(t, m.SettlementsTotal)
	assert.NotNil(t, m.ReviewsTotal)
	assert.NotNil(t, m.PendingPayments)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/events", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/events/:id/join", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/events/:id/join", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestSettlementsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.SettlementsTotal.WithLabelValues("paid", "applied").Inc()
	m.SettlementsTotal.WithLabelValues("paid", "duplicate").Inc()
	m.SettlementsTotal.WithLabelValues("cancelled", "applied").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "settlements_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "settlements_total metric not found")
}

func TestJoinAttemptsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.JoinAttemptsTotal.WithLabelValues("success").Inc()
	m.JoinAttemptsTotal.WithLabelValues("no_seats").Inc()
	m.JoinAttemptsTotal.WithLabelValues("no_seats").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "join_attempts_total" {
			found = true
			assert.Equal(t, 2, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "join_attempts_total metric not found")
}

func TestPendingPaymentsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.PendingPayments.Set(7)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "pending_payments" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, 7.0, f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found, "pending_payments metric not found")
}
