package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAnalysis("GDPR", "ok")
	m.ObserveAnalysis("GDPR", "ok")
	m.ObserveRecovery("extracted")
	m.ObserveFile("ok")
	m.ObserveFile("skipped")
	m.AddChunks(7)
	m.AddChunks(0)
	m.ObserveBackend("analyze", nil, time.Second)
	m.ObserveBackend("analyze", errors.New("boom"), time.Second)
	m.ObserveHTTP("/status", http.MethodGet, 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.analyses.WithLabelValues("GDPR", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recoveries.WithLabelValues("extracted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.files.WithLabelValues("skipped")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.chunks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendCalls.WithLabelValues("analyze", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/status", "GET", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAnalysis("GDPR", "ok")
		m.ObserveRecovery("direct")
		m.ObserveFile("ok")
		m.AddChunks(3)
		m.ObserveBackend("report", nil, 0)
		m.ObserveHTTP("/", "GET", 200, 0)
	})
	assert.NotNil(t, m.Handler())
}

func TestHandlerServesOwnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.AddChunks(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "regaudit_chunks_produced_total 3")
}
