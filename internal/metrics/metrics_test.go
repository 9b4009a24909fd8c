package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveExport(t *testing.T) {
	m := New()
	m.ObserveExport("invoice", "pdf", "done", 20*time.Millisecond)
	m.ObserveExport("invoice", "pdf", "done", 30*time.Millisecond)
	m.Fallback("category_report")

	if got := testutil.ToFloat64(m.exports.WithLabelValues("invoice", "pdf", "done")); got != 2 {
		t.Fatalf("exports counter = %v", got)
	}
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("category_report")); got != 1 {
		t.Fatalf("fallback counter = %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveExport("invoice", "html", "done", time.Millisecond)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "shopdesk_exports_total") {
		t.Fatalf("metrics output missing exports counter")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveExport("invoice", "pdf", "done", time.Second)
	m.Fallback("invoice")
	h := m.Instrument(http.NotFoundHandler())
	if h == nil {
		t.Fatalf("Instrument returned nil")
	}
}
