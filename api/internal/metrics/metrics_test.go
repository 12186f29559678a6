package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCountersAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveDispatch("malaria", "200", 120*time.Millisecond)
	m.ObserveDispatch("malaria", "200", 80*time.Millisecond)
	m.ObservePresentation("malaria", "outcome")
	m.ObserveRejected("diabetes", "busy")
	m.ObserveRateLimited("screening")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`screening_dispatch_total{kind="malaria",status="200"} 2`,
		`screening_presentations_total{kind="malaria",type="outcome"} 1`,
		`screening_submit_rejected_total{kind="diabetes",reason="busy"} 1`,
		`screening_proxy_rate_limited_total{route="screening"} 1`,
		`screening_dispatch_duration_seconds_count{kind="malaria"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in output:\n%s", want, body)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveDispatch("x", "200", time.Second)
	m.ObservePresentation("x", "error")
	m.ObserveRejected("x", "busy")
	m.ObserveRateLimited("x")
}
