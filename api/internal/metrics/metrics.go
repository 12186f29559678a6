package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics — счётчики конвейера отправки. Nil-безопасен: методы на nil ничего не делают.
type Metrics struct {
	dispatch    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	outcomes    *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screening",
			Name:      "dispatch_total",
			Help:      "Requests sent to prediction/identity endpoints by kind and HTTP status.",
		}, []string{"kind", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "screening",
			Name:      "dispatch_duration_seconds",
			Help:      "Round-trip time of endpoint calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"kind"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screening",
			Name:      "presentations_total",
			Help:      "Normalized results shown to users by kind and type (outcome/error).",
		}, []string{"kind", "type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screening",
			Name:      "submit_rejected_total",
			Help:      "Submit attempts rejected before dispatch by kind and reason.",
		}, []string{"kind", "reason"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screening",
			Name:      "proxy_rate_limited_total",
			Help:      "Proxy requests refused by the per-client limiter.",
		}, []string{"route"}),
	}
	if reg != nil {
		reg.MustRegister(m.dispatch, m.latency, m.outcomes, m.rejected, m.rateLimited)
	}
	return m
}

// ObserveDispatch: status "transport" для запросов без ответа.
func (m *Metrics) ObserveDispatch(kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.dispatch.WithLabelValues(kind, status).Inc()
	m.latency.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) ObservePresentation(kind, typ string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(kind, typ).Inc()
}

func (m *Metrics) ObserveRejected(kind, reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
