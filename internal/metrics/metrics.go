// Package metrics содержит Prometheus-метрики HTTP API и доменных операций.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "planner"

// Metrics набор метрик приложения.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	planChanges *prometheus.CounterVec
	emailsSent  *prometheus.CounterVec
}

// New регистрирует метрики в reg и возвращает их.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		planChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_changes_total",
			Help:      "Plan mutations by operation.",
		}, []string{"op"}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_emails_total",
			Help:      "Verification emails by delivery result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests, m.duration, m.planChanges, m.emailsSent)
	return m
}

// PlanChanged учитывает изменение плана (create, update, toggle, delete).
func (m *Metrics) PlanChanged(op string) {
	m.planChanges.WithLabelValues(op).Inc()
}

// EmailSent учитывает результат отправки письма подтверждения.
func (m *Metrics) EmailSent(result string) {
	m.emailsSent.WithLabelValues(result).Inc()
}

// Middleware считает запросы и их длительность. Маршрут берётся из шаблона chi,
// чтобы идентификаторы планов не попадали в метки.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
