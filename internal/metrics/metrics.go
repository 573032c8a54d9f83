// Package metrics exposes Prometheus collectors for HTTP traffic and the
// checkout funnel.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	ordersCreated        *prometheus.CounterVec
	paymentVerifications *prometheus.CounterVec
	paymentIntents       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders placed, by payment method.",
		}, []string{"payment_method"}),
		paymentVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Payment signature verifications by gateway and result.",
		}, []string{"gateway", "result"}),
		paymentIntents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_intents_total",
			Help:      "Gateway order / payment intent creations by gateway and result.",
		}, []string{"gateway", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.ordersCreated,
		m.paymentVerifications,
		m.paymentIntents,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency labelled by the chi route
// template, so /products/{id} is one series regardless of id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func (m *Metrics) OrderCreated(paymentMethod string) {
	m.ordersCreated.WithLabelValues(paymentMethod).Inc()
}

func (m *Metrics) PaymentVerification(gateway string, ok bool) {
	m.paymentVerifications.WithLabelValues(gateway, result(ok)).Inc()
}

func (m *Metrics) PaymentIntent(gateway string, ok bool) {
	m.paymentIntents.WithLabelValues(gateway, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
