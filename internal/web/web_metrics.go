package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

type webMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newWebMetrics(registry prometheus.Registerer) (*webMetrics, error) {
	m := &webMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uaecho_http_requests_total",
			Help: "HTTP requests handled, by route, method and status",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uaecho_http_request_duration_seconds",
			Help:    "Time taken to answer an HTTP request",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	if err := registry.Register(m.requests); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			m.requests = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, fmt.Errorf("failed to register requests metric: %w", err)
		}
	}
	if err := registry.Register(m.duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			m.duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, fmt.Errorf("failed to register duration metric: %w", err)
		}
	}
	return m, nil
}

// MetricsMiddleware records request counts and latencies
func (s *WebServer) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := metricMethod(c.Request.Method)
		s.metrics.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		s.metrics.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler exposes this server's metrics in the Prometheus text format.
// It is meant for a separate listener, never the public router.
func (s *WebServer) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// metricMethod keeps the method label bounded, clients can send anything
func metricMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return method
	}
	return "OTHER"
}
