// Package metrics exposes Prometheus instrumentation for the server.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_http_requests_total",
		Help: "HTTP requests processed, by method and status code.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkup_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// ConnectedUsers tracks the number of live websocket connections.
	ConnectedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkup_connected_users",
		Help: "Users with a live websocket connection.",
	})

	// NotificationsEmitted counts persisted notifications by type and
	// whether they were pushed to a live connection.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_notifications_emitted_total",
		Help: "Notifications created, by type and delivery outcome.",
	}, []string{"type", "delivery"})

	// MessagesSent counts direct messages persisted.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkup_messages_sent_total",
		Help: "Direct messages persisted.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder mirrors the one in middleware; kept local so the metrics
// package has no internal dependencies.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Middleware records request counts and latencies. Paths are deliberately
// not a label to keep cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
