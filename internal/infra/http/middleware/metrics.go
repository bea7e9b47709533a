package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Total number of leads captured",
		},
		[]string{"source"},
	)

	outreachSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_sent_total",
			Help: "Total number of outreach messages sent",
		},
		[]string{"channel"},
	)

	outreachBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_blocked_total",
			Help: "Outreach attempts blocked because a reply is still pending",
		},
		[]string{"channel"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)

	backgroundTaskFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_task_failures_total",
			Help: "Best-effort background tasks that failed",
		},
		[]string{"task"},
	)

	leadsAwaitingReply = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leads_awaiting_reply_stale",
			Help: "Leads contacted longer ago than the stale window without a reply",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Metrics records request totals and durations labelled by route pattern,
// so ids in the path do not explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// PrometheusRecorder exports use case counters.
type PrometheusRecorder struct{}

func (PrometheusRecorder) LeadCaptured(source entity.Source) {
	leadsCaptured.WithLabelValues(string(source)).Inc()
}

func (PrometheusRecorder) OutreachSent(channel entity.Channel) {
	outreachSent.WithLabelValues(string(channel)).Inc()
}

func (PrometheusRecorder) OutreachBlocked(channel entity.Channel) {
	outreachBlocked.WithLabelValues(string(channel)).Inc()
}

func (PrometheusRecorder) IntegrationError(service string) {
	RecordIntegrationError(service)
}

func (PrometheusRecorder) TaskFailed(task string) {
	backgroundTaskFailures.WithLabelValues(task).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

func SetLeadsAwaitingReply(n int) {
	leadsAwaitingReply.Set(float64(n))
}
