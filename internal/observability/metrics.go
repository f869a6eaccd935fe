package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	errors            *prometheus.CounterVec
	complaints        *prometheus.CounterVec
	statusChanges     *prometheus.CounterVec
	sessions          prometheus.Gauge
	eventsPublished   *prometheus.CounterVec
	deliveriesDropped prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses by error code",
		}, []string{"code"}),
		complaints: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_created_total",
			Help: "Total number of complaints filed",
		}, []string{"priority"}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_status_changes_total",
			Help: "Total number of complaint status changes",
		}, []string{"from", "to"}),
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_sessions",
			Help: "Number of connected realtime sessions",
		}),
		eventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_published_total",
			Help: "Total number of realtime events published",
		}, []string{"event"}),
		deliveriesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "realtime_deliveries_dropped_total",
			Help: "Total number of realtime frames dropped for slow sessions",
		}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(code).Inc()
}

// ComplaintCreated counts a filed complaint.
func (m *Metrics) ComplaintCreated(priority string) {
	if m == nil {
		return
	}
	m.complaints.WithLabelValues(priority).Inc()
}

// StatusChanged counts a status transition.
func (m *Metrics) StatusChanged(from, to string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(from, to).Inc()
}

// EventPublished counts an event handed to realtime delivery.
func (m *Metrics) EventPublished(event string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(event).Inc()
}

// SessionOpened tracks a connected realtime session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed tracks a disconnected realtime session.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// DeliveryDropped counts a frame discarded because a session buffer was full.
func (m *Metrics) DeliveryDropped() {
	if m == nil {
		return
	}
	m.deliveriesDropped.Inc()
}
