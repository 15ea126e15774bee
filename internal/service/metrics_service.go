package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusops/timetable-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the engine.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	transitionsTotal    *prometheus.CounterVec
	conflictsDetected   *prometheus.CounterVec
	reservationsCreated prometheus.Counter
	reservationsDeleted prometheus.Counter
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	transitionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_transitions_total",
		Help: "Lifecycle transitions by name and outcome",
	}, []string{"transition", "outcome"})

	conflictsDetected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_conflicts_detected_total",
		Help: "Conflicts found by the detector, by type",
	}, []string{"type"})

	reservationsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reservations_created_total",
		Help: "System-generated reservations materialized",
	})

	reservationsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reservations_deleted_total",
		Help: "System-generated reservations torn down",
	})

	registry.MustRegister(requestDuration, requestTotal, transitionsTotal, conflictsDetected, reservationsCreated, reservationsDeleted)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		transitionsTotal:    transitionsTotal,
		conflictsDetected:   conflictsDetected,
		reservationsCreated: reservationsCreated,
		reservationsDeleted: reservationsDeleted,
	}
}

// Handler exposes the scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// ObserveTransition records a lifecycle transition attempt.
func (s *MetricsService) ObserveTransition(transition, outcome string) {
	s.transitionsTotal.WithLabelValues(transition, outcome).Inc()
}

// ObserveConflicts records detected conflicts by type.
func (s *MetricsService) ObserveConflicts(conflicts []models.Conflict) {
	for _, c := range conflicts {
		s.conflictsDetected.WithLabelValues(string(c.Type)).Inc()
	}
}

// AddReservations tracks reservation churn.
func (s *MetricsService) AddReservations(created, deleted int) {
	if created > 0 {
		s.reservationsCreated.Add(float64(created))
	}
	if deleted > 0 {
		s.reservationsDeleted.Add(float64(deleted))
	}
}
