package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SchedulingMetrics exposes counters/histograms for the scheduling flows.
type SchedulingMetrics struct {
	requestDuration  *prometheus.HistogramVec
	bookingsTotal    *prometheus.CounterVec
	reschedulesTotal *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fisiocal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP request processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiocal",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total appointments booked",
		}, []string{"type", "status"}),
		reschedulesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiocal",
			Subsystem: "scheduling",
			Name:      "reschedules_total",
			Help:      "Total drag-drop reschedules",
		}, []string{"status"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiocal",
			Subsystem: "scheduling",
			Name:      "status_transitions_total",
			Help:      "Total appointment status transitions",
		}, []string{"to"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestDuration, m.bookingsTotal, m.reschedulesTotal, m.transitionsTotal)
	return m
}

func (m *SchedulingMetrics) ObserveRequest(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

func (m *SchedulingMetrics) ObserveBooking(appointmentType, status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(appointmentType, status).Inc()
}

func (m *SchedulingMetrics) ObserveReschedule(status string) {
	if m == nil {
		return
	}
	m.reschedulesTotal.WithLabelValues(status).Inc()
}

func (m *SchedulingMetrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(to).Inc()
}

// Handler serves the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
