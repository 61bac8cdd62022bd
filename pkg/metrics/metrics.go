package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latency for the API surface.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests processed, partitioned by method, route, and status code.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{
		requests: requests,
		duration: duration,
	}
}

// ObserveRequest records a completed request.
func (h *HTTPMetrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	h.requests.WithLabelValues(normalizeLabel(method), normalizeLabel(route), normalizeLabel(status)).Inc()
	h.duration.WithLabelValues(normalizeLabel(method), normalizeLabel(route)).Observe(elapsed.Seconds())
}

// BookingMetrics records booking submission outcomes.
type BookingMetrics struct {
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// Submission outcome labels.
const (
	OutcomeAccepted   = "accepted"
	OutcomeConflict   = "conflict"
	OutcomeValidation = "validation"
	OutcomeCoupon     = "coupon"
	OutcomeError      = "error"
)

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_submissions_total",
		Help: "Booking submission attempts, partitioned by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_submission_duration_seconds",
		Help:    "Duration of booking submission transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(submissions, duration)
	return &BookingMetrics{
		submissions: submissions,
		duration:    duration,
	}
}

// ObserveSubmission records a submission attempt and how long it took.
func (b *BookingMetrics) ObserveSubmission(outcome string, elapsed time.Duration) {
	if b == nil || b.submissions == nil {
		return
	}
	label := normalizeLabel(outcome)
	b.submissions.WithLabelValues(label).Inc()
	b.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
