package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status_code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status_code"})

	FeedbackSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_submissions_total",
		Help: "Feedback submissions by outcome",
	}, []string{"result"})

	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_login_attempts_total",
		Help: "Administrator login attempts by outcome",
	}, []string{"result"})
)

// Outcome labels shared by the counters above.
const (
	ResultCreated = "created"
	ResultInvalid = "invalid"
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// MustRegister registers every collector with the given registerer.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		FeedbackSubmissions,
		LoginAttempts,
	)
}

func IncFeedback(result string) {
	FeedbackSubmissions.WithLabelValues(result).Inc()
}

func IncLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}
