package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// Business metrics
	signupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_signups_total",
			Help: "Total number of user signups",
		},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	loanApplicationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_applications_total",
			Help: "Total number of submitted loan applications",
		},
	)

	loanTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_transitions_total",
			Help: "Total number of loan status transitions",
		},
		[]string{"from", "to"},
	)
)

// ObserveHTTPRequest records one finished HTTP request
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordSignup counts a successful signup
func RecordSignup() {
	signupsTotal.Inc()
}

// RecordLogin counts a login attempt
func RecordLogin(success bool) {
	outcome := "failed"
	if success {
		outcome = "success"
	}
	loginsTotal.WithLabelValues(outcome).Inc()
}

// RecordLoanApplication counts a submitted loan
func RecordLoanApplication() {
	loanApplicationsTotal.Inc()
}

// RecordLoanTransition counts a status change
func RecordLoanTransition(from, to string) {
	loanTransitionsTotal.WithLabelValues(from, to).Inc()
}
