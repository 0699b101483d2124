// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration in seconds
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RequestTotal tracks total number of requests
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// EmailsSent counts successful sends by template type.
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrationdesk_emails_sent_total",
			Help: "Emails accepted by the mail transport",
		},
		[]string{"template_type"},
	)

	// EmailsFailed counts failed sends by template type.
	EmailsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrationdesk_emails_failed_total",
			Help: "Emails rejected by the mail transport",
		},
		[]string{"template_type"},
	)

	// ContactsImported counts imported rows by outcome (created, skipped, error).
	ContactsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrationdesk_contacts_imported_total",
			Help: "Rows processed by contact imports",
		},
		[]string{"outcome"},
	)

	// BadgesGenerated counts badge generation attempts by outcome (generated, failed).
	BadgesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrationdesk_badges_total",
			Help: "Badge generation attempts",
		},
		[]string{"outcome"},
	)
)

// Import outcome labels.
const (
	OutcomeCreated   = "created"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
	OutcomeGenerated = "generated"
	OutcomeFailed    = "failed"
)
