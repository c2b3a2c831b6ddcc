// Package metrics holds the Prometheus collectors of the fill pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	FillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rta_fills_total",
			Help: "Total number of RTA fill operations",
		},
		[]string{"company", "outcome"},
	)

	FillErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rta_fill_errors_total",
			Help: "Total number of failed RTA fills by error code",
		},
		[]string{"company", "error_code"},
	)

	FillDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rta_fill_duration_seconds",
			Help:    "Duration of RTA fill operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"company"},
	)

	TemplateLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rta_template_loads_total",
			Help: "Total number of template loads from storage",
		},
		[]string{"company", "outcome"},
	)

	TemplateFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rta_template_fallbacks_total",
			Help: "Total number of resolutions that fell back to the default template",
		},
	)

	TrelloRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rta_trello_requests_total",
			Help: "Total number of task-board API requests",
		},
		[]string{"operation", "outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rta_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "method", "status"},
	)
)
