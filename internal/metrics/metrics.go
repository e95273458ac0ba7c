package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityalert_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cityalert_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// Внешние сервисы
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityalert_geocode_requests_total",
			Help: "Geocoding lookups by outcome",
		},
		[]string{"kind", "outcome"}, // kind: forward|reverse
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityalert_emails_total",
			Help: "Email send attempts by template and outcome",
		},
		[]string{"template", "outcome"},
	)

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityalert_chat_requests_total",
			Help: "Chat proxy requests by outcome",
		},
		[]string{"outcome"},
	)

	// Инциденты
	DuplicateIncidents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityalert_duplicate_incidents_total",
			Help: "Incident submissions rejected as duplicates",
		},
		[]string{"kind"}, // exact|near
	)

	IncidentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityalert_incident_cache_lookups_total",
			Help: "Incident cache lookups by result",
		},
		[]string{"result"}, // hit|miss|error
	)
)
