// Package metrics exposes Prometheus collectors for ledger and marketplace
// operations. The surrounding application mounts Handler() wherever it serves
// its own observability endpoints.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carbon_layer",
			Subsystem: "ledger",
			Name:      "registrations_total",
			Help:      "Total number of user registrations.",
		},
	)

	readings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carbon_layer",
			Subsystem: "ledger",
			Name:      "device_readings_total",
			Help:      "Total number of accepted device readings.",
		},
		[]string{"device_type"},
	)

	claims = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carbon_layer",
			Subsystem: "ledger",
			Name:      "claims_total",
			Help:      "Total number of successful credit claims.",
		},
	)

	creditsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carbon_layer",
			Subsystem: "ledger",
			Name:      "credits_issued_total",
			Help:      "Total credits issued across all claims.",
		},
	)

	transfers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carbon_layer",
			Subsystem: "ledger",
			Name:      "transfers_total",
			Help:      "Total number of successful credit transfers.",
		},
	)

	creditsTransferred = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carbon_layer",
			Subsystem: "ledger",
			Name:      "credits_transferred_total",
			Help:      "Total credits moved between accounts.",
		},
	)

	totalSupply = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "carbon_layer",
			Subsystem: "ledger",
			Name:      "total_supply",
			Help:      "Current total credit supply across all accounts.",
		},
	)

	listings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carbon_layer",
			Subsystem: "marketplace",
			Name:      "listing_events_total",
			Help:      "Total marketplace listing events.",
		},
		[]string{"event"},
	)
)

func init() {
	Registry.MustRegister(
		registrations,
		readings,
		claims,
		creditsIssued,
		transfers,
		creditsTransferred,
		totalSupply,
		listings,
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRegistration records a successful user registration.
func RecordRegistration() {
	registrations.Inc()
}

// RecordReading records an accepted device reading.
func RecordReading(deviceType string) {
	if deviceType == "" {
		deviceType = "unknown"
	}
	readings.WithLabelValues(deviceType).Inc()
}

// RecordClaim records a successful claim and the credits it issued.
func RecordClaim(credits int64) {
	claims.Inc()
	creditsIssued.Add(float64(credits))
	totalSupply.Add(float64(credits))
}

// RecordTransfer records a successful peer-to-peer transfer.
func RecordTransfer(amount int64) {
	transfers.Inc()
	creditsTransferred.Add(float64(amount))
}

// RecordListingEvent records a marketplace listing lifecycle event
// ("created", "purchased" or "cancelled").
func RecordListingEvent(event string) {
	listings.WithLabelValues(event).Inc()
}
