// Package metrics exposes Prometheus counters for the credential flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LoginAttempts counts logins by actor (customer, partner) and outcome
	// (success, unknown_account, bad_password, error).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by actor type and outcome",
		},
		[]string{"actor", "outcome"},
	)

	// OTPOperations counts issue/verify calls by outcome.
	OTPOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_operations_total",
			Help: "One-time code operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// GeocodeRequests counts geocoding calls by outcome (ok, no_match, error).
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Geocoding provider calls by outcome",
		},
		[]string{"outcome"},
	)

	EventPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_event_publish_errors_total",
			Help: "Account events that could not be published",
		},
	)

	// EventsDropped counts events discarded because the publish buffer was
	// full or the publisher was shutting down.
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_events_dropped_total",
			Help: "Account events dropped before publishing",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
