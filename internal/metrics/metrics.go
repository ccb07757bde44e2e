// Package metrics exposes the Prometheus instruments shared across handlers
// and services. Everything registers on the default registry and is served
// at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LicensesIssued counts licenses created from paid checkout events.
	LicensesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dropvox",
		Name:      "licenses_issued_total",
		Help:      "Licenses issued from paid checkout webhook events.",
	})

	// WebhookEvents counts incoming payment webhook events by type and outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropvox",
		Name:      "webhook_events_total",
		Help:      "Payment webhook events received, by event type and outcome.",
	}, []string{"event_type", "outcome"})

	// Validations counts license validation requests by outcome.
	Validations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropvox",
		Name:      "license_validations_total",
		Help:      "License validation requests, by outcome.",
	}, []string{"outcome"})

	// CheckoutSessions counts checkout session creations by outcome.
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropvox",
		Name:      "checkout_sessions_total",
		Help:      "Checkout session creation attempts, by outcome.",
	}, []string{"outcome"})
)
