// Package http contains the HTTP handlers for the public API: payment
// webhooks, license validation, checkout initiation, release metadata and
// health probes. Handlers depend only on the narrow service interfaces in
// service_interfaces.go so tests can substitute mocks.
package http
