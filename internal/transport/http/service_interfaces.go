package http

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	"dropvoxsite/internal/data"
	"dropvoxsite/internal/license"
	"dropvoxsite/internal/release"
)

// LicenseService is the license issuance and validation contract the
// handlers depend on.
type LicenseService interface {
	IssueLicense(ctx context.Context, p license.IssueParams) (*data.License, error)
	Validate(ctx context.Context, p license.ValidateParams) (*license.ValidationResult, error)
}

// CheckoutService starts a hosted checkout flow and returns the redirect URL.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, email string) (string, error)
}

// WebhookVerifier authenticates incoming payment webhook payloads.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// ReleaseService provides latest-release metadata; it never fails.
type ReleaseService interface {
	Latest(ctx context.Context) *release.Metadata
}
