package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"

	"dropvoxsite/internal/data"
	"dropvoxsite/internal/license"
	"dropvoxsite/internal/release"
)

type mockLicenseService struct {
	mock.Mock
}

func (m *mockLicenseService) IssueLicense(ctx context.Context, p license.IssueParams) (*data.License, error) {
	args := m.Called(ctx, p)
	if lic := args.Get(0); lic != nil {
		return lic.(*data.License), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLicenseService) Validate(ctx context.Context, p license.ValidateParams) (*license.ValidationResult, error) {
	args := m.Called(ctx, p)
	if result := args.Get(0); result != nil {
		return result.(*license.ValidationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCheckoutService struct {
	mock.Mock
}

func (m *mockCheckoutService) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	args := m.Called(payload, sigHeader)
	return args.Get(0).(stripe.Event), args.Error(1)
}

type mockReleaseService struct {
	mock.Mock
}

func (m *mockReleaseService) Latest(ctx context.Context) *release.Metadata {
	args := m.Called(ctx)
	return args.Get(0).(*release.Metadata)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
