package license

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dropvoxsite/internal/data"
	"dropvoxsite/internal/metrics"
)

// maxKeyAttempts bounds the unique-key generation loop.
const maxKeyAttempts = 10

// Mailer delivers the license key to the purchaser. Delivery is best effort;
// the webhook response does not depend on it.
type Mailer interface {
	SendLicenseEmail(ctx context.Context, toEmail, licenseKey string) error
}

// Service implements license issuance (webhook side) and validation
// (desktop-client side) on top of the narrow store repositories.
type Service struct {
	licenses    data.LicenseRepository
	activations data.ActivationRepository
	mailer      Mailer
	logger      *slog.Logger
}

// NewService creates a license service. mailer may be nil, in which case no
// delivery email is sent (used by tests and local development).
func NewService(licenses data.LicenseRepository, activations data.ActivationRepository, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{
		licenses:    licenses,
		activations: activations,
		mailer:      mailer,
		logger:      logger.With(slog.String("service", "license")),
	}
}

// IssueParams carries the purchase details captured from the payment session.
type IssueParams struct {
	Email                 string
	MajorVersion          int
	StripePaymentIntentID string
	StripeCustomerID      string
}

// IssueLicense converts a confirmed purchase into a durable license row and
// emails the key to the purchaser. The key generation loop retries on
// collision up to maxKeyAttempts; a unique-constraint violation on insert
// counts as one more collision so concurrent webhook deliveries cannot
// persist a duplicate.
func (s *Service) IssueLicense(ctx context.Context, p IssueParams) (*data.License, error) {
	if p.MajorVersion <= 0 {
		p.MajorVersion = 1
	}

	var lic *data.License
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key := GenerateKey(p.MajorVersion)

		_, err := s.licenses.FindByKey(ctx, key)
		if err == nil {
			s.logger.WarnContext(ctx, "license key collision, retrying",
				slog.Int("attempt", attempt+1))
			continue
		}
		if !errors.Is(err, data.ErrRecordNotFound) {
			return nil, err
		}

		l := &data.License{
			LicenseKey:   key,
			Email:        p.Email,
			MajorVersion: p.MajorVersion,
		}
		if p.StripePaymentIntentID != "" {
			l.StripePaymentIntentID = &p.StripePaymentIntentID
		}
		if p.StripeCustomerID != "" {
			l.StripeCustomerID = &p.StripeCustomerID
		}

		err = s.licenses.Insert(ctx, l)
		if errors.Is(err, data.ErrDuplicateKey) {
			s.logger.WarnContext(ctx, "license key collided on insert, retrying",
				slog.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}

		lic = l
		break
	}

	if lic == nil {
		return nil, ErrKeySpaceExhausted
	}

	metrics.LicensesIssued.Inc()
	s.logger.InfoContext(ctx, "license issued",
		slog.String("email", lic.Email),
		slog.Int("major_version", lic.MajorVersion))

	if s.mailer != nil {
		if err := s.mailer.SendLicenseEmail(ctx, lic.Email, lic.LicenseKey); err != nil {
			// Best effort: the license exists and support can resend.
			s.logger.ErrorContext(ctx, "failed to send license email",
				slog.String("email", lic.Email),
				slog.String("error", err.Error()))
		}
	}

	return lic, nil
}

// ValidateParams is the desktop client's validation request.
type ValidateParams struct {
	LicenseKey  string
	MachineID   string
	MachineName string
	OSVersion   string
	AppVersion  string
}

// ValidationResult is returned on a successful validation. Licenses are
// perpetual per major version, so there is no expiry.
type ValidationResult struct {
	Email        string
	MajorVersion int
	ValidatedAt  time.Time
}

// Validate authorizes one machine to use one license, enforcing the version
// gate and the 3-machine activation cap. Field presence is the handler's
// concern; this method assumes LicenseKey and MachineID are set.
func (s *Service) Validate(ctx context.Context, p ValidateParams) (*ValidationResult, error) {
	lic, err := s.licenses.FindActiveByKey(ctx, p.LicenseKey)
	if errors.Is(err, data.ErrRecordNotFound) {
		metrics.Validations.WithLabelValues("invalid_key").Inc()
		return nil, ErrLicenseNotFound
	}
	if err != nil {
		return nil, err
	}

	requested := MajorVersion(p.AppVersion)
	if lic.MajorVersion < requested {
		metrics.Validations.WithLabelValues("upgrade_required").Inc()
		return nil, &UpgradeRequiredError{
			LicensedVersion:  lic.MajorVersion,
			RequestedVersion: requested,
		}
	}

	existing, err := s.activations.Find(ctx, lic.ID, p.MachineID)
	switch {
	case err == nil:
		if err := s.activations.TouchLastValidated(ctx, existing.ID); err != nil {
			return nil, err
		}

	case errors.Is(err, data.ErrRecordNotFound):
		activation := &data.Activation{
			LicenseID: lic.ID,
			MachineID: p.MachineID,
		}
		if p.MachineName != "" {
			activation.MachineName = &p.MachineName
		}
		if p.OSVersion != "" {
			activation.OSVersion = &p.OSVersion
		}

		insertErr := s.activations.Insert(ctx, activation)
		if errors.Is(insertErr, data.ErrActivationLimit) {
			metrics.Validations.WithLabelValues("machine_limit").Inc()
			return nil, ErrMachineLimitReached
		}
		if errors.Is(insertErr, data.ErrDuplicateActivation) {
			// Lost a race against a concurrent first validation from the
			// same machine; the row exists now, which is all we need.
			s.logger.DebugContext(ctx, "concurrent activation insert",
				slog.String("machine_id", p.MachineID))
		} else if insertErr != nil {
			return nil, insertErr
		}

	default:
		return nil, err
	}

	metrics.Validations.WithLabelValues("valid").Inc()
	return &ValidationResult{
		Email:        lic.Email,
		MajorVersion: lic.MajorVersion,
		ValidatedAt:  time.Now().UTC(),
	}, nil
}
