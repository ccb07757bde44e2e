package data

import (
	"context"

	"github.com/google/uuid"
)

// LicenseRepository is the narrow store contract the license service depends on.
type LicenseRepository interface {
	FindByKey(ctx context.Context, licenseKey string) (*License, error)
	FindActiveByKey(ctx context.Context, licenseKey string) (*License, error)
	Insert(ctx context.Context, l *License) error
}

// ActivationRepository manages per-machine activation rows.
type ActivationRepository interface {
	Find(ctx context.Context, licenseID uuid.UUID, machineID string) (*Activation, error)
	Insert(ctx context.Context, a *Activation) error
	TouchLastValidated(ctx context.Context, id uuid.UUID) error
	CountForLicense(ctx context.Context, licenseID uuid.UUID) (int, error)
}
