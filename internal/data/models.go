package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrDuplicateKey        = errors.New("license key already exists")
	ErrActivationLimit     = errors.New("activation limit reached")
	ErrDuplicateActivation = errors.New("activation already exists for machine")
)

// DBTX is a common interface for *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// License is a purchased entitlement for one major version of the app.
type License struct {
	ID                    uuid.UUID
	LicenseKey            string
	Email                 string
	MajorVersion          int
	IsActive              bool
	StripePaymentIntentID *string
	StripeCustomerID      *string
	CreatedAt             time.Time
}

// Activation binds a license to one machine, counted toward the 3-machine cap.
type Activation struct {
	ID               uuid.UUID
	LicenseID        uuid.UUID
	MachineID        string
	MachineName      *string
	OSVersion        *string
	FirstActivatedAt time.Time
	LastValidatedAt  time.Time
}

// Postgres error codes we branch on. The activation cap is enforced by a
// trigger that raises ACTIVATION_LIMIT_REACHED (see migrations).
const (
	pgUniqueViolation = "23505"
	pgRaiseException  = "P0001"
)

// mapPQError translates driver-level errors into the package sentinels.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pgUniqueViolation:
		if strings.Contains(pqErr.Constraint, "machine") {
			return ErrDuplicateActivation
		}
		return ErrDuplicateKey
	case pgRaiseException:
		if strings.Contains(pqErr.Message, "ACTIVATION_LIMIT_REACHED") {
			return ErrActivationLimit
		}
	}
	return err
}
