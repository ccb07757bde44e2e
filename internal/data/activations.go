package data

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// ActivationModel implements ActivationRepository on Postgres.
type ActivationModel struct {
	DB DBTX
}

func (m ActivationModel) Find(ctx context.Context, licenseID uuid.UUID, machineID string) (*Activation, error) {
	query := `
		SELECT id, license_id, machine_id, machine_name, os_version, first_activated_at, last_validated_at
		FROM license_activations
		WHERE license_id = $1 AND machine_id = $2`

	var (
		a           Activation
		machineName sql.NullString
		osVersion   sql.NullString
	)

	err := m.DB.QueryRowContext(ctx, query, licenseID, machineID).Scan(
		&a.ID, &a.LicenseID, &a.MachineID, &machineName, &osVersion, &a.FirstActivatedAt, &a.LastValidatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	if machineName.Valid {
		a.MachineName = &machineName.String
	}
	if osVersion.Valid {
		a.OSVersion = &osVersion.String
	}

	return &a, nil
}

// Insert creates an activation row. The enforce_activation_limit trigger
// raises ACTIVATION_LIMIT_REACHED once a license has 3 rows, which maps to
// ErrActivationLimit here; the (license_id, machine_id) UNIQUE constraint
// maps to ErrDuplicateActivation.
func (m ActivationModel) Insert(ctx context.Context, a *Activation) error {
	query := `
		INSERT INTO license_activations (license_id, machine_id, machine_name, os_version)
		VALUES ($1, $2, $3, $4)
		RETURNING id, first_activated_at, last_validated_at`

	err := m.DB.QueryRowContext(ctx, query,
		a.LicenseID, a.MachineID, a.MachineName, a.OSVersion,
	).Scan(&a.ID, &a.FirstActivatedAt, &a.LastValidatedAt)
	if err != nil {
		return mapPQError(err)
	}
	return nil
}

func (m ActivationModel) TouchLastValidated(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE license_activations
		SET last_validated_at = NOW()
		WHERE id = $1`

	result, err := m.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (m ActivationModel) CountForLicense(ctx context.Context, licenseID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM license_activations
		WHERE license_id = $1`

	var count int
	if err := m.DB.QueryRowContext(ctx, query, licenseID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
