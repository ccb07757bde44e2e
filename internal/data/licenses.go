package data

import (
	"context"
	"database/sql"
)

// LicenseModel implements LicenseRepository on Postgres.
type LicenseModel struct {
	DB DBTX
}

func (m LicenseModel) FindByKey(ctx context.Context, licenseKey string) (*License, error) {
	query := `
		SELECT id, license_key, email, major_version, is_active, stripe_payment_intent_id, stripe_customer_id, created_at
		FROM licenses
		WHERE license_key = $1`

	return m.scanOne(ctx, query, licenseKey)
}

func (m LicenseModel) FindActiveByKey(ctx context.Context, licenseKey string) (*License, error) {
	query := `
		SELECT id, license_key, email, major_version, is_active, stripe_payment_intent_id, stripe_customer_id, created_at
		FROM licenses
		WHERE license_key = $1 AND is_active = true`

	return m.scanOne(ctx, query, licenseKey)
}

// Insert persists a new license. The license_key UNIQUE constraint is the
// backstop against concurrent webhook deliveries generating the same key;
// a violation surfaces as ErrDuplicateKey so the caller can retry generation.
func (m LicenseModel) Insert(ctx context.Context, l *License) error {
	query := `
		INSERT INTO licenses (license_key, email, major_version, stripe_payment_intent_id, stripe_customer_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at`

	err := m.DB.QueryRowContext(ctx, query,
		l.LicenseKey, l.Email, l.MajorVersion, l.StripePaymentIntentID, l.StripeCustomerID,
	).Scan(&l.ID, &l.IsActive, &l.CreatedAt)
	if err != nil {
		return mapPQError(err)
	}
	return nil
}

func (m LicenseModel) scanOne(ctx context.Context, query string, args ...any) (*License, error) {
	var (
		l               License
		paymentIntentID sql.NullString
		customerID      sql.NullString
	)

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(
		&l.ID, &l.LicenseKey, &l.Email, &l.MajorVersion, &l.IsActive, &paymentIntentID, &customerID, &l.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	if paymentIntentID.Valid {
		l.StripePaymentIntentID = &paymentIntentID.String
	}
	if customerID.Valid {
		l.StripeCustomerID = &customerID.String
	}

	return &l, nil
}
