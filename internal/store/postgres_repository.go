/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the SQL queries for the monetization tables: settings,
 * products, payouts, profiles, and provisioning orphans.
 *
 * @dependencies
 * - context, errors, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zelipay/monetization-service/internal/domain"
)

const uniqueViolationCode = "23505"

// profileColumns whitelists the columns UpdateProfileField may touch. A field
// name that survives the app-level remapping but does not name one of these
// columns is rejected rather than interpolated into SQL.
var profileColumns = map[string]bool{
	"first_name":    true,
	"last_name":     true,
	"company_email": true,
	"momo_provider": true,
	"momo_number":   true,
	"auto_transfer": true,
	"custom_id":     true,
}

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindFeeSettingsByAccountID fetches the single fee settings row for an account.
func (r *PostgresRepository) FindFeeSettingsByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.FeeSettings, error) {
	query := `
        SELECT id, account_id, product_fee_percentage, created_at, updated_at
        FROM settings
        WHERE account_id = $1
    `
	var s domain.FeeSettings
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&s.ID,
		&s.AccountID,
		&s.ProductFeePercentage,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return &s, nil
}

// InsertFeeSettings writes the bootstrap settings row. The unique constraint on
// account_id is the race guard for concurrent bootstraps: a violation surfaces
// as ErrDuplicateSettings so the caller can re-read the winning row.
func (r *PostgresRepository) InsertFeeSettings(ctx context.Context, settings *domain.FeeSettings) error {
	query := `
        INSERT INTO settings (id, account_id, product_fee_percentage)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, settings.ID, settings.AccountID, settings.ProductFeePercentage).
		Scan(&settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateSettings
		}
		return err
	}
	return nil
}

// CreateProduct inserts a new product row. Callers only reach this after the
// payment link has been provisioned, so payment_link_id is always populated.
func (r *PostgresRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `
        INSERT INTO products (id, account_id, name, description, amount, currency, image_url, redirect_url, payment_link_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at
    `
	return r.db.QueryRow(ctx, query,
		product.ID,
		product.AccountID,
		product.Name,
		product.Description,
		product.Amount,
		product.Currency,
		product.ImageURL,
		product.RedirectURL,
		product.PaymentLinkID,
	).Scan(&product.CreatedAt)
}

// ListProductsByAccountID returns all products owned by an account, newest first.
func (r *PostgresRepository) ListProductsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Product, error) {
	query := `
        SELECT id, account_id, name, description, amount, currency, image_url, redirect_url, payment_link_id, created_at
        FROM products
        WHERE account_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.AccountID,
			&p.Name,
			&p.Description,
			&p.Amount,
			&p.Currency,
			&p.ImageURL,
			&p.RedirectURL,
			&p.PaymentLinkID,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListPaymentLinksByAccountID projects the payment links provisioned for an
// account out of its product rows, newest first.
func (r *PostgresRepository) ListPaymentLinksByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentLinkRef, error) {
	query := `
        SELECT payment_link_id, id, name, amount, currency, created_at
        FROM products
        WHERE account_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.PaymentLinkRef
	for rows.Next() {
		var l domain.PaymentLinkRef
		if err := rows.Scan(
			&l.PaymentLinkID,
			&l.ProductID,
			&l.ProductName,
			&l.Amount,
			&l.Currency,
			&l.CreatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// CreatePayout inserts a new withdrawal request with its profile snapshot fields.
func (r *PostgresRepository) CreatePayout(ctx context.Context, payout *domain.Payout) error {
	query := `
        INSERT INTO payouts (
            id,
            account_id,
            amount,
            description,
            customer_email,
            customer_first_name,
            customer_last_name,
            customer_phone,
            method,
            currency,
            status
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at
    `
	return r.db.QueryRow(ctx, query,
		payout.ID,
		payout.AccountID,
		payout.Amount,
		payout.Description,
		payout.CustomerEmail,
		payout.CustomerFirstName,
		payout.CustomerLastName,
		payout.CustomerPhone,
		payout.Method,
		payout.Currency,
		payout.Status,
	).Scan(&payout.CreatedAt)
}

// ListPayoutsByAccountID returns an account's withdrawal requests, newest first.
func (r *PostgresRepository) ListPayoutsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Payout, error) {
	query := `
        SELECT id, account_id, amount, description,
               customer_email, customer_first_name, customer_last_name, customer_phone,
               method, currency, status, created_at
        FROM payouts
        WHERE account_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		var p domain.Payout
		if err := rows.Scan(
			&p.ID,
			&p.AccountID,
			&p.Amount,
			&p.Description,
			&p.CustomerEmail,
			&p.CustomerFirstName,
			&p.CustomerLastName,
			&p.CustomerPhone,
			&p.Method,
			&p.Currency,
			&p.Status,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// GetPayoutStats aggregates the wallet dashboard numbers in a single query.
func (r *PostgresRepository) GetPayoutStats(ctx context.Context, accountID uuid.UUID) (*domain.PayoutStats, error) {
	query := `
        SELECT
            COUNT(*) FILTER (WHERE status = 'pending'),
            COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0),
            COUNT(*) FILTER (WHERE status = 'completed'),
            COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0),
            COALESCE(SUM(amount) FILTER (WHERE status = 'processing'), 0)
        FROM payouts
        WHERE account_id = $1
    `
	var stats domain.PayoutStats
	if err := r.db.QueryRow(ctx, query, accountID).Scan(
		&stats.PendingCount,
		&stats.PendingAmount,
		&stats.CompletedCount,
		&stats.CompletedAmount,
		&stats.InTransitAmount,
	); err != nil {
		return nil, err
	}
	stats.TransferredAmount = stats.CompletedAmount
	return &stats, nil
}

// FindProfileByAccountID fetches an account's profile.
func (r *PostgresRepository) FindProfileByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	query := `
        SELECT account_id, first_name, last_name, custom_id, company_email,
               momo_provider, momo_number, auto_transfer, updated_at
        FROM profiles
        WHERE account_id = $1
    `
	var p domain.Profile
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&p.AccountID,
		&p.FirstName,
		&p.LastName,
		&p.CustomID,
		&p.CompanyEmail,
		&p.MomoProvider,
		&p.MomoNumber,
		&p.AutoTransfer,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpsertProfileIdentity writes the profile-setup fields, creating the row on
// first setup and overwriting only the identity fields on repeat runs.
func (r *PostgresRepository) UpsertProfileIdentity(ctx context.Context, accountID uuid.UUID, firstName, lastName, customID string) (*domain.Profile, error) {
	query := `
        INSERT INTO profiles (account_id, first_name, last_name, custom_id)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (account_id)
        DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            custom_id = EXCLUDED.custom_id,
            updated_at = NOW()
        RETURNING account_id, first_name, last_name, custom_id, company_email,
                  momo_provider, momo_number, auto_transfer, updated_at
    `
	var p domain.Profile
	if err := r.db.QueryRow(ctx, query, accountID, firstName, lastName, customID).Scan(
		&p.AccountID,
		&p.FirstName,
		&p.LastName,
		&p.CustomID,
		&p.CompanyEmail,
		&p.MomoProvider,
		&p.MomoNumber,
		&p.AutoTransfer,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfileField applies a single-column partial update, leaving every
// other column untouched. The column name is validated against the whitelist
// before being spliced into the statement.
func (r *PostgresRepository) UpdateProfileField(ctx context.Context, accountID uuid.UUID, column string, value any) error {
	if !profileColumns[column] {
		return fmt.Errorf("%w: %s", ErrUnknownProfileColumn, column)
	}

	query := fmt.Sprintf(`UPDATE profiles SET %s = $1, updated_at = NOW() WHERE account_id = $2`, column)
	commandTag, err := r.db.Exec(ctx, query, value, accountID)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// RecordProvisioningOrphan writes an orphan row for an external resource left
// behind by a failed pipeline run.
func (r *PostgresRepository) RecordProvisioningOrphan(ctx context.Context, orphan *domain.ProvisioningOrphan) error {
	query := `
        INSERT INTO provisioning_orphans (id, account_id, kind, reference)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `
	return r.db.QueryRow(ctx, query, orphan.ID, orphan.AccountID, orphan.Kind, orphan.Reference).
		Scan(&orphan.CreatedAt)
}

// ListUncleanedOrphans returns orphans still awaiting cleanup, oldest first.
func (r *PostgresRepository) ListUncleanedOrphans(ctx context.Context, limit int) ([]domain.ProvisioningOrphan, error) {
	query := `
        SELECT id, account_id, kind, reference, created_at, cleaned_at
        FROM provisioning_orphans
        WHERE cleaned_at IS NULL
        ORDER BY created_at ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orphans []domain.ProvisioningOrphan
	for rows.Next() {
		var o domain.ProvisioningOrphan
		if err := rows.Scan(&o.ID, &o.AccountID, &o.Kind, &o.Reference, &o.CreatedAt, &o.CleanedAt); err != nil {
			return nil, err
		}
		orphans = append(orphans, o)
	}
	return orphans, rows.Err()
}

// MarkOrphanCleaned stamps an orphan as cleaned up.
func (r *PostgresRepository) MarkOrphanCleaned(ctx context.Context, orphanID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE provisioning_orphans SET cleaned_at = $1 WHERE id = $2 AND cleaned_at IS NULL`,
		time.Now().UTC(), orphanID)
	return err
}
