/**
 * @description
 * This file defines the `Repository` interface, the contract for all data access
 * required by the monetization-service. The interface decouples business logic
 * from the PostgreSQL implementation so service tests can run against stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zelipay/monetization-service/internal/domain"
)

var (
	ErrSettingsNotFound     = errors.New("fee settings not found")
	ErrDuplicateSettings    = errors.New("fee settings already exist for account")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrUnknownProfileColumn = errors.New("unknown profile column")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Fee settings. InsertFeeSettings returns ErrDuplicateSettings on a
	// unique-constraint violation so the resolver can re-read the winning row.
	FindFeeSettingsByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.FeeSettings, error)
	InsertFeeSettings(ctx context.Context, settings *domain.FeeSettings) error

	// Products and payment-link listings.
	CreateProduct(ctx context.Context, product *domain.Product) error
	ListProductsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Product, error)
	ListPaymentLinksByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentLinkRef, error)

	// Payouts.
	CreatePayout(ctx context.Context, payout *domain.Payout) error
	ListPayoutsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Payout, error)
	GetPayoutStats(ctx context.Context, accountID uuid.UUID) (*domain.PayoutStats, error)

	// Profiles.
	FindProfileByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error)
	UpsertProfileIdentity(ctx context.Context, accountID uuid.UUID, firstName, lastName, customID string) (*domain.Profile, error)
	UpdateProfileField(ctx context.Context, accountID uuid.UUID, column string, value any) error

	// Provisioning orphans.
	RecordProvisioningOrphan(ctx context.Context, orphan *domain.ProvisioningOrphan) error
	ListUncleanedOrphans(ctx context.Context, limit int) ([]domain.ProvisioningOrphan, error)
	MarkOrphanCleaned(ctx context.Context, orphanID uuid.UUID) error
}
