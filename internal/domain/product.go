/**
 * @description
 * This file defines the core domain models for the monetization-service's product
 * side: merchant products, their provisioning inputs, and per-account fee settings.
 * These structs are shared by the business logic, the database layer, and the API.
 *
 * @notes
 * - Amounts are stored as `int64` in the smallest currency unit (FCFA for XOF,
 *   cents for USD/EUR), which avoids floating-point inaccuracies with money.
 * - A Product row is only ever written after its payment link has been
 *   provisioned, so PaymentLinkID is never empty on a persisted product.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinimumProductAmount is the smallest accepted product price in minor units
// of the reference currency (200 FCFA).
const MinimumProductAmount = 200

// Supported currency codes.
const (
	CurrencyXOF = "XOF"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// SupportedCurrencies is the closed set of currency codes the pipeline accepts.
// Unrecognized codes are rejected at the API boundary, never inside the pipeline.
var SupportedCurrencies = map[string]bool{
	CurrencyXOF: true,
	CurrencyUSD: true,
	CurrencyEUR: true,
}

// IsSupportedCurrency reports whether code belongs to the supported set.
func IsSupportedCurrency(code string) bool {
	return SupportedCurrencies[code]
}

// Product represents a sellable item owned by a merchant account.
// Maps directly to the `products` table.
type Product struct {
	ID            uuid.UUID `json:"id"`
	AccountID     uuid.UUID `json:"account_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Amount        int64     `json:"amount"` // base amount in minor units; the fee is display-only
	Currency      string    `json:"currency"`
	ImageURL      *string   `json:"image_url,omitempty"`
	RedirectURL   *string   `json:"redirect_url,omitempty"`
	PaymentLinkID string    `json:"payment_link_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProductInput is the immutable value object fed into the provisioning
// pipeline. It carries everything the pipeline needs so no shared mutable
// state crosses step boundaries.
type NewProductInput struct {
	Name             string
	Description      string
	Amount           int64 // minor units, must be >= MinimumProductAmount
	Currency         string
	Image            []byte // optional; empty means no image upload
	ImageContentType string
	RedirectURL      string // optional
}

// PaymentLinkRef is the listing projection of a provisioned payment link,
// derived from the product that owns it.
type PaymentLinkRef struct {
	PaymentLinkID string    `json:"payment_link_id"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

// FeeSettings is the per-account fee configuration, bootstrapped lazily with a
// zero fee on first read. Exactly one row exists per account (unique constraint
// on account_id).
type FeeSettings struct {
	ID                   uuid.UUID `json:"id"`
	AccountID            uuid.UUID `json:"account_id"`
	ProductFeePercentage float64   `json:"product_fee_percentage"` // always >= 0
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ProvisioningOrphan records an external resource (uploaded image or payment
// link) left behind by a pipeline run that failed downstream without a
// successful compensation. The sweeper retries cleanup of these rows.
type ProvisioningOrphan struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"account_id"`
	Kind      string     `json:"kind"` // 'image' or 'payment_link'
	Reference string     `json:"reference"`
	CreatedAt time.Time  `json:"created_at"`
	CleanedAt *time.Time `json:"cleaned_at,omitempty"`
}

// Orphan kinds.
const (
	OrphanKindImage       = "image"
	OrphanKindPaymentLink = "payment_link"
)
