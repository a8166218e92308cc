/**
 * @description
 * This file contains the core business logic for the monetization-service. The
 * `Service` struct orchestrates product monetization operations, coordinating
 * between the database repository, the object storage client, the payment link
 * provider, the listing cache, and the message broker.
 *
 * Key features:
 * - Lazily bootstraps per-account fee settings with a zero default.
 * - Computes display-only fee-inclusive price quotes.
 * - Serves product and payment link listings through a Redis-backed cache.
 *
 * @dependencies
 * - context, errors, fmt, log: Standard Go libraries.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/paylinkclient, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/zelipay/monetization-service/internal/domain"
	"github.com/zelipay/monetization-service/internal/store"
	"github.com/zelipay/monetization-service/pkg/paylinkclient"
	"github.com/zelipay/monetization-service/pkg/rabbitmq"
)

// ObjectStorage uploads and removes product images in a remote bucket.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) error
	PublicURL(objectName string) string
	Delete(ctx context.Context, objectName string) error
}

// PaymentLinkProvisioner creates and voids hosted payment links.
type PaymentLinkProvisioner interface {
	Create(ctx context.Context, req paylinkclient.CreatePaymentLinkRequest) (*paylinkclient.CreatePaymentLinkResponse, error)
	Void(ctx context.Context, paymentLinkID string) error
}

// ListingCache caches per-account listing responses. All methods must be safe
// to call on a degraded backend; a cache miss and a cache error look the same
// to callers.
type ListingCache interface {
	GetProducts(ctx context.Context, accountID uuid.UUID) ([]domain.Product, bool)
	SetProducts(ctx context.Context, accountID uuid.UUID, products []domain.Product)
	GetPaymentLinks(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentLinkRef, bool)
	SetPaymentLinks(ctx context.Context, accountID uuid.UUID, links []domain.PaymentLinkRef)
	Invalidate(ctx context.Context, accountID uuid.UUID)
}

// Service provides the core business logic for product monetization.
type Service struct {
	repo                store.Repository
	storage             ObjectStorage
	paylinks            PaymentLinkProvisioner
	eventProducer       rabbitmq.Publisher
	cache               ListingCache
	eventExchange       string
	compensationEnabled bool
}

// NewService creates a new monetization service instance.
func NewService(repo store.Repository, storage ObjectStorage, paylinks PaymentLinkProvisioner, producer rabbitmq.Publisher, eventExchange string, compensationEnabled bool) *Service {
	return &Service{
		repo:                repo,
		storage:             storage,
		paylinks:            paylinks,
		eventProducer:       producer,
		eventExchange:       eventExchange,
		compensationEnabled: compensationEnabled,
	}
}

// SetListingCache attaches an optional listing cache. Without one, listings
// always hit the database.
func (s *Service) SetListingCache(cache ListingCache) {
	s.cache = cache
}

// ResolveFeeSettings returns the fee settings for an account, creating a
// zero-fee row on first access. Two concurrent first reads may both attempt
// the insert; the unique constraint on account_id picks a single winner and
// the loser re-reads the winner's row, so both callers observe the same
// settings.
func (s *Service) ResolveFeeSettings(ctx context.Context, accountID uuid.UUID) (*domain.FeeSettings, error) {
	settings, err := s.repo.FindFeeSettingsByAccountID(ctx, accountID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, store.ErrSettingsNotFound) {
		return nil, fmt.Errorf("failed to load fee settings: %w", err)
	}

	bootstrap := &domain.FeeSettings{
		ID:                   uuid.New(),
		AccountID:            accountID,
		ProductFeePercentage: 0,
	}
	err = s.repo.InsertFeeSettings(ctx, bootstrap)
	if err == nil {
		log.Printf("level=info component=service msg=\"bootstrapped fee settings\" account_id=%s", accountID)
		return bootstrap, nil
	}
	if !errors.Is(err, store.ErrDuplicateSettings) {
		return nil, fmt.Errorf("failed to bootstrap fee settings: %w", err)
	}

	// Lost the insert race; the winner's row is now authoritative.
	settings, err = s.repo.FindFeeSettingsByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read fee settings after duplicate insert: %w", err)
	}
	return settings, nil
}

// QuoteProduct computes the fee-inclusive display price for a base amount in
// the given currency. The fee never changes what the payment link charges.
func (s *Service) QuoteProduct(ctx context.Context, accountID uuid.UUID, baseAmount int64, currency string) (*PriceQuote, error) {
	if !domain.IsSupportedCurrency(currency) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currency)
	}
	if baseAmount < domain.MinimumProductAmount {
		return nil, fmt.Errorf("%w: amount %d is below the %d minimum", ErrInvalidAmount, baseAmount, domain.MinimumProductAmount)
	}
	settings, err := s.ResolveFeeSettings(ctx, accountID)
	if err != nil {
		return nil, err
	}
	quote := Quote(baseAmount, settings.ProductFeePercentage)
	return &quote, nil
}

// ListProducts returns the account's products, newest first, through the
// listing cache when one is attached.
func (s *Service) ListProducts(ctx context.Context, accountID uuid.UUID) ([]domain.Product, error) {
	if s.cache != nil {
		if products, ok := s.cache.GetProducts(ctx, accountID); ok {
			return products, nil
		}
	}
	products, err := s.repo.ListProductsByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if s.cache != nil {
		s.cache.SetProducts(ctx, accountID, products)
	}
	return products, nil
}

// ListPaymentLinks returns the account's provisioned payment links, newest
// first, through the listing cache when one is attached.
func (s *Service) ListPaymentLinks(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentLinkRef, error) {
	if s.cache != nil {
		if links, ok := s.cache.GetPaymentLinks(ctx, accountID); ok {
			return links, nil
		}
	}
	links, err := s.repo.ListPaymentLinksByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment links: %w", err)
	}
	if s.cache != nil {
		s.cache.SetPaymentLinks(ctx, accountID, links)
	}
	return links, nil
}

// publishEvent sends a domain event on the configured exchange. Event
// publication is best effort; a broker outage never fails the business
// operation that triggered the event.
func (s *Service) publishEvent(ctx context.Context, routingKey string, event any) {
	if s.eventProducer == nil {
		return
	}
	if err := s.eventProducer.Publish(ctx, s.eventExchange, routingKey, event); err != nil {
		log.Printf("level=warn component=service msg=\"failed to publish event\" routing_key=%s error=%v", routingKey, err)
	}
}
