/**
 * @description
 * This file implements the product provisioning pipeline: validate the input,
 * upload the optional image, provision a hosted payment link, persist the
 * product row, and signal success. Each step that creates an external resource
 * pushes an undo action onto a compensation stack; when a later step fails and
 * compensation is enabled, the stack unwinds in reverse order. Resources whose
 * undo is skipped or fails are recorded as orphans for the sweeper.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zelipay/monetization-service/internal/domain"
	"github.com/zelipay/monetization-service/pkg/paylinkclient"
)

// compensation is one undoable side effect produced by a pipeline step.
type compensation struct {
	kind      string // domain.OrphanKindImage or domain.OrphanKindPaymentLink
	reference string // object name or payment link id
	undo      func(ctx context.Context) error
}

// extensionFor maps an image content type to a file extension for the stored
// object name. Unknown types get no extension.
func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}

// CreateProduct runs the provisioning pipeline for a new product. On success
// the returned product carries the provisioned payment link id. On failure the
// error wraps exactly one sentinel from the failure taxonomy, and any external
// resources already created are either compensated or recorded as orphans.
func (s *Service) CreateProduct(ctx context.Context, accountID uuid.UUID, input domain.NewProductInput) (*domain.Product, error) {
	log.Printf("level=info component=pipeline msg=\"starting product provisioning\" account_id=%s name=%q amount=%d", accountID, input.Name, input.Amount)

	// 1. Validation. Nothing external happens before this passes.
	if !domain.IsSupportedCurrency(input.Currency) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, input.Currency)
	}
	if input.Amount < domain.MinimumProductAmount {
		return nil, fmt.Errorf("%w: amount %d is below the %d minimum", ErrInvalidAmount, input.Amount, domain.MinimumProductAmount)
	}

	var undoStack []compensation

	// 2. Optional image upload.
	var imageURL *string
	if len(input.Image) > 0 {
		objectName := uuid.New().String() + extensionFor(input.ImageContentType)
		if err := s.storage.Upload(ctx, objectName, input.Image, input.ImageContentType); err != nil {
			log.Printf("level=error component=pipeline msg=\"image upload failed\" account_id=%s error=%v", accountID, err)
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		url := s.storage.PublicURL(objectName)
		imageURL = &url
		undoStack = append(undoStack, compensation{
			kind:      domain.OrphanKindImage,
			reference: objectName,
			undo: func(ctx context.Context) error {
				return s.storage.Delete(ctx, objectName)
			},
		})
	}

	// 3. Payment link provisioning. The link always charges the base amount;
	// the fee percentage is display-only and never reaches the provider.
	description := input.Description
	if description == "" {
		description = input.Name
	}
	linkReq := paylinkclient.CreatePaymentLinkRequest{
		Amount:      input.Amount,
		Description: description,
		PaymentType: "product",
		Currency:    input.Currency,
	}
	if input.RedirectURL != "" {
		redirect := input.RedirectURL
		linkReq.RedirectURL = &redirect
	}
	link, err := s.paylinks.Create(ctx, linkReq)
	if err != nil {
		log.Printf("level=error component=pipeline msg=\"payment link provisioning failed\" account_id=%s error=%v", accountID, err)
		s.unwind(ctx, accountID, undoStack)
		return nil, fmt.Errorf("%w: %v", ErrProvisioningFailure, err)
	}
	paymentLinkID := link.PaymentLinkID
	undoStack = append(undoStack, compensation{
		kind:      domain.OrphanKindPaymentLink,
		reference: paymentLinkID,
		undo: func(ctx context.Context) error {
			return s.paylinks.Void(ctx, paymentLinkID)
		},
	})

	// 4. Persistence.
	product := &domain.Product{
		ID:            uuid.New(),
		AccountID:     accountID,
		Name:          input.Name,
		Description:   input.Description,
		Amount:        input.Amount,
		Currency:      input.Currency,
		ImageURL:      imageURL,
		PaymentLinkID: paymentLinkID,
	}
	if input.RedirectURL != "" {
		redirect := input.RedirectURL
		product.RedirectURL = &redirect
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		log.Printf("level=error component=pipeline msg=\"product persistence failed\" account_id=%s error=%v", accountID, err)
		s.unwind(ctx, accountID, undoStack)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	// 5. Success signal.
	s.signalProductCreated(ctx, product)

	log.Printf("level=info component=pipeline msg=\"product provisioned\" account_id=%s product_id=%s payment_link_id=%s", accountID, product.ID, paymentLinkID)
	return product, nil
}

// unwind reverses the compensation stack after a pipeline failure. With
// compensation disabled every entry is recorded as an orphan untouched; with
// it enabled each undo runs in reverse creation order, and failed undos still
// fall back to an orphan record so no external resource is lost track of.
func (s *Service) unwind(ctx context.Context, accountID uuid.UUID, stack []compensation) {
	for i := len(stack) - 1; i >= 0; i-- {
		comp := stack[i]
		if !s.compensationEnabled {
			s.recordOrphan(ctx, accountID, comp)
			continue
		}
		if err := comp.undo(ctx); err != nil {
			log.Printf("level=warn component=pipeline msg=\"compensation failed\" kind=%s reference=%s error=%v", comp.kind, comp.reference, err)
			s.recordOrphan(ctx, accountID, comp)
			continue
		}
		log.Printf("level=info component=pipeline msg=\"compensated resource\" kind=%s reference=%s", comp.kind, comp.reference)
	}
}

// recordOrphan persists a cleanup marker for a resource left behind by a
// failed run. Recording is best effort; the failure already being returned to
// the caller takes precedence.
func (s *Service) recordOrphan(ctx context.Context, accountID uuid.UUID, comp compensation) {
	orphan := &domain.ProvisioningOrphan{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      comp.kind,
		Reference: comp.reference,
	}
	if err := s.repo.RecordProvisioningOrphan(ctx, orphan); err != nil {
		log.Printf("level=error component=pipeline msg=\"failed to record orphan\" kind=%s reference=%s error=%v", comp.kind, comp.reference, err)
	}
}

// signalProductCreated invalidates the listing cache and publishes the
// creation event. Neither action can fail the pipeline at this point.
func (s *Service) signalProductCreated(ctx context.Context, product *domain.Product) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, product.AccountID)
	}
	s.publishEvent(ctx, "product.created", domain.ProductCreatedEvent{
		ProductID:     product.ID,
		AccountID:     product.AccountID,
		PaymentLinkID: product.PaymentLinkID,
		Amount:        product.Amount,
		Currency:      product.Currency,
		Timestamp:     time.Now().UTC(),
	})
}
