package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/zelipay/monetization-service/internal/domain"
	"github.com/zelipay/monetization-service/internal/store"
	"github.com/zelipay/monetization-service/pkg/paylinkclient"
)

type pipelineRepoStub struct {
	store.Repository

	createProductErr    error
	createdProduct      *domain.Product
	createProductCalled bool

	recordedOrphans []domain.ProvisioningOrphan
	recordOrphanErr error
}

func (s *pipelineRepoStub) CreateProduct(ctx context.Context, product *domain.Product) error {
	s.createProductCalled = true
	if s.createProductErr != nil {
		return s.createProductErr
	}
	s.createdProduct = product
	return nil
}

func (s *pipelineRepoStub) RecordProvisioningOrphan(ctx context.Context, orphan *domain.ProvisioningOrphan) error {
	if s.recordOrphanErr != nil {
		return s.recordOrphanErr
	}
	s.recordedOrphans = append(s.recordedOrphans, *orphan)
	return nil
}

type storageStub struct {
	uploadErr     error
	uploadCalled  bool
	uploadedName  string
	deleteErr     error
	deletedNames  []string
	publicURLBase string
}

func (s *storageStub) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	s.uploadCalled = true
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploadedName = objectName
	return nil
}

func (s *storageStub) PublicURL(objectName string) string {
	base := s.publicURLBase
	if base == "" {
		base = "https://storage.example.com/public"
	}
	return base + "/" + objectName
}

func (s *storageStub) Delete(ctx context.Context, objectName string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedNames = append(s.deletedNames, objectName)
	return nil
}

type paylinksStub struct {
	createErr    error
	createCalled bool
	lastRequest  paylinkclient.CreatePaymentLinkRequest
	linkID       string

	voidErr     error
	voidedLinks []string
}

func (s *paylinksStub) Create(ctx context.Context, req paylinkclient.CreatePaymentLinkRequest) (*paylinkclient.CreatePaymentLinkResponse, error) {
	s.createCalled = true
	s.lastRequest = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	id := s.linkID
	if id == "" {
		id = "plink_" + uuid.NewString()
	}
	return &paylinkclient.CreatePaymentLinkResponse{PaymentLinkID: id}, nil
}

func (s *paylinksStub) Void(ctx context.Context, paymentLinkID string) error {
	if s.voidErr != nil {
		return s.voidErr
	}
	s.voidedLinks = append(s.voidedLinks, paymentLinkID)
	return nil
}

type publisherStub struct {
	published []publishedEvent
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       any
}

func (s *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	s.published = append(s.published, publishedEvent{exchange: exchange, routingKey: routingKey, body: body})
	return nil
}

func (s *publisherStub) Close() {}

func newPipelineService(repo *pipelineRepoStub, storage *storageStub, paylinks *paylinksStub, producer *publisherStub, compensationEnabled bool) *Service {
	return NewService(repo, storage, paylinks, producer, "monetize.events", compensationEnabled)
}

func validInput() domain.NewProductInput {
	return domain.NewProductInput{
		Name:     "Pack formation",
		Amount:   5000,
		Currency: "XOF",
	}
}

func TestCreateProductRejectsAmountBelowMinimum(t *testing.T) {
	repo := &pipelineRepoStub{}
	storage := &storageStub{}
	paylinks := &paylinksStub{}
	svc := newPipelineService(repo, storage, paylinks, &publisherStub{}, false)

	input := validInput()
	input.Amount = 199
	input.Image = []byte("png-bytes")
	input.ImageContentType = "image/png"

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if storage.uploadCalled {
		t.Fatal("expected no image upload for invalid amount")
	}
	if paylinks.createCalled {
		t.Fatal("expected no payment link provisioning for invalid amount")
	}
	if repo.createProductCalled {
		t.Fatal("expected no persistence attempt for invalid amount")
	}
}

func TestCreateProductRejectsUnsupportedCurrency(t *testing.T) {
	repo := &pipelineRepoStub{}
	storage := &storageStub{}
	paylinks := &paylinksStub{}
	svc := newPipelineService(repo, storage, paylinks, &publisherStub{}, false)

	input := validInput()
	input.Currency = "GBP"

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	if !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
	if storage.uploadCalled || paylinks.createCalled || repo.createProductCalled {
		t.Fatal("expected no side effects for unsupported currency")
	}
}

func TestCreateProductSuccess(t *testing.T) {
	repo := &pipelineRepoStub{}
	storage := &storageStub{}
	paylinks := &paylinksStub{linkID: "plink_12345"}
	producer := &publisherStub{}
	svc := newPipelineService(repo, storage, paylinks, producer, false)

	accountID := uuid.New()
	input := validInput()
	input.Description = "Acces au module complet"
	input.Image = []byte("png-bytes")
	input.ImageContentType = "image/png"
	input.RedirectURL = "https://merchant.example.com/merci"

	product, err := svc.CreateProduct(context.Background(), accountID, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.PaymentLinkID != "plink_12345" {
		t.Fatalf("expected provisioned link id on product, got %q", product.PaymentLinkID)
	}
	if repo.createdProduct == nil || repo.createdProduct.PaymentLinkID != "plink_12345" {
		t.Fatal("expected persisted product to carry the provisioned link id")
	}
	if product.ImageURL == nil || !strings.HasSuffix(*product.ImageURL, ".png") {
		t.Fatalf("expected public image url with png extension, got %v", product.ImageURL)
	}
	if paylinks.lastRequest.Amount != input.Amount {
		t.Fatalf("expected payment link to charge the base amount %d, got %d", input.Amount, paylinks.lastRequest.Amount)
	}
	if paylinks.lastRequest.Description != input.Description {
		t.Fatalf("expected description %q, got %q", input.Description, paylinks.lastRequest.Description)
	}
	if len(producer.published) != 1 || producer.published[0].routingKey != "product.created" {
		t.Fatalf("expected a single product.created event, got %+v", producer.published)
	}
	if len(repo.recordedOrphans) != 0 {
		t.Fatalf("expected no orphans on success, got %d", len(repo.recordedOrphans))
	}
}

func TestCreateProductDescriptionFallsBackToName(t *testing.T) {
	paylinks := &paylinksStub{}
	svc := newPipelineService(&pipelineRepoStub{}, &storageStub{}, paylinks, &publisherStub{}, false)

	input := validInput()
	input.Description = ""

	if _, err := svc.CreateProduct(context.Background(), uuid.New(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paylinks.lastRequest.Description != input.Name {
		t.Fatalf("expected description fallback to product name %q, got %q", input.Name, paylinks.lastRequest.Description)
	}
}

func TestCreateProductStorageFailure(t *testing.T) {
	repo := &pipelineRepoStub{}
	storage := &storageStub{uploadErr: errors.New("bucket unavailable")}
	paylinks := &paylinksStub{}
	svc := newPipelineService(repo, storage, paylinks, &publisherStub{}, false)

	input := validInput()
	input.Image = []byte("png-bytes")
	input.ImageContentType = "image/png"

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
	if paylinks.createCalled {
		t.Fatal("expected no payment link provisioning after upload failure")
	}
	if repo.createProductCalled {
		t.Fatal("expected no persistence attempt after upload failure")
	}
}

func TestCreateProductProvisioningFailureLeavesImageWhenCompensationOff(t *testing.T) {
	repo := &pipelineRepoStub{}
	storage := &storageStub{}
	paylinks := &paylinksStub{createErr: errors.New("provider timeout")}
	svc := newPipelineService(repo, storage, paylinks, &publisherStub{}, false)

	input := validInput()
	input.Image = []byte("png-bytes")
	input.ImageContentType = "image/png"

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	if !errors.Is(err, ErrProvisioningFailure) {
		t.Fatalf("expected ErrProvisioningFailure, got %v", err)
	}
	if len(storage.deletedNames) != 0 {
		t.Fatal("expected uploaded image to remain when compensation is disabled")
	}
	if len(repo.recordedOrphans) != 1 || repo.recordedOrphans[0].Kind != domain.OrphanKindImage {
		t.Fatalf("expected one image orphan record, got %+v", repo.recordedOrphans)
	}
	if repo.recordedOrphans[0].Reference != storage.uploadedName {
		t.Fatalf("expected orphan reference %q, got %q", storage.uploadedName, repo.recordedOrphans[0].Reference)
	}
	if repo.createProductCalled {
		t.Fatal("expected no persistence attempt after provisioning failure")
	}
}

func TestCreateProductProvisioningFailureCompensatesImageWhenEnabled(t *testing.T) {
	repo := &pipelineRepoStub{}
	storage := &storageStub{}
	paylinks := &paylinksStub{createErr: errors.New("provider timeout")}
	svc := newPipelineService(repo, storage, paylinks, &publisherStub{}, true)

	input := validInput()
	input.Image = []byte("png-bytes")
	input.ImageContentType = "image/png"

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	if !errors.Is(err, ErrProvisioningFailure) {
		t.Fatalf("expected ErrProvisioningFailure, got %v", err)
	}
	if len(storage.deletedNames) != 1 || storage.deletedNames[0] != storage.uploadedName {
		t.Fatalf("expected uploaded image %q to be deleted, got %v", storage.uploadedName, storage.deletedNames)
	}
	if len(repo.recordedOrphans) != 0 {
		t.Fatalf("expected no orphan records after successful compensation, got %+v", repo.recordedOrphans)
	}
}

func TestCreateProductPersistenceFailureCompensatesInReverseOrder(t *testing.T) {
	repo := &pipelineRepoStub{createProductErr: errors.New("connection reset")}
	storage := &storageStub{}
	paylinks := &paylinksStub{linkID: "plink_777"}
	producer := &publisherStub{}
	svc := newPipelineService(repo, storage, paylinks, producer, true)

	input := validInput()
	input.Image = []byte("png-bytes")
	input.ImageContentType = "image/png"

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if len(paylinks.voidedLinks) != 1 || paylinks.voidedLinks[0] != "plink_777" {
		t.Fatalf("expected payment link plink_777 voided, got %v", paylinks.voidedLinks)
	}
	if len(storage.deletedNames) != 1 {
		t.Fatalf("expected uploaded image deleted, got %v", storage.deletedNames)
	}
	if len(producer.published) != 0 {
		t.Fatal("expected no success event after persistence failure")
	}
}

func TestCreateProductPersistenceFailureRecordsOrphansWhenCompensationOff(t *testing.T) {
	repo := &pipelineRepoStub{createProductErr: errors.New("connection reset")}
	storage := &storageStub{}
	paylinks := &paylinksStub{linkID: "plink_777"}
	svc := newPipelineService(repo, storage, paylinks, &publisherStub{}, false)

	input := validInput()
	input.Image = []byte("png-bytes")
	input.ImageContentType = "image/png"

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if len(repo.recordedOrphans) != 2 {
		t.Fatalf("expected two orphan records, got %+v", repo.recordedOrphans)
	}
	// Unwind runs newest first.
	if repo.recordedOrphans[0].Kind != domain.OrphanKindPaymentLink || repo.recordedOrphans[1].Kind != domain.OrphanKindImage {
		t.Fatalf("expected payment link orphan before image orphan, got %+v", repo.recordedOrphans)
	}
}

func TestCreateProductFailedCompensationFallsBackToOrphan(t *testing.T) {
	repo := &pipelineRepoStub{createProductErr: errors.New("connection reset")}
	storage := &storageStub{deleteErr: errors.New("object locked")}
	paylinks := &paylinksStub{linkID: "plink_888"}
	svc := newPipelineService(repo, storage, paylinks, &publisherStub{}, true)

	input := validInput()
	input.Image = []byte("png-bytes")
	input.ImageContentType = "image/png"

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if len(paylinks.voidedLinks) != 1 {
		t.Fatalf("expected payment link voided, got %v", paylinks.voidedLinks)
	}
	if len(repo.recordedOrphans) != 1 || repo.recordedOrphans[0].Kind != domain.OrphanKindImage {
		t.Fatalf("expected image orphan after failed delete, got %+v", repo.recordedOrphans)
	}
}
