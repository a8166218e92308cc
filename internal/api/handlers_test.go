package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/zelipay/monetization-service/internal/app"
	"github.com/zelipay/monetization-service/internal/domain"
	"github.com/zelipay/monetization-service/internal/store"
	"github.com/zelipay/monetization-service/pkg/paylinkclient"
)

type handlerRepoStub struct {
	store.Repository

	settings    *domain.FeeSettings
	settingsErr error
	inserted    *domain.FeeSettings

	createProductErr error
	products         []domain.Product

	profile    *domain.Profile
	profileErr error

	createdPayout *domain.Payout
	payouts       []domain.Payout
	stats         *domain.PayoutStats

	updatedColumn string
	updatedValue  any
	updateErr     error

	orphans []domain.ProvisioningOrphan
}

func (s *handlerRepoStub) FindFeeSettingsByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.FeeSettings, error) {
	if s.settingsErr != nil {
		return nil, s.settingsErr
	}
	if s.settings == nil {
		return nil, store.ErrSettingsNotFound
	}
	return s.settings, nil
}

func (s *handlerRepoStub) InsertFeeSettings(ctx context.Context, settings *domain.FeeSettings) error {
	s.inserted = settings
	return nil
}

func (s *handlerRepoStub) CreateProduct(ctx context.Context, product *domain.Product) error {
	if s.createProductErr != nil {
		return s.createProductErr
	}
	s.products = append(s.products, *product)
	return nil
}

func (s *handlerRepoStub) ListProductsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Product, error) {
	return s.products, nil
}

func (s *handlerRepoStub) ListPaymentLinksByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentLinkRef, error) {
	return nil, nil
}

func (s *handlerRepoStub) FindProfileByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	if s.profile == nil {
		return nil, store.ErrProfileNotFound
	}
	return s.profile, nil
}

func (s *handlerRepoStub) UpsertProfileIdentity(ctx context.Context, accountID uuid.UUID, firstName, lastName, customID string) (*domain.Profile, error) {
	s.profile = &domain.Profile{AccountID: accountID, FirstName: firstName, LastName: lastName, CustomID: customID}
	return s.profile, nil
}

func (s *handlerRepoStub) UpdateProfileField(ctx context.Context, accountID uuid.UUID, column string, value any) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedColumn = column
	s.updatedValue = value
	return nil
}

func (s *handlerRepoStub) CreatePayout(ctx context.Context, payout *domain.Payout) error {
	s.createdPayout = payout
	return nil
}

func (s *handlerRepoStub) ListPayoutsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Payout, error) {
	return s.payouts, nil
}

func (s *handlerRepoStub) GetPayoutStats(ctx context.Context, accountID uuid.UUID) (*domain.PayoutStats, error) {
	if s.stats == nil {
		return &domain.PayoutStats{}, nil
	}
	return s.stats, nil
}

func (s *handlerRepoStub) RecordProvisioningOrphan(ctx context.Context, orphan *domain.ProvisioningOrphan) error {
	s.orphans = append(s.orphans, *orphan)
	return nil
}

type handlerStorageStub struct {
	uploadErr error
}

func (s *handlerStorageStub) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	return s.uploadErr
}

func (s *handlerStorageStub) PublicURL(objectName string) string {
	return "https://storage.example.com/public/" + objectName
}

func (s *handlerStorageStub) Delete(ctx context.Context, objectName string) error {
	return nil
}

type handlerPaylinksStub struct {
	createErr error
	linkID    string
}

func (s *handlerPaylinksStub) Create(ctx context.Context, req paylinkclient.CreatePaymentLinkRequest) (*paylinkclient.CreatePaymentLinkResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	id := s.linkID
	if id == "" {
		id = "plink_test"
	}
	return &paylinkclient.CreatePaymentLinkResponse{PaymentLinkID: id}, nil
}

func (s *handlerPaylinksStub) Void(ctx context.Context, paymentLinkID string) error {
	return nil
}

type handlerPublisherStub struct{}

func (s *handlerPublisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return nil
}

func (s *handlerPublisherStub) Close() {}

func newTestHandlers(repo *handlerRepoStub, storage *handlerStorageStub, paylinks *handlerPaylinksStub) *MonetizationHandlers {
	svc := app.NewService(repo, storage, paylinks, &handlerPublisherStub{}, "monetize.events", false)
	return NewMonetizationHandlers(svc)
}

func authedRequest(t *testing.T, method, target string, body *bytes.Buffer, accountID uuid.UUID) *http.Request {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), accountIDKey, accountID.String())
	return req.WithContext(ctx)
}

func multipartProductForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close form writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestGetFeeSettingsHandlerBootstraps(t *testing.T) {
	repo := &handlerRepoStub{}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})
	accountID := uuid.New()

	req := authedRequest(t, http.MethodGet, "/settings", nil, accountID)
	rec := httptest.NewRecorder()
	h.GetFeeSettingsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.inserted == nil || repo.inserted.ProductFeePercentage != 0 {
		t.Fatalf("expected zero-fee bootstrap insert, got %+v", repo.inserted)
	}
}

func TestGetFeeSettingsHandlerRequiresAuth(t *testing.T) {
	h := newTestHandlers(&handlerRepoStub{}, &handlerStorageStub{}, &handlerPaylinksStub{})

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	h.GetFeeSettingsHandler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestQuoteProductHandler(t *testing.T) {
	repo := &handlerRepoStub{settings: &domain.FeeSettings{ProductFeePercentage: 10}}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})

	req := authedRequest(t, http.MethodGet, "/products/quote?amount=200&currency=XOF", nil, uuid.New())
	rec := httptest.NewRecorder()
	h.QuoteProductHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		FinalAmount float64 `json:"final_amount"`
		Display     string  `json:"display"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.FinalAmount != 220 {
		t.Fatalf("expected final amount 220, got %v", resp.FinalAmount)
	}
	if resp.Display != "220 XOF" {
		t.Fatalf("expected display '220 XOF', got %q", resp.Display)
	}
}

func TestQuoteProductHandlerRejectsBadInput(t *testing.T) {
	h := newTestHandlers(&handlerRepoStub{settings: &domain.FeeSettings{}}, &handlerStorageStub{}, &handlerPaylinksStub{})

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "below minimum", target: "/products/quote?amount=199&currency=XOF", wantStatus: http.StatusUnprocessableEntity},
		{name: "unsupported currency", target: "/products/quote?amount=1000&currency=NGN", wantStatus: http.StatusBadRequest},
		{name: "non-numeric amount", target: "/products/quote?amount=abc", wantStatus: http.StatusBadRequest},
		{name: "missing amount", target: "/products/quote", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, http.MethodGet, tt.target, nil, uuid.New())
			rec := httptest.NewRecorder()
			h.QuoteProductHandler(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateProductHandlerSuccess(t *testing.T) {
	repo := &handlerRepoStub{}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{linkID: "plink_42"})

	body, contentType := multipartProductForm(t, map[string]string{
		"name":     "Pack formation",
		"amount":   "5000",
		"currency": "XOF",
	})
	req := authedRequest(t, http.MethodPost, "/products", body, uuid.New())
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.CreateProductHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var product domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&product); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if product.PaymentLinkID != "plink_42" {
		t.Fatalf("expected provisioned link id, got %q", product.PaymentLinkID)
	}
}

func TestCreateProductHandlerRejectsLowAmount(t *testing.T) {
	repo := &handlerRepoStub{}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})

	body, contentType := multipartProductForm(t, map[string]string{
		"name":   "Pack formation",
		"amount": "199",
	})
	req := authedRequest(t, http.MethodPost, "/products", body, uuid.New())
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.CreateProductHandler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.products) != 0 {
		t.Fatal("expected no product persisted")
	}
}

func TestCreateProductHandlerHidesStepDetails(t *testing.T) {
	repo := &handlerRepoStub{}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{createErr: errors.New("provider exploded: secret details")})

	body, contentType := multipartProductForm(t, map[string]string{
		"name":   "Pack formation",
		"amount": "5000",
	})
	req := authedRequest(t, http.MethodPost, "/products", body, uuid.New())
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.CreateProductHandler(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "provider exploded") {
		t.Fatal("expected the response to hide provider failure details")
	}
}

func TestSubmitWithdrawalHandler(t *testing.T) {
	repo := &handlerRepoStub{profile: &domain.Profile{
		FirstName:    "Awa",
		LastName:     "Diop",
		CompanyEmail: "awa@boutique.sn",
		MomoProvider: "wave",
		MomoNumber:   "+221770000000",
	}}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})

	body := bytes.NewBufferString(`{"amount": 15000}`)
	req := authedRequest(t, http.MethodPost, "/payouts", body, uuid.New())
	rec := httptest.NewRecorder()
	h.SubmitWithdrawalHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.createdPayout == nil || repo.createdPayout.Method != "wave" {
		t.Fatalf("expected persisted payout with momo provider snapshot, got %+v", repo.createdPayout)
	}
}

func TestSubmitWithdrawalHandlerRejectsZeroAmount(t *testing.T) {
	repo := &handlerRepoStub{profile: &domain.Profile{}}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})

	body := bytes.NewBufferString(`{"amount": 0}`)
	req := authedRequest(t, http.MethodPost, "/payouts", body, uuid.New())
	rec := httptest.NewRecorder()
	h.SubmitWithdrawalHandler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestEditProfileFieldHandlerRemapsClientName(t *testing.T) {
	repo := &handlerRepoStub{}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})

	body := bytes.NewBufferString(`{"field": "momoNumber", "value": "+221780000000"}`)
	req := authedRequest(t, http.MethodPatch, "/profile", body, uuid.New())
	rec := httptest.NewRecorder()
	h.EditProfileFieldHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.updatedColumn != "momo_number" {
		t.Fatalf("expected momo_number column, got %q", repo.updatedColumn)
	}
}

func TestEditProfileFieldHandlerRejectsUnknownField(t *testing.T) {
	repo := &handlerRepoStub{updateErr: store.ErrUnknownProfileColumn}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})

	body := bytes.NewBufferString(`{"field": "isAdmin", "value": true}`)
	req := authedRequest(t, http.MethodPatch, "/profile", body, uuid.New())
	rec := httptest.NewRecorder()
	h.EditProfileFieldHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSetupProfileHandler(t *testing.T) {
	repo := &handlerRepoStub{}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})
	accountID := uuid.New()

	body := bytes.NewBufferString(`{"first_name": "Awa", "last_name": "Diop"}`)
	req := authedRequest(t, http.MethodPut, "/profile", body, accountID)
	rec := httptest.NewRecorder()
	h.SetupProfileHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var profile domain.Profile
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasSuffix(profile.CustomID, "_AD") {
		t.Fatalf("expected derived custom id, got %q", profile.CustomID)
	}
}

func TestPayoutStatsHandler(t *testing.T) {
	repo := &handlerRepoStub{stats: &domain.PayoutStats{PendingCount: 2, PendingAmount: 30000, TransferredAmount: 100000}}
	h := newTestHandlers(repo, &handlerStorageStub{}, &handlerPaylinksStub{})

	req := authedRequest(t, http.MethodGet, "/payouts/stats", nil, uuid.New())
	rec := httptest.NewRecorder()
	h.PayoutStatsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats domain.PayoutStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.PendingCount != 2 || stats.TransferredAmount != 100000 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
