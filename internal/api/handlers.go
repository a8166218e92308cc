/**
 * @description
 * This file contains the HTTP handlers for the monetization-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/zelipay/monetization-service/internal/app"
	"github.com/zelipay/monetization-service/internal/store"
)

// genericFailureMessage is returned for all infrastructure failures so the
// response never reveals which pipeline step broke.
const genericFailureMessage = "Unable to process the request. Please try again later."

// MonetizationHandlers holds the application service that handlers will use.
type MonetizationHandlers struct {
	service *app.Service
}

// NewMonetizationHandlers creates a new instance of MonetizationHandlers.
func NewMonetizationHandlers(service *app.Service) *MonetizationHandlers {
	return &MonetizationHandlers{service: service}
}

// accountID extracts and parses the authenticated account id from the request
// context. A missing or malformed id writes a 401 and returns false.
func (h *MonetizationHandlers) accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	accountIDStr, ok := GetAccountID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, app.ErrAuthenticationRequired.Error())
		return uuid.Nil, false
	}
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		log.Printf("level=warn component=api outcome=reject reason=invalid_account_id account_id=%s", accountIDStr)
		h.writeError(w, http.StatusUnauthorized, app.ErrAuthenticationRequired.Error())
		return uuid.Nil, false
	}
	return accountID, true
}

// GetFeeSettingsHandler returns the account's fee settings, bootstrapping a
// zero-fee row on first access.
func (h *MonetizationHandlers) GetFeeSettingsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	settings, err := h.service.ResolveFeeSettings(r.Context(), accountID)
	if err != nil {
		log.Printf("level=error component=api endpoint=get_settings outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

// QuoteProductHandler computes the fee-inclusive display price for a base
// amount without creating anything.
func (h *MonetizationHandlers) QuoteProductHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	amount, err := parseAmountParam(r.URL.Query().Get("amount"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid amount parameter")
		return
	}
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "XOF"
	}

	quote, err := h.service.QuoteProduct(r.Context(), accountID, amount, currency)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnsupportedCurrency):
			h.writeError(w, http.StatusBadRequest, "Unsupported currency")
		case errors.Is(err, app.ErrInvalidAmount):
			h.writeError(w, http.StatusUnprocessableEntity, "Amount is below the 200 FCFA minimum")
		default:
			log.Printf("level=error component=api endpoint=quote_product outcome=failed account_id=%s err=%v", accountID, err)
			h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"base_amount":    quote.BaseAmount,
		"fee_percentage": quote.FeePercentage,
		"final_amount":   quote.FinalAmount,
		"display":        quote.Display(currency),
	})
}

// writeJSON is a helper for writing JSON responses.
func (h *MonetizationHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *MonetizationHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writePipelineError maps the service failure taxonomy to HTTP responses.
// Validation failures get specific messages; infrastructure failures share a
// single generic message.
func (h *MonetizationHandlers) writePipelineError(w http.ResponseWriter, endpoint string, accountID uuid.UUID, err error) {
	switch {
	case errors.Is(err, app.ErrUnsupportedCurrency):
		h.writeError(w, http.StatusBadRequest, "Unsupported currency")
	case errors.Is(err, app.ErrInvalidAmount):
		h.writeError(w, http.StatusUnprocessableEntity, "Amount is below the 200 FCFA minimum")
	case errors.Is(err, app.ErrStorageFailure),
		errors.Is(err, app.ErrProvisioningFailure),
		errors.Is(err, app.ErrPersistenceFailure):
		log.Printf("level=error component=api endpoint=%s outcome=failed account_id=%s err=%v", endpoint, accountID, err)
		h.writeError(w, http.StatusBadGateway, genericFailureMessage)
	case errors.Is(err, store.ErrProfileNotFound):
		h.writeError(w, http.StatusNotFound, "Profile not found")
	default:
		log.Printf("level=error component=api endpoint=%s outcome=failed account_id=%s err=%v", endpoint, accountID, err)
		h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
	}
}
