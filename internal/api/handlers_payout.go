/**
 * @description
 * HTTP handlers for withdrawal requests and the wallet statistics endpoint.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/zelipay/monetization-service/internal/app"
	"github.com/zelipay/monetization-service/internal/domain"
	"github.com/zelipay/monetization-service/internal/store"
)

type withdrawalRequest struct {
	Amount int64 `json:"amount"`
}

// SubmitWithdrawalHandler creates a pending payout for the account.
func (h *MonetizationHandlers) SubmitWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payout, err := h.service.SubmitWithdrawal(r.Context(), accountID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidAmount):
			h.writeError(w, http.StatusUnprocessableEntity, "Withdrawal amount must be positive")
		case errors.Is(err, store.ErrProfileNotFound):
			h.writeError(w, http.StatusPreconditionFailed, "Profile setup is required before requesting a withdrawal")
		default:
			log.Printf("level=error component=api endpoint=submit_withdrawal outcome=failed account_id=%s err=%v", accountID, err)
			h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		}
		return
	}

	log.Printf("level=info component=api endpoint=submit_withdrawal outcome=accepted account_id=%s payout_id=%s amount=%d", accountID, payout.ID, payout.Amount)
	h.writeJSON(w, http.StatusCreated, payout)
}

// ListPayoutsHandler returns the account's withdrawal requests, newest first.
func (h *MonetizationHandlers) ListPayoutsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	payouts, err := h.service.ListPayouts(r.Context(), accountID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_payouts outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		return
	}
	if payouts == nil {
		payouts = []domain.Payout{}
	}
	h.writeJSON(w, http.StatusOK, payouts)
}

// PayoutStatsHandler returns the aggregated wallet figures for the account.
func (h *MonetizationHandlers) PayoutStatsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.PayoutStats(r.Context(), accountID)
	if err != nil {
		log.Printf("level=error component=api endpoint=payout_stats outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}
