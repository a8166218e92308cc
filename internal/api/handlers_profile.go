/**
 * @description
 * HTTP handlers for profile setup, single-field edits, and profile reads.
 * Edits arrive with the client-side field name; the service remaps it to the
 * storage column before the update runs.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/zelipay/monetization-service/internal/app"
	"github.com/zelipay/monetization-service/internal/store"
)

type profileSetupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type profileEditRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// SetupProfileHandler creates or refreshes the account's profile identity.
func (h *MonetizationHandlers) SetupProfileHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req profileSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.service.SetupProfile(r.Context(), accountID, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, app.ErrMissingProfileName) {
			h.writeError(w, http.StatusBadRequest, "First and last name are required")
			return
		}
		log.Printf("level=error component=api endpoint=setup_profile outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

// EditProfileFieldHandler updates exactly one profile field.
func (h *MonetizationHandlers) EditProfileFieldHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req profileEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Field == "" {
		h.writeError(w, http.StatusBadRequest, "Field name is required")
		return
	}

	if err := h.service.ApplyProfileEdit(r.Context(), accountID, req.Field, req.Value); err != nil {
		switch {
		case errors.Is(err, store.ErrUnknownProfileColumn):
			h.writeError(w, http.StatusBadRequest, "Unknown profile field")
		case errors.Is(err, store.ErrProfileNotFound):
			h.writeError(w, http.StatusNotFound, "Profile not found")
		default:
			log.Printf("level=error component=api endpoint=edit_profile outcome=failed account_id=%s field=%s err=%v", accountID, req.Field, err)
			h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GetProfileHandler returns the account's profile.
func (h *MonetizationHandlers) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			h.writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_profile outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}
