/**
 * @description
 * Profile setup and single-field editing. Client-facing field names arrive in
 * camelCase and are remapped to storage column names through a fixed table;
 * names without a mapping pass through unchanged and are rejected by the store
 * layer's column whitelist if they are not real columns.
 */

package app

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/zelipay/monetization-service/internal/domain"
)

// profileFieldMapping translates client field names to storage column names.
// A name absent from the table maps to itself.
var profileFieldMapping = map[string]string{
	"withdrawalFirstName": "first_name",
	"withdrawalLastName":  "last_name",
	"withdrawalEmail":     "company_email",
	"momoProvider":        "momo_provider",
	"momoNumber":          "momo_number",
	"autoTransfer":        "auto_transfer",
}

// storageFieldName resolves a client field name to its storage column name,
// falling back to the name itself when no remapping exists.
func storageFieldName(clientField string) string {
	if column, ok := profileFieldMapping[clientField]; ok {
		return column
	}
	return clientField
}

// SetupProfile creates or refreshes the account's profile identity and derives
// its display id from the account id and initials.
func (s *Service) SetupProfile(ctx context.Context, accountID uuid.UUID, firstName, lastName string) (*domain.Profile, error) {
	if firstName == "" || lastName == "" {
		return nil, ErrMissingProfileName
	}
	customID := domain.DeriveCustomID(accountID, firstName, lastName)
	profile, err := s.repo.UpsertProfileIdentity(ctx, accountID, firstName, lastName, customID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	log.Printf("level=info component=service msg=\"profile identity saved\" account_id=%s custom_id=%s", accountID, profile.CustomID)
	return profile, nil
}

// ApplyProfileEdit updates exactly one profile field. The client field name is
// remapped before it reaches the store, and the store only accepts whitelisted
// columns.
func (s *Service) ApplyProfileEdit(ctx context.Context, accountID uuid.UUID, clientField string, value any) error {
	column := storageFieldName(clientField)
	if err := s.repo.UpdateProfileField(ctx, accountID, column, value); err != nil {
		return fmt.Errorf("failed to update profile field %q: %w", clientField, err)
	}
	log.Printf("level=info component=service msg=\"profile field updated\" account_id=%s field=%s column=%s", accountID, clientField, column)
	return nil
}

// GetProfile returns the account's profile.
func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.repo.FindProfileByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}
