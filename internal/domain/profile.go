package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile holds a merchant account's identity and payout destination fields.
// One row per account (account_id is the primary key). The edit flow mutates
// individual fields and never replaces the row wholesale.
type Profile struct {
	AccountID    uuid.UUID `json:"account_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CustomID     string    `json:"custom_id"`
	CompanyEmail string    `json:"company_email"`
	MomoProvider string    `json:"momo_provider"`
	MomoNumber   string    `json:"momo_number"`
	AutoTransfer bool      `json:"auto_transfer"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeriveCustomID builds the human-facing merchant id shown after profile
// setup: the first dash-separated segment of the account id followed by the
// uppercased initials, e.g. "3f9a1b2c_JD".
func DeriveCustomID(accountID uuid.UUID, firstName, lastName string) string {
	base := strings.SplitN(accountID.String(), "-", 2)[0]
	initials := ""
	if firstName != "" {
		initials += string([]rune(firstName)[0])
	}
	if lastName != "" {
		initials += string([]rune(lastName)[0])
	}
	return base + "_" + strings.ToUpper(initials)
}
