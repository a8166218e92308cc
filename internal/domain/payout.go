/**
 * @description
 * Domain models for the withdrawal (payout) flow: the persisted payout request
 * with its profile snapshot, and the aggregated wallet statistics shown on the
 * merchant dashboard.
 *
 * @notes
 * - Customer contact fields on a Payout are copied from the Profile at
 *   submission time. They are snapshots: later profile edits must not alter an
 *   already-submitted request.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payout represents a withdrawal request submitted by a merchant account.
// Maps directly to the `payouts` table.
type Payout struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	Amount      int64     `json:"amount"` // minor units, always > 0
	Description string    `json:"description"`

	// Snapshot fields copied from the profile at submission time.
	CustomerEmail     string `json:"customer_email"`
	CustomerFirstName string `json:"customer_first_name"`
	CustomerLastName  string `json:"customer_last_name"`
	CustomerPhone     string `json:"customer_phone"`

	Method    string    `json:"method"`   // mobile money provider
	Currency  string    `json:"currency"` // payouts are settled in XOF
	Status    string    `json:"status"`   // 'pending', 'processing', 'completed'
	CreatedAt time.Time `json:"created_at"`
}

// Payout statuses.
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
)

// PayoutStats aggregates an account's payout history for the wallet dashboard:
// how much is pending, in transit, and already transferred.
type PayoutStats struct {
	PendingCount      int64 `json:"pending_count"`
	PendingAmount     int64 `json:"pending_amount"`
	CompletedCount    int64 `json:"completed_count"`
	CompletedAmount   int64 `json:"completed_amount"`
	InTransitAmount   int64 `json:"in_transit_amount"`
	TransferredAmount int64 `json:"transferred_amount"`
}
