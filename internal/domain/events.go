package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductCreatedEvent is published after the provisioning pipeline reaches
// terminal success, so listing views can refresh. Emission sits outside the
// pipeline's success/failure contract: a publish failure never fails the run.
type ProductCreatedEvent struct {
	ProductID     uuid.UUID `json:"product_id"`
	AccountID     uuid.UUID `json:"account_id"`
	PaymentLinkID string    `json:"payment_link_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"`
}

// PayoutRequestedEvent is published after a withdrawal request has been persisted.
type PayoutRequestedEvent struct {
	PayoutID  uuid.UUID `json:"payout_id"`
	AccountID uuid.UUID `json:"account_id"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
}
