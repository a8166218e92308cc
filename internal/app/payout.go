/**
 * @description
 * Withdrawal request coordination: validates the requested amount, snapshots
 * the merchant's profile contact fields into the payout record, persists it as
 * pending, and publishes the request event. Also exposes the payout listing
 * and the aggregated wallet statistics.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/zelipay/monetization-service/internal/domain"
)

const withdrawalDescription = "Retrait de fonds"

// SubmitWithdrawal creates a pending payout for the account. The amount must
// be strictly positive. Contact fields are copied from the profile at
// submission time so later profile edits never alter this request.
func (s *Service) SubmitWithdrawal(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.Payout, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive, got %d", ErrInvalidAmount, amount)
	}

	profile, err := s.repo.FindProfileByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for withdrawal: %w", err)
	}

	payout := &domain.Payout{
		ID:                uuid.New(),
		AccountID:         accountID,
		Amount:            amount,
		Description:       withdrawalDescription,
		CustomerEmail:     profile.CompanyEmail,
		CustomerFirstName: profile.FirstName,
		CustomerLastName:  profile.LastName,
		CustomerPhone:     profile.MomoNumber,
		Method:            profile.MomoProvider,
		Currency:          domain.CurrencyXOF,
		Status:            domain.PayoutStatusPending,
	}
	if err := s.repo.CreatePayout(ctx, payout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	s.publishEvent(ctx, "payout.requested", domain.PayoutRequestedEvent{
		PayoutID:  payout.ID,
		AccountID: accountID,
		Amount:    amount,
		Method:    payout.Method,
		Timestamp: time.Now().UTC(),
	})

	log.Printf("level=info component=service msg=\"withdrawal submitted\" account_id=%s payout_id=%s amount=%d", accountID, payout.ID, amount)
	return payout, nil
}

// ListPayouts returns the account's withdrawal requests, newest first.
func (s *Service) ListPayouts(ctx context.Context, accountID uuid.UUID) ([]domain.Payout, error) {
	payouts, err := s.repo.ListPayoutsByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return payouts, nil
}

// PayoutStats returns the aggregated wallet figures for the account.
func (s *Service) PayoutStats(ctx context.Context, accountID uuid.UUID) (*domain.PayoutStats, error) {
	stats, err := s.repo.GetPayoutStats(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payout stats: %w", err)
	}
	return stats, nil
}
