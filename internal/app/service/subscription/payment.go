package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/types"
)

// ErrDuplicatePayment is returned when a processor payment was already applied.
var ErrDuplicatePayment = errors.New("payment already applied")

// Payment is a settled processor payment for a binding.
type Payment struct {
	ProfileID string
	TxnID     string
	// Amount is in minor units.
	Amount *int64
}

// ApplySignup starts the plan's trial and grants the plan's group.
func (s *Service) ApplySignup(ctx context.Context, us *models.UserSubscription, profileID string) error {
	err := s.applyLocked(ctx, us, profileID, func(repo store.Repository, b *models.UserSubscription) (*models.Transaction, error) {
		if err := s.extendTrial(ctx, repo, b); err != nil {
			return nil, err
		}
		return newTransaction(ctx, b, types.TransactionEventNewSubscription, nil, ""), nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply signup: %w", err)
	}
	return nil
}

// ApplyPayment extends the binding by one recurrence and grants the plan's
// group. A payment whose TxnID was already recorded fails with
// ErrDuplicatePayment and changes nothing.
func (s *Service) ApplyPayment(ctx context.Context, us *models.UserSubscription, p *Payment) error {
	err := s.applyLocked(ctx, us, p.ProfileID, func(repo store.Repository, b *models.UserSubscription) (*models.Transaction, error) {
		if p.TxnID != "" {
			_, err := repo.FindPaymentTransaction(ctx, p.TxnID)
			if err == nil {
				return nil, fmt.Errorf("%w: txn_id %s", ErrDuplicatePayment, p.TxnID)
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to look up payment %s: %w", p.TxnID, err)
			}
		}
		if err := s.extend(ctx, repo, b, 0); err != nil {
			return nil, err
		}
		t := newTransaction(ctx, b, types.TransactionEventPayment, p.Amount, p.TxnID)
		t.PaymentTxnID = lo.EmptyableToPtr(p.TxnID)
		return t, nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply payment: %w", err)
	}
	return nil
}

// applyLocked runs apply against the locked row, then saves it, grants the
// group and appends the returned Transaction, all in one storage transaction.
// The processor profile id is attached when not yet set.
func (s *Service) applyLocked(ctx context.Context, us *models.UserSubscription, profileID string, apply func(repo store.Repository, b *models.UserSubscription) (*models.Transaction, error)) error {
	var updated *models.UserSubscription
	err := s.repo.Transaction(ctx, func(repo store.Repository) error {
		current, err := repo.GetBindingForUpdate(ctx, us.ID)
		if err != nil {
			return bindingErr(err, us.ID)
		}
		if profileID != "" && current.PaymentProfileID == nil {
			current.PaymentProfileID = lo.ToPtr(profileID)
		}
		t, err := apply(repo, current)
		if err != nil {
			return err
		}
		if err := repo.SaveBinding(ctx, current); err != nil {
			return bindingErr(err, current.ID)
		}
		if err := s.subscribe(ctx, repo, current); err != nil {
			return err
		}
		if err := repo.AppendTransaction(ctx, t); err != nil {
			if t.PaymentTxnID != nil && errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("%w: txn_id %s", ErrDuplicatePayment, *t.PaymentTxnID)
			}
			return fmt.Errorf("failed to append transaction %q: %w", t.Event, err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return err
	}
	*us = *updated
	return nil
}
