package subscription

import (
	"context"
	"fmt"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/types"
)

// ReasonCurrentSubscription rejects switching to the plan already held.
const ReasonCurrentSubscription = "This is your current subscription."

// ChangeValidator objects to switching current to candidate by returning a
// non-empty reason. It must not mutate either argument.
type ChangeValidator func(ctx context.Context, current *models.UserSubscription, candidate *models.Subscription) string

// RegisterChangeValidator appends v to the validators consulted by TryChange.
func (s *Service) RegisterChangeValidator(v ChangeValidator) {
	if v == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validators = append(s.validators, v)
}

// TryChange returns the reasons blocking a switch from us to candidate, or
// nil when the switch is allowed. Switching to the same plan is only allowed
// as a resubscribe of an active, cancelled binding. Other switches collect
// every non-empty reason from the registered validators in registration order.
func (s *Service) TryChange(ctx context.Context, us *models.UserSubscription, candidate *models.Subscription) []string {
	if candidate.ID == us.SubscriptionID {
		if us.Active && us.Cancelled {
			return nil
		}
		return []string{ReasonCurrentSubscription}
	}

	s.mu.RLock()
	validators := append([]ChangeValidator(nil), s.validators...)
	s.mu.RUnlock()

	var reasons []string
	for _, v := range validators {
		if reason := v(ctx, us, candidate); reason != "" {
			reasons = append(reasons, reason)
		}
	}
	return reasons
}

// ChangePlan moves the binding to candidate when TryChange allows it. The old
// plan's group is revoked and membership is reconciled against the new plan
// in the same storage transaction. Switching to the same plan resubscribes.
// A non-empty reason list means nothing was changed.
func (s *Service) ChangePlan(ctx context.Context, us *models.UserSubscription, candidate *models.Subscription) ([]string, error) {
	if candidate.ID == us.SubscriptionID {
		return s.Resubscribe(ctx, us)
	}
	if reasons := s.TryChange(ctx, us, candidate); len(reasons) > 0 {
		return reasons, nil
	}

	from := us.SubscriptionID
	var updated models.UserSubscription
	err := s.repo.Transaction(ctx, func(repo store.Repository) error {
		current, err := repo.GetBindingForUpdate(ctx, us.ID)
		if err != nil {
			return bindingErr(err, us.ID)
		}
		if err := s.unsubscribe(ctx, repo, current); err != nil {
			return err
		}
		current.SubscriptionID = candidate.ID
		current.Subscription = candidate
		current.Cancelled = false
		if err := repo.SaveBinding(ctx, current); err != nil {
			return bindingErr(err, current.ID)
		}
		if err := s.record(ctx, repo, current, types.TransactionEventChangePlan, nil, fmt.Sprintf("from %s to %s", from, candidate.ID)); err != nil {
			return err
		}
		if _, err := s.fix(ctx, repo, current); err != nil {
			return err
		}
		updated = *current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to change subscription plan: %w", err)
	}
	*us = updated
	InvalidateLookup(ctx, us.UserID)
	s.logger(ctx).Infow("subscription plan changed", "user_id", us.UserID, "from", from, "to", candidate.ID)
	return nil, nil
}

// Resubscribe undoes a pending cancellation when TryChange to the same plan
// allows it.
func (s *Service) Resubscribe(ctx context.Context, us *models.UserSubscription) ([]string, error) {
	plan, err := s.planOf(ctx, s.repo, us)
	if err != nil {
		return nil, err
	}
	if reasons := s.TryChange(ctx, us, plan); len(reasons) > 0 {
		return reasons, nil
	}
	err = s.updateFlags(ctx, us, types.TransactionEventResubscribe, func(b *models.UserSubscription) {
		b.Cancelled = false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resubscribe: %w", err)
	}
	return nil, nil
}

// Cancel records the user's request not to renew. Access continues until the
// binding expires, after which the sweep removes it.
func (s *Service) Cancel(ctx context.Context, us *models.UserSubscription) error {
	err := s.updateFlags(ctx, us, types.TransactionEventCancel, func(b *models.UserSubscription) {
		b.Cancelled = true
	})
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return nil
}

// updateFlags applies mutate to the locked row, saves it, records event and
// reconciles membership.
func (s *Service) updateFlags(ctx context.Context, us *models.UserSubscription, event types.TransactionEvent, mutate func(b *models.UserSubscription)) error {
	var updated *models.UserSubscription
	err := s.repo.Transaction(ctx, func(repo store.Repository) error {
		current, err := repo.GetBindingForUpdate(ctx, us.ID)
		if err != nil {
			return bindingErr(err, us.ID)
		}
		mutate(current)
		if err := repo.SaveBinding(ctx, current); err != nil {
			return bindingErr(err, current.ID)
		}
		if event != "" {
			if err := s.record(ctx, repo, current, event, nil, ""); err != nil {
				return err
			}
		}
		action, err := s.fix(ctx, repo, current)
		if err != nil {
			return err
		}
		if action != types.ReconcileActionDelete {
			updated = current
		}
		return nil
	})
	if err != nil {
		return err
	}
	if updated != nil {
		*us = *updated
	}
	InvalidateLookup(ctx, us.UserID)
	return nil
}

// EndOfTerm marks the binding cancelled once the processor has billed its
// final term. The binding is removed by the sweep when it lapses.
func (s *Service) EndOfTerm(ctx context.Context, us *models.UserSubscription) error {
	err := s.updateFlags(ctx, us, types.TransactionEventEndOfTerm, func(b *models.UserSubscription) {
		b.Cancelled = true
	})
	if err != nil {
		return fmt.Errorf("failed to end subscription term: %w", err)
	}
	return nil
}
