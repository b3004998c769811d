package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/dateutil"
	"github.com/fatflowers/membership/pkg/metrics"
	"github.com/fatflowers/membership/pkg/types"
)

// Expired reports whether the binding is past its expiry plus the grace
// period. A binding without expiry never expires.
func (s *Service) Expired(us *models.UserSubscription) bool {
	return s.expiredOn(us, s.Today())
}

func (s *Service) expiredOn(us *models.UserSubscription, today time.Time) bool {
	if us == nil || us.Expires == nil {
		return false
	}
	return today.After(dateutil.AddDays(*us.Expires, s.gracePeriod))
}

// Valid reports whether the user's membership of the plan's group matches
// the binding: a member exactly when the binding is active and unexpired.
func (s *Service) Valid(ctx context.Context, us *models.UserSubscription) (bool, error) {
	return s.valid(ctx, s.repo, us)
}

func (s *Service) valid(ctx context.Context, repo store.Repository, us *models.UserSubscription) (bool, error) {
	plan, err := s.planOf(ctx, repo, us)
	if err != nil {
		return false, err
	}
	member, err := repo.IsUserInGroup(ctx, us.UserID, plan.GroupID)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	if s.Expired(us) || !us.Active {
		return !member, nil
	}
	return member, nil
}

// Subscribe adds the user to the plan's group.
func (s *Service) Subscribe(ctx context.Context, us *models.UserSubscription) error {
	return s.subscribe(ctx, s.repo, us)
}

func (s *Service) subscribe(ctx context.Context, repo store.Repository, us *models.UserSubscription) error {
	plan, err := s.planOf(ctx, repo, us)
	if err != nil {
		return err
	}
	if err := repo.AddUserToGroup(ctx, us.UserID, plan.GroupID); err != nil {
		return fmt.Errorf("failed to add user to group: %w", err)
	}
	InvalidateLookup(ctx, us.UserID)
	s.logger(ctx).Infow("user subscribed", "user_id", us.UserID, "subscription_id", plan.ID, "group_id", plan.GroupID)
	return nil
}

// Unsubscribe removes the user from the plan's group.
func (s *Service) Unsubscribe(ctx context.Context, us *models.UserSubscription) error {
	return s.unsubscribe(ctx, s.repo, us)
}

func (s *Service) unsubscribe(ctx context.Context, repo store.Repository, us *models.UserSubscription) error {
	plan, err := s.planOf(ctx, repo, us)
	if err != nil {
		return err
	}
	if err := repo.RemoveUserFromGroup(ctx, us.UserID, plan.GroupID); err != nil {
		return fmt.Errorf("failed to remove user from group: %w", err)
	}
	InvalidateLookup(ctx, us.UserID)
	s.logger(ctx).Infow("user unsubscribed", "user_id", us.UserID, "subscription_id", plan.ID, "group_id", plan.GroupID)
	return nil
}

// Fix brings group membership into agreement with the binding's validity.
// It runs in one storage transaction holding the binding's row lock and
// re-reads the row first, so repeated or concurrent calls are no-ops once the
// binding is valid. On return us reflects the stored row.
func (s *Service) Fix(ctx context.Context, us *models.UserSubscription) (types.ReconcileAction, error) {
	action := types.ReconcileActionNone
	var current *models.UserSubscription
	err := s.repo.Transaction(ctx, func(repo store.Repository) error {
		var err error
		current, err = repo.GetBindingForUpdate(ctx, us.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				current = nil
				return nil
			}
			return fmt.Errorf("failed to lock user subscription: %w", err)
		}
		action, err = s.fix(ctx, repo, current)
		return err
	})
	if err != nil {
		return types.ReconcileActionNone, fmt.Errorf("failed to fix user subscription %s: %w", us.ID, err)
	}

	if current != nil && action != types.ReconcileActionDelete {
		*us = *current
	}
	if action != types.ReconcileActionNone {
		InvalidateLookup(ctx, us.UserID)
	}
	metrics.ReconcileTotal.WithLabelValues(string(action)).Inc()
	return action, nil
}

// fix reconciles us using repo, which must be bound to the caller's transaction.
func (s *Service) fix(ctx context.Context, repo store.Repository, us *models.UserSubscription) (types.ReconcileAction, error) {
	valid, err := s.valid(ctx, repo, us)
	if err != nil {
		return types.ReconcileActionNone, err
	}
	if valid {
		return types.ReconcileActionNone, nil
	}

	if !s.Expired(us) && us.Active {
		if err := s.subscribe(ctx, repo, us); err != nil {
			return types.ReconcileActionNone, err
		}
		return types.ReconcileActionSubscribe, nil
	}

	if err := s.unsubscribe(ctx, repo, us); err != nil {
		return types.ReconcileActionNone, err
	}
	if err := s.record(ctx, repo, us, types.TransactionEventExpired, nil, ""); err != nil {
		return types.ReconcileActionNone, err
	}
	if !us.Cancelled {
		return types.ReconcileActionUnsubscribe, nil
	}

	if err := repo.DeleteBinding(ctx, us.ID); err != nil {
		return types.ReconcileActionNone, fmt.Errorf("failed to delete user subscription: %w", err)
	}
	if err := s.record(ctx, repo, us, types.TransactionEventRemovedExpired, nil, ""); err != nil {
		return types.ReconcileActionNone, err
	}
	s.logger(ctx).Infow("cancelled user subscription removed", "user_id", us.UserID, "subscription_id", us.SubscriptionID, "user_subscription_id", us.ID)
	return types.ReconcileActionDelete, nil
}

// SweepResult summarizes one UnsubscribeExpired run.
type SweepResult struct {
	Candidates int                           `json:"candidates"`
	Actions    map[types.ReconcileAction]int `json:"actions"`
	Failed     int                           `json:"failed"`
}

// UnsubscribeExpired calls Fix on every binding whose raw expiry is before
// today. The grace period is applied inside Fix, so bindings still in grace
// are visited but left untouched. A failing binding does not stop the sweep;
// all failures are returned joined.
func (s *Service) UnsubscribeExpired(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	today := s.Today()
	candidates, err := s.repo.ListBindingsExpiringBefore(ctx, today)
	if err != nil {
		metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to list expired user subscriptions: %w", err)
	}

	res := &SweepResult{Candidates: len(candidates), Actions: map[types.ReconcileAction]int{}}
	var errs []error
	for _, us := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		action, err := s.Fix(ctx, us)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			s.logger(ctx).Errorw("sweep failed to fix user subscription", "user_subscription_id", us.ID, "error", err)
			continue
		}
		res.Actions[action]++
	}

	result := lo.Ternary(len(errs) == 0, "ok", "partial")
	metrics.SweepRunsTotal.WithLabelValues(result).Inc()
	metrics.SweepDuration.Observe(metrics.MillisecondsSince(start))
	s.logger(ctx).Infow("expired subscription sweep finished",
		"today", today.Format(time.DateOnly),
		"candidates", res.Candidates,
		"unsubscribed", res.Actions[types.ReconcileActionUnsubscribe],
		"deleted", res.Actions[types.ReconcileActionDelete],
		"subscribed", res.Actions[types.ReconcileActionSubscribe],
		"failed", res.Failed,
	)
	return res, errors.Join(errs...)
}
