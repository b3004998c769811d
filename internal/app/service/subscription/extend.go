package subscription

import (
	"context"
	"time"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/dateutil"
)

// Extend moves the binding's expiry forward. A non-zero delta is added to the
// current expiry (today when unset) and truncated to a date. With a zero
// delta the plan's recurrence is applied, or, for a plan that does not recur,
// the expiry is cleared so the binding never expires. The binding is not
// persisted.
func (s *Service) Extend(ctx context.Context, us *models.UserSubscription, delta time.Duration) error {
	return s.extend(ctx, s.repo, us, delta)
}

func (s *Service) extend(ctx context.Context, repo store.Repository, us *models.UserSubscription, delta time.Duration) error {
	base := s.Today()
	if us.Expires != nil {
		base = dateutil.Date(*us.Expires)
	}

	if delta != 0 {
		next := dateutil.Date(base.Add(delta))
		us.Expires = &next
		return nil
	}

	plan, err := s.planOf(ctx, repo, us)
	if err != nil {
		return err
	}
	if !plan.Recurs() {
		us.Expires = nil
		return nil
	}
	next := dateutil.ExtendDateByPeriod(base, plan.Recurrence())
	us.Expires = &next
	return nil
}

// ExtendTrial moves the expiry forward by the plan's trial period. Plans
// without a trial leave the binding unchanged.
func (s *Service) ExtendTrial(ctx context.Context, us *models.UserSubscription) error {
	return s.extendTrial(ctx, s.repo, us)
}

func (s *Service) extendTrial(ctx context.Context, repo store.Repository, us *models.UserSubscription) error {
	plan, err := s.planOf(ctx, repo, us)
	if err != nil {
		return err
	}
	trial := plan.Trial()
	if trial.IsZero() {
		return nil
	}
	base := s.Today()
	if us.Expires != nil && us.Expires.After(base) {
		base = dateutil.Date(*us.Expires)
	}
	next := dateutil.ExtendDateByPeriod(base, trial)
	us.Expires = &next
	return nil
}
