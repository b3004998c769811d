package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/dateutil"
	"github.com/fatflowers/membership/pkg/types"
)

// CreateBindingRequest describes a new user subscription. Expires defaults
// to today unless NeverExpires is set.
type CreateBindingRequest struct {
	UserID           string     `json:"user_id"`
	Plan             string     `json:"plan"` // plan id or sku
	Expires          *time.Time `json:"expires"`
	NeverExpires     bool       `json:"never_expires"`
	Active           *bool      `json:"active"`
	PaymentProfileID *string    `json:"payment_profile_id"`
}

// CreateBinding stores a new binding. A second binding for the same user and
// plan, or a reused payment profile id, fails with ErrDuplicateBinding.
func (s *Service) CreateBinding(ctx context.Context, req *CreateBindingRequest) (*models.UserSubscription, error) {
	if req.UserID == "" || req.Plan == "" {
		return nil, fmt.Errorf("%w: user_id and plan are required", ErrInvalidPlan)
	}
	plan, err := s.GetPlanByRef(ctx, req.Plan)
	if err != nil {
		return nil, err
	}

	us := &models.UserSubscription{
		UserID:           req.UserID,
		SubscriptionID:   plan.ID,
		PaymentProfileID: req.PaymentProfileID,
		Active:           true,
		Subscription:     plan,
	}
	switch {
	case req.NeverExpires:
	case req.Expires != nil:
		d := dateutil.Date(*req.Expires)
		us.Expires = &d
	default:
		today := s.Today()
		us.Expires = &today
	}
	if req.Active != nil {
		us.Active = *req.Active
	}

	err = s.repo.Transaction(ctx, func(repo store.Repository) error {
		if err := repo.CreateBinding(ctx, us); err != nil {
			return bindingErr(err, req.UserID)
		}
		return s.record(ctx, repo, us, types.TransactionEventNewBinding, nil, "")
	})
	if err != nil {
		return nil, err
	}
	s.logger(ctx).Infow("user subscription created", "user_id", us.UserID, "subscription_id", plan.ID, "user_subscription_id", us.ID)
	return us, nil
}

// GetBinding loads a binding by id.
func (s *Service) GetBinding(ctx context.Context, id string) (*models.UserSubscription, error) {
	us, err := s.repo.GetBinding(ctx, id)
	if err != nil {
		return nil, bindingErr(err, id)
	}
	return us, nil
}

// FindBinding loads the user's binding to plan.
func (s *Service) FindBinding(ctx context.Context, userID, planID string) (*models.UserSubscription, error) {
	us, err := s.repo.FindBinding(ctx, userID, planID)
	if err != nil {
		return nil, bindingErr(err, userID+"/"+planID)
	}
	return us, nil
}

// FindBindingByProfile loads the binding holding a processor profile id.
func (s *Service) FindBindingByProfile(ctx context.Context, profileID string) (*models.UserSubscription, error) {
	us, err := s.repo.FindBindingByProfile(ctx, profileID)
	if err != nil {
		return nil, bindingErr(err, profileID)
	}
	return us, nil
}

// CurrentBinding returns the user's binding to the plan GetSubscriptionFor
// resolves, or, when the user is in no plan group, their most recent binding.
func (s *Service) CurrentBinding(ctx context.Context, userID string) (*models.UserSubscription, error) {
	plan, err := s.GetSubscriptionFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		us, err := s.repo.FindBinding(ctx, userID, plan.ID)
		if err == nil {
			return us, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, bindingErr(err, userID)
		}
	}
	all, err := s.repo.ListUserBindings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user subscriptions: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrBindingNotFound, userID)
	}
	return all[len(all)-1], nil
}

// SetActive flips the administrative switch and reconciles membership.
func (s *Service) SetActive(ctx context.Context, us *models.UserSubscription, active bool) error {
	return s.updateFlags(ctx, us, types.TransactionEventAdminEdit, func(b *models.UserSubscription) {
		b.Active = active
	})
}

// SetProfileStatus applies a payment processor profile status to the binding.
func (s *Service) SetProfileStatus(ctx context.Context, us *models.UserSubscription, status types.ProfileStatus) error {
	var mutate func(b *models.UserSubscription)
	switch status {
	case types.ProfileStatusActive:
		mutate = func(b *models.UserSubscription) { b.Active, b.Cancelled = true, false }
	case types.ProfileStatusSuspended:
		mutate = func(b *models.UserSubscription) { b.Active = false }
	case types.ProfileStatusCancelled:
		mutate = func(b *models.UserSubscription) { b.Cancelled = true }
	case types.ProfileStatusDeleted:
		// access is revoked and the binding removed by the following Fix
		mutate = func(b *models.UserSubscription) { b.Active, b.Cancelled = false, true }
	default:
		return fmt.Errorf("unknown profile status %q", status)
	}
	return s.updateFlags(ctx, us, types.TransactionEventAdminEdit, mutate)
}

// UpdateBindingRequest is an administrative edit. Nil fields are unchanged.
type UpdateBindingRequest struct {
	ID           string     `json:"id"`
	Expires      *time.Time `json:"expires"`
	NeverExpires bool       `json:"never_expires"`
	Active       *bool      `json:"active"`
	Cancelled    *bool      `json:"cancelled"`
	Comment      string     `json:"comment"`
}

// UpdateBinding applies an admin edit, records it and reconciles membership.
// The returned binding is nil when reconciliation removed it.
func (s *Service) UpdateBinding(ctx context.Context, req *UpdateBindingRequest) (*models.UserSubscription, error) {
	var updated *models.UserSubscription
	err := s.repo.Transaction(ctx, func(repo store.Repository) error {
		us, err := repo.GetBindingForUpdate(ctx, req.ID)
		if err != nil {
			return bindingErr(err, req.ID)
		}
		switch {
		case req.NeverExpires:
			us.Expires = nil
		case req.Expires != nil:
			d := dateutil.Date(*req.Expires)
			us.Expires = &d
		}
		if req.Active != nil {
			us.Active = *req.Active
		}
		if req.Cancelled != nil {
			us.Cancelled = *req.Cancelled
		}
		if err := repo.SaveBinding(ctx, us); err != nil {
			return bindingErr(err, us.ID)
		}
		if err := s.record(ctx, repo, us, types.TransactionEventAdminEdit, nil, req.Comment); err != nil {
			return err
		}
		action, err := s.fix(ctx, repo, us)
		if err != nil {
			return err
		}
		if action != types.ReconcileActionDelete {
			updated = us
		}
		InvalidateLookup(ctx, us.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListBindings is the admin listing of user subscriptions.
func (s *Service) ListBindings(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.UserSubscription, int64, error) {
	for _, f := range filters {
		if err := f.Validate(store.BindingFilterFields); err != nil {
			return nil, 0, err
		}
	}
	page.Normalize(store.BindingFilterFields, "created_at")
	rows, total, err := s.repo.ListBindings(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list user subscriptions: %w", err)
	}
	return rows, total, nil
}

// Describe renders a binding as "<user>'s <plan>", suffixed with " (expired)"
// when expired.
func (s *Service) Describe(us *models.UserSubscription) string {
	title := us.SubscriptionID
	if us.Subscription != nil {
		title = us.Subscription.String()
	}
	desc := fmt.Sprintf("%s's %s", us.UserID, title)
	if s.Expired(us) {
		desc += " (expired)"
	}
	return desc
}
