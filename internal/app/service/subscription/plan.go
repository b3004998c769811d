package subscription

import (
	"context"
	"fmt"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/types"
)

// PlanRequest creates or updates a plan. On update, an empty ID is invalid
// and zero-valued optional fields clear the period.
type PlanRequest struct {
	ID               string         `json:"id"`
	Title            string         `json:"title" binding:"required"`
	Sku              string         `json:"sku" binding:"required"`
	Description      string         `json:"description"`
	Price            int64          `json:"price"`
	Currency         string         `json:"currency"`
	Available        *bool          `json:"available"`
	TrialPeriod      *int           `json:"trial_period"`
	TrialUnit        types.TimeUnit `json:"trial_unit"`
	RecurrencePeriod *int           `json:"recurrence_period"`
	RecurrenceUnit   types.TimeUnit `json:"recurrence_unit"`
	GroupID          string         `json:"group_id" binding:"required"`
}

func (r *PlanRequest) validate() error {
	if r.Title == "" || r.Sku == "" || r.GroupID == "" {
		return fmt.Errorf("%w: title, sku and group_id are required", ErrInvalidPlan)
	}
	if r.Price < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidPlan)
	}
	if err := r.TrialUnit.Validate(); err != nil {
		return fmt.Errorf("%w: trial_unit: %v", ErrInvalidPlan, err)
	}
	if err := r.RecurrenceUnit.Validate(); err != nil {
		return fmt.Errorf("%w: recurrence_unit: %v", ErrInvalidPlan, err)
	}
	for name, p := range map[string]*int{"trial_period": r.TrialPeriod, "recurrence_period": r.RecurrencePeriod} {
		if p != nil && *p <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidPlan, name)
		}
	}
	return nil
}

func (r *PlanRequest) apply(plan *models.Subscription) {
	plan.Title = r.Title
	plan.Sku = r.Sku
	plan.Description = r.Description
	plan.Price = r.Price
	if r.Currency != "" {
		plan.Currency = r.Currency
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	if r.Available != nil {
		plan.Available = *r.Available
	}
	plan.TrialPeriod = r.TrialPeriod
	plan.TrialUnit = r.TrialUnit
	plan.RecurrencePeriod = r.RecurrencePeriod
	plan.RecurrenceUnit = r.RecurrenceUnit
	plan.GroupID = r.GroupID
}

// CreatePlan validates and stores a new plan.
func (s *Service) CreatePlan(ctx context.Context, req *PlanRequest) (*models.Subscription, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	plan := &models.Subscription{Available: true}
	req.apply(plan)
	if err := s.repo.SavePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	s.logger(ctx).Infow("subscription plan created", "subscription_id", plan.ID, "sku", plan.Sku)
	return plan, nil
}

// UpdatePlan overwrites an existing plan. Bindings are not reconciled; the
// next Fix or sweep applies a changed group.
func (s *Service) UpdatePlan(ctx context.Context, req *PlanRequest) (*models.Subscription, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidPlan)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	req.apply(plan)
	if err := s.repo.SavePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return plan, nil
}

// ListPlans is the admin listing of plans.
func (s *Service) ListPlans(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Subscription, int64, error) {
	for _, f := range filters {
		if err := f.Validate(store.PlanFilterFields); err != nil {
			return nil, 0, err
		}
	}
	page.Normalize(store.PlanFilterFields, "created_at")
	rows, total, err := s.repo.ListPlans(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}
	return rows, total, nil
}
