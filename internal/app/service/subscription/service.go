package subscription

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/config"
	"github.com/fatflowers/membership/pkg/dateutil"
	"github.com/fatflowers/membership/pkg/logctx"
)

var (
	ErrPlanNotFound     = errors.New("subscription plan not found")
	ErrBindingNotFound  = errors.New("user subscription not found")
	ErrDuplicateBinding = errors.New("duplicate subscription attempt")
	ErrInvalidPlan      = errors.New("invalid subscription plan")
)

// Service is the subscription registry and reconciler. It keeps a user's
// group membership in agreement with the validity of their bindings.
type Service struct {
	cfg  *config.Config
	repo store.Repository
	log  *zap.SugaredLogger

	gracePeriod int
	loc         *time.Location
	now         func() time.Time

	mu         sync.RWMutex
	validators []ChangeValidator
}

func NewService(cfg *config.Config, repo store.Repository, log *zap.SugaredLogger, validators ...ChangeValidator) (*Service, error) {
	if cfg == nil {
		cfg = &config.Config{Subscription: config.SubscriptionConfig{GracePeriodDays: config.DefaultGracePeriodDays}}
	}
	loc, err := cfg.Subscription.LoadLocation()
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:         cfg,
		repo:        repo,
		log:         log,
		gracePeriod: cfg.Subscription.GracePeriod(),
		loc:         loc,
		now:         time.Now,
		validators:  validators,
	}, nil
}

// SetClock replaces the clock used to determine today.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GracePeriodDays returns the configured grace period.
func (s *Service) GracePeriodDays() int {
	return s.gracePeriod
}

// Today returns the current date in the configured location.
func (s *Service) Today() time.Time {
	return dateutil.Today(s.now(), s.loc)
}

// Logger returns the service's base logger.
func (s *Service) Logger() *zap.SugaredLogger {
	return s.log
}

func (s *Service) logger(ctx context.Context) *zap.SugaredLogger {
	return logctx.FromCtx(ctx, s.log)
}

// GetPlan loads a plan by id.
func (s *Service) GetPlan(ctx context.Context, id string) (*models.Subscription, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, planErr(err, id)
	}
	return plan, nil
}

// GetPlanByRef loads a plan by id, falling back to sku.
func (s *Service) GetPlanByRef(ctx context.Context, ref string) (*models.Subscription, error) {
	plan, err := s.repo.GetPlan(ctx, ref)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	plan, err = s.repo.GetPlanBySku(ctx, ref)
	if err != nil {
		return nil, planErr(err, ref)
	}
	return plan, nil
}

// planOf returns the binding's plan, loading it when not preloaded.
func (s *Service) planOf(ctx context.Context, repo store.Repository, us *models.UserSubscription) (*models.Subscription, error) {
	if us.Subscription != nil && us.Subscription.ID == us.SubscriptionID {
		return us.Subscription, nil
	}
	plan, err := repo.GetPlan(ctx, us.SubscriptionID)
	if err != nil {
		return nil, planErr(err, us.SubscriptionID)
	}
	us.Subscription = plan
	return plan, nil
}

func planErr(err error, ref string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, ref)
	}
	return fmt.Errorf("failed to get plan %s: %w", ref, err)
}

func bindingErr(err error, ref string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrBindingNotFound, ref)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrDuplicateBinding, err)
	}
	return fmt.Errorf("failed to access user subscription %s: %w", ref, err)
}
