// Package store defines the persistence ports used by the subscription
// reconciler and their gorm implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/pkg/types"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Plans reads and writes subscription plans.
type Plans interface {
	GetPlan(ctx context.Context, id string) (*models.Subscription, error)
	GetPlanBySku(ctx context.Context, sku string) (*models.Subscription, error)
	// FindPlansByGroups returns plans granting any of groupIDs, oldest first.
	FindPlansByGroups(ctx context.Context, groupIDs []string) ([]*models.Subscription, error)
	ListPlans(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Subscription, int64, error)
	SavePlan(ctx context.Context, plan *models.Subscription) error
}

// Bindings reads and writes user subscriptions. Returned bindings have their
// Subscription loaded.
type Bindings interface {
	GetBinding(ctx context.Context, id string) (*models.UserSubscription, error)
	// GetBindingForUpdate loads a binding and locks its row until the
	// surrounding transaction ends.
	GetBindingForUpdate(ctx context.Context, id string) (*models.UserSubscription, error)
	FindBinding(ctx context.Context, userID, subscriptionID string) (*models.UserSubscription, error)
	FindBindingByProfile(ctx context.Context, profileID string) (*models.UserSubscription, error)
	ListUserBindings(ctx context.Context, userID string) ([]*models.UserSubscription, error)
	// ListBindingsExpiringBefore returns bindings whose raw expires is strictly before day.
	ListBindingsExpiringBefore(ctx context.Context, day time.Time) ([]*models.UserSubscription, error)
	ListBindings(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.UserSubscription, int64, error)
	CreateBinding(ctx context.Context, us *models.UserSubscription) error
	SaveBinding(ctx context.Context, us *models.UserSubscription) error
	DeleteBinding(ctx context.Context, id string) error
}

// Groups is the auth system's group membership.
type Groups interface {
	AddUserToGroup(ctx context.Context, userID, groupID string) error
	RemoveUserFromGroup(ctx context.Context, userID, groupID string) error
	IsUserInGroup(ctx context.Context, userID, groupID string) (bool, error)
	UserGroupIDs(ctx context.Context, userID string) ([]string, error)
}

// Audit appends and lists Transaction records.
type Audit interface {
	AppendTransaction(ctx context.Context, t *models.Transaction) error
	// FindPaymentTransaction returns the Transaction recording processor
	// payment txnID.
	FindPaymentTransaction(ctx context.Context, txnID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Transaction, int64, error)
}

// Repository is the full persistence surface. Transaction runs fn against a
// Repository bound to one database transaction.
type Repository interface {
	Plans
	Bindings
	Groups
	Audit
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

// Filterable columns per entity for admin list requests.
var (
	PlanFilterFields        = []string{"id", "sku", "title", "group_id", "available", "recurrence_unit", "created_at"}
	BindingFilterFields     = []string{"id", "user_id", "subscription_id", "payment_profile_id", "expires", "active", "cancelled", "created_at", "updated_at"}
	TransactionFilterFields = []string{"id", "timestamp", "subscription_id", "user_id", "notification_id", "event", "amount", "payment_txn_id"}
)
