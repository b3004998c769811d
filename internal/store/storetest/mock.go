package storetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/types"
)

// MockRepository is a testify mock of store.Repository. Transaction records
// the call and then runs fn against the mock itself.
type MockRepository struct {
	mock.Mock
}

var _ store.Repository = (*MockRepository)(nil)

func (m *MockRepository) Transaction(ctx context.Context, fn func(repo store.Repository) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockRepository) GetPlan(ctx context.Context, id string) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) GetPlanBySku(ctx context.Context, sku string) (*models.Subscription, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) FindPlansByGroups(ctx context.Context, groupIDs []string) ([]*models.Subscription, error) {
	args := m.Called(ctx, groupIDs)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockRepository) ListPlans(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Subscription, int64, error) {
	args := m.Called(ctx, filters, page)
	return args.Get(0).([]*models.Subscription), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) SavePlan(ctx context.Context, plan *models.Subscription) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockRepository) GetBinding(ctx context.Context, id string) (*models.UserSubscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}

func (m *MockRepository) GetBindingForUpdate(ctx context.Context, id string) (*models.UserSubscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}

func (m *MockRepository) FindBinding(ctx context.Context, userID, subscriptionID string) (*models.UserSubscription, error) {
	args := m.Called(ctx, userID, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}

func (m *MockRepository) FindBindingByProfile(ctx context.Context, profileID string) (*models.UserSubscription, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}

func (m *MockRepository) ListUserBindings(ctx context.Context, userID string) ([]*models.UserSubscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.UserSubscription), args.Error(1)
}

func (m *MockRepository) ListBindingsExpiringBefore(ctx context.Context, day time.Time) ([]*models.UserSubscription, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]*models.UserSubscription), args.Error(1)
}

func (m *MockRepository) ListBindings(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.UserSubscription, int64, error) {
	args := m.Called(ctx, filters, page)
	return args.Get(0).([]*models.UserSubscription), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CreateBinding(ctx context.Context, us *models.UserSubscription) error {
	args := m.Called(ctx, us)
	return args.Error(0)
}

func (m *MockRepository) SaveBinding(ctx context.Context, us *models.UserSubscription) error {
	args := m.Called(ctx, us)
	return args.Error(0)
}

func (m *MockRepository) DeleteBinding(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) AddUserToGroup(ctx context.Context, userID, groupID string) error {
	args := m.Called(ctx, userID, groupID)
	return args.Error(0)
}

func (m *MockRepository) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	args := m.Called(ctx, userID, groupID)
	return args.Error(0)
}

func (m *MockRepository) IsUserInGroup(ctx context.Context, userID, groupID string) (bool, error) {
	args := m.Called(ctx, userID, groupID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) FindPaymentTransaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	args := m.Called(ctx, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockRepository) ListTransactions(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, filters, page)
	return args.Get(0).([]*models.Transaction), args.Get(1).(int64), args.Error(2)
}
