package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/pkg/tool"
	"github.com/fatflowers/membership/pkg/types"
)

// GormRepository implements Repository on gorm. The *gorm.DB must be opened
// with TranslateError so that unique violations surface as gorm.ErrDuplicatedKey.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var Module = fx.Options(
	fx.Provide(
		NewGormRepository,
		func(r *GormRepository) Repository { return r },
	),
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// Plans

func (r *GormRepository) GetPlan(ctx context.Context, id string) (*models.Subscription, error) {
	var plan models.Subscription
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (r *GormRepository) GetPlanBySku(ctx context.Context, sku string) (*models.Subscription, error) {
	var plan models.Subscription
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&plan).Error; err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (r *GormRepository) FindPlansByGroups(ctx context.Context, groupIDs []string) ([]*models.Subscription, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var plans []*models.Subscription
	if err := r.db.WithContext(ctx).
		Where("group_id IN ?", groupIDs).
		Order("created_at asc, id asc").
		Find(&plans).Error; err != nil {
		return nil, translate(err)
	}
	return plans, nil
}

func (r *GormRepository) ListPlans(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Subscription, int64, error) {
	var rows []*models.Subscription
	total, err := r.scan(ctx, &models.Subscription{}, filters, page, &rows)
	return rows, total, err
}

func (r *GormRepository) SavePlan(ctx context.Context, plan *models.Subscription) error {
	if plan.ID == "" {
		plan.ID = tool.GenerateUUIDV7()
		return translate(r.db.WithContext(ctx).Select("*").Create(plan).Error)
	}
	return translate(r.db.WithContext(ctx).Save(plan).Error)
}

// Bindings

func (r *GormRepository) bindings(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.UserSubscription{}).Preload("Subscription")
}

func (r *GormRepository) GetBinding(ctx context.Context, id string) (*models.UserSubscription, error) {
	var us models.UserSubscription
	if err := r.bindings(ctx).Where("id = ?", id).First(&us).Error; err != nil {
		return nil, translate(err)
	}
	return &us, nil
}

func (r *GormRepository) GetBindingForUpdate(ctx context.Context, id string) (*models.UserSubscription, error) {
	var us models.UserSubscription
	if err := r.bindings(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&us).Error; err != nil {
		return nil, translate(err)
	}
	return &us, nil
}

func (r *GormRepository) FindBinding(ctx context.Context, userID, subscriptionID string) (*models.UserSubscription, error) {
	var us models.UserSubscription
	if err := r.bindings(ctx).
		Where("user_id = ? AND subscription_id = ?", userID, subscriptionID).
		First(&us).Error; err != nil {
		return nil, translate(err)
	}
	return &us, nil
}

func (r *GormRepository) FindBindingByProfile(ctx context.Context, profileID string) (*models.UserSubscription, error) {
	var us models.UserSubscription
	if err := r.bindings(ctx).Where("payment_profile_id = ?", profileID).First(&us).Error; err != nil {
		return nil, translate(err)
	}
	return &us, nil
}

func (r *GormRepository) ListUserBindings(ctx context.Context, userID string) ([]*models.UserSubscription, error) {
	var rows []*models.UserSubscription
	if err := r.bindings(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *GormRepository) ListBindingsExpiringBefore(ctx context.Context, day time.Time) ([]*models.UserSubscription, error) {
	var rows []*models.UserSubscription
	if err := r.bindings(ctx).
		Where("expires IS NOT NULL AND expires < ?", day).
		Order("expires asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *GormRepository) ListBindings(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.UserSubscription, int64, error) {
	var rows []*models.UserSubscription
	total, err := r.scan(ctx, &models.UserSubscription{}, filters, page, &rows, "Subscription")
	return rows, total, err
}

func (r *GormRepository) CreateBinding(ctx context.Context, us *models.UserSubscription) error {
	if us.ID == "" {
		us.ID = tool.GenerateUUIDV7()
	}
	// Select("*") writes a false Active instead of the column default.
	return translate(r.db.WithContext(ctx).Select("*").Omit(clause.Associations).Create(us).Error)
}

func (r *GormRepository) SaveBinding(ctx context.Context, us *models.UserSubscription) error {
	if us.ID == "" {
		return r.CreateBinding(ctx, us)
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(us).Error)
}

func (r *GormRepository) DeleteBinding(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.UserSubscription{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Groups

func (r *GormRepository) AddUserToGroup(ctx context.Context, userID, groupID string) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserGroup{UserID: userID, GroupID: groupID}).Error)
}

func (r *GormRepository) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	return translate(r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&models.UserGroup{}).Error)
}

func (r *GormRepository) IsUserInGroup(ctx context.Context, userID, groupID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserGroup{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *GormRepository) UserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.UserGroup{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error; err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

// Audit

func (r *GormRepository) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = tool.GenerateUUIDV7()
	}
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *GormRepository) FindPaymentTransaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.WithContext(ctx).Where("payment_txn_id = ?", txnID).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *GormRepository) ListTransactions(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Transaction, int64, error) {
	var rows []*models.Transaction
	total, err := r.scan(ctx, &models.Transaction{}, filters, page, &rows)
	return rows, total, err
}

// scan implements paginated admin listing with filters.
func (r *GormRepository) scan(ctx context.Context, model any, filters []*types.CommonFilter, page types.Page, dest any, preloads ...string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(model)
	if len(filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	q := tx.Limit(page.Size)
	if page.From > 0 {
		q = q.Offset(page.From)
	}
	if page.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: page.SortBy}, Desc: page.SortOrder != "asc"}}})
	}
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Find(dest).Error; err != nil {
		return 0, fmt.Errorf("failed to list rows: %w", err)
	}
	return total, nil
}
