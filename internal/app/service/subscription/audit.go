package subscription

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/types"
)

type notificationIDKey struct{}

// WithNotificationID links Transactions recorded under ctx to the payment
// notification that caused them.
func WithNotificationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, notificationIDKey{}, id)
}

func notificationID(ctx context.Context) *string {
	if id, ok := ctx.Value(notificationIDKey{}).(string); ok && id != "" {
		return &id
	}
	return nil
}

// Record appends a Transaction for us outside any reconciliation.
func (s *Service) Record(ctx context.Context, us *models.UserSubscription, event types.TransactionEvent, amount *int64, comment string) error {
	return s.record(ctx, s.repo, us, event, amount, comment)
}

func (s *Service) record(ctx context.Context, repo store.Repository, us *models.UserSubscription, event types.TransactionEvent, amount *int64, comment string) error {
	t := newTransaction(ctx, us, event, amount, comment)
	if err := repo.AppendTransaction(ctx, t); err != nil {
		return fmt.Errorf("failed to append transaction %q: %w", event, err)
	}
	return nil
}

func newTransaction(ctx context.Context, us *models.UserSubscription, event types.TransactionEvent, amount *int64, comment string) *models.Transaction {
	t := &models.Transaction{
		UserID:         lo.ToPtr(us.UserID),
		NotificationID: notificationID(ctx),
		Event:          string(event),
		Amount:         amount,
		Comment:        comment,
	}
	if us.SubscriptionID != "" {
		t.SubscriptionID = lo.ToPtr(us.SubscriptionID)
	}
	return t
}
