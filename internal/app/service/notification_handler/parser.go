package notification_handler

import (
	"context"
	"time"

	"github.com/fatflowers/membership/pkg/types"
)

// NotificationParser exposes the fields of one provider notification.
type NotificationParser interface {
	GetProvider(ctx context.Context) types.PaymentProvider
	GetNotificationTime(ctx context.Context) time.Time
	GetTxnType(ctx context.Context) types.IPNTxnType
	GetTransactionID(ctx context.Context) string
	GetUserID(ctx context.Context) (string, error)
	// GetPlanRef returns the plan id or sku the notification is for.
	GetPlanRef(ctx context.Context) string
	// GetProfileID returns the processor's recurring profile id.
	GetProfileID(ctx context.Context) string
	// GetAmount returns the gross amount in minor units, nil when absent.
	GetAmount(ctx context.Context) (*int64, error)
	GetCurrency(ctx context.Context) string
	GetPaymentStatus(ctx context.Context) string
	GetData(ctx context.Context) any
}
