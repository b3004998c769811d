package transaction

import (
	"context"

	models "github.com/fatflowers/membership/internal/models"
	types "github.com/fatflowers/membership/pkg/types"
)

// RecordRequest describes an audit record not tied to a reconciliation,
// e.g. an ignored or rejected payment notification.
type RecordRequest struct {
	UserID         string                 `json:"user_id"`
	SubscriptionID string                 `json:"subscription_id"`
	NotificationID string                 `json:"notification_id"`
	Event          types.TransactionEvent `json:"event"`
	Amount         *int64                 `json:"amount"`
	Comment        string                 `json:"comment"`
	Extra          map[string]any         `json:"extra"`
}

// TransactionManager appends to and reads the subscription audit log.
type TransactionManager interface {
	// Record appends one Transaction.
	Record(ctx context.Context, req *RecordRequest) (*models.Transaction, error)
	// Scan transactions (used by admin list pages), newest first by default.
	ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error)
}

// Scan transaction request/response.
type ScanTransactionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanTransactionsResponse struct {
	Items []*models.Transaction `json:"items"`
	Total int64                 `json:"total"`
}
