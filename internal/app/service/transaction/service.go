package transaction

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	models "github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/logctx"
	types "github.com/fatflowers/membership/pkg/types"
)

type Service struct {
	log   *zap.SugaredLogger
	audit store.Audit
}

func NewService(log *zap.SugaredLogger, audit store.Audit) TransactionManager {
	return &Service{log: log, audit: audit}
}

func (s *Service) Record(ctx context.Context, req *RecordRequest) (*models.Transaction, error) {
	if req == nil || req.Event == "" {
		return nil, fmt.Errorf("event is required")
	}
	t := &models.Transaction{
		UserID:         lo.EmptyableToPtr(req.UserID),
		SubscriptionID: lo.EmptyableToPtr(req.SubscriptionID),
		NotificationID: lo.EmptyableToPtr(req.NotificationID),
		Event:          string(req.Event),
		Amount:         req.Amount,
		Comment:        req.Comment,
	}
	if len(req.Extra) > 0 {
		t.Extra = datatypes.JSONMap(req.Extra)
	}
	if err := s.audit.AppendTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("transaction recorded", "event", t.Event, "user_id", req.UserID, "notification_id", req.NotificationID)
	return t, nil
}

// ScanTransactions implements paginated/admin listing with filters
func (s *Service) ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	for _, f := range req.Filters {
		if err := f.Validate(store.TransactionFilterFields); err != nil {
			return nil, err
		}
	}
	page := types.Page{From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder}
	page.Normalize(store.TransactionFilterFields, "timestamp")

	rows, total, err := s.audit.ListTransactions(ctx, req.Filters, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &ScanTransactionsResponse{Items: rows, Total: total}, nil
}
