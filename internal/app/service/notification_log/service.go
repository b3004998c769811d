package notification_log

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/pkg/logctx"
	"github.com/fatflowers/membership/pkg/tool"
)

type Service struct {
	log     *zap.SugaredLogger
	write   func(ctx context.Context, log *models.PaymentNotificationLog) error
	pending sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{
		log: log,
		write: func(ctx context.Context, l *models.PaymentNotificationLog) error {
			return db.WithContext(ctx).Save(l).Error
		},
	}
}

// Save asynchronously persists a payment notification record. Nil input is
// ignored. The write outlives the request context.
func (s *Service) Save(ctx context.Context, log *models.PaymentNotificationLog) {
	if log == nil {
		return
	}
	if log.ID == "" {
		log.ID = tool.GenerateUUIDV7()
	}
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.write(ctx, log); err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to save notification log",
				"notification_id", log.NotificationID, "status", log.Status, "error", err)
		}
	}()
}

// Wait blocks until every pending Save has finished or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
