package notification_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	subscription "github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/internal/app/service/transaction"
	models "github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/pkg/config"
	"github.com/fatflowers/membership/pkg/logctx"
	"github.com/fatflowers/membership/pkg/metrics"
	"github.com/fatflowers/membership/pkg/tool"
	"github.com/fatflowers/membership/pkg/types"
)

var ErrUnsupportedNotification = errors.New("unsupported notification")

// NotificationRecorder persists the raw notification and its handling result.
type NotificationRecorder interface {
	Save(ctx context.Context, log *models.PaymentNotificationLog)
}

type NotificationHandler struct {
	cfg      *config.Config
	notifSvc NotificationRecorder
	subSvc   *subscription.Service
	txnSvc   transaction.TransactionManager
	Logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewNotificationHandler(cfg *config.Config, notif NotificationRecorder, sub *subscription.Service, txn transaction.TransactionManager, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{cfg: cfg, notifSvc: notif, subSvc: sub, txnSvc: txn, Logger: log, now: time.Now}
}

// HandleNotification parses the provider's notification from c and applies it.
func (h *NotificationHandler) HandleNotification(c *gin.Context, provider types.PaymentProvider) error {
	var parser NotificationParser
	switch provider {
	case types.PaymentProviderPaypal:
		p, err := GetPaypalNotificationParser(h.cfg, c, h.now())
		if err != nil {
			metrics.NotificationsTotal.WithLabelValues("unknown", "rejected").Inc()
			return err
		}
		parser = p
	default:
		return fmt.Errorf("%w: provider %s", ErrUnsupportedNotification, provider)
	}
	return h.Handle(c.Request.Context(), parser, logctx.TraceID(c.Request.Context()))
}

// Handle records the notification as received, applies it to the user's
// subscription and records the result.
func (h *NotificationHandler) Handle(ctx context.Context, parser NotificationParser, traceID string) (resErr error) {
	log := logctx.FromCtx(ctx, h.Logger)
	notificationID := tool.GenerateUUIDV7()
	txnType := parser.GetTxnType(ctx)

	var userID *string
	if v, err := parser.GetUserID(ctx); err == nil {
		userID = lo.ToPtr(v)
	}
	dataBytes, _ := json.Marshal(parser.GetData(ctx))
	record := func(status models.PaymentNotificationLogStatus, result *datatypes.JSON) *models.PaymentNotificationLog {
		return &models.PaymentNotificationLog{
			ProviderID:       string(parser.GetProvider(ctx)),
			TxnType:          string(txnType),
			TxnID:            parser.GetTransactionID(ctx),
			SubscrID:         parser.GetProfileID(ctx),
			UserID:           userID,
			TraceID:          traceID,
			NotificationID:   notificationID,
			NotificationTime: parser.GetNotificationTime(ctx),
			Data:             datatypes.JSON(dataBytes),
			Result:           result,
			Status:           status,
		}
	}
	h.notifSvc.Save(ctx, record(models.PaymentNotificationLogStatusReceived, nil))

	var outcome string
	defer func() {
		resMap := map[string]any{"outcome": outcome}
		status := models.PaymentNotificationLogStatusHandled
		if resErr != nil {
			resMap["error"] = resErr.Error()
			status = models.PaymentNotificationLogStatusHandleFailed
		}
		resBytes, _ := json.Marshal(resMap)
		h.notifSvc.Save(ctx, record(status, lo.ToPtr(datatypes.JSON(resBytes))))
		metrics.NotificationsTotal.WithLabelValues(string(txnType), string(status)).Inc()
	}()

	ctx = subscription.WithNotificationID(ctx, notificationID)
	outcome, resErr = h.apply(ctx, parser, notificationID)
	if resErr != nil {
		log.Errorw("failed to handle payment notification", "txn_type", txnType, "notification_id", notificationID, "error", resErr)
		return resErr
	}
	log.Infow("payment notification handled", "txn_type", txnType, "notification_id", notificationID, "outcome", outcome)
	return nil
}

func (h *NotificationHandler) apply(ctx context.Context, p NotificationParser, notificationID string) (string, error) {
	switch p.GetTxnType(ctx) {
	case types.IPNTxnTypeSubscrSignup:
		return h.signup(ctx, p)
	case types.IPNTxnTypeSubscrPayment:
		return h.payment(ctx, p)
	case types.IPNTxnTypeSubscrCancel:
		us, err := h.findBinding(ctx, p)
		if err != nil {
			return "", err
		}
		return "cancelled", h.subSvc.Cancel(ctx, us)
	case types.IPNTxnTypeSubscrEot:
		us, err := h.findBinding(ctx, p)
		if err != nil {
			return "", err
		}
		return "end_of_term", h.subSvc.EndOfTerm(ctx, us)
	case types.IPNTxnTypeProfileSuspended, types.IPNTxnTypeProfileCancel:
		us, err := h.findBinding(ctx, p)
		if err != nil {
			return "", err
		}
		status := lo.Ternary(p.GetTxnType(ctx) == types.IPNTxnTypeProfileSuspended, types.ProfileStatusSuspended, types.ProfileStatusCancelled)
		return "profile_" + string(status), h.subSvc.SetProfileStatus(ctx, us, status)
	case types.IPNTxnTypeSubscrModify, types.IPNTxnTypeSubscrFailed:
		req := &transaction.RecordRequest{
			NotificationID: notificationID,
			Event:          types.TransactionEvent(p.GetTxnType(ctx)),
			Comment:        p.GetProfileID(ctx),
		}
		if us, err := h.findBinding(ctx, p); err == nil {
			req.UserID, req.SubscriptionID = us.UserID, us.SubscriptionID
		} else if uid, err := p.GetUserID(ctx); err == nil {
			req.UserID = uid
		}
		if _, err := h.txnSvc.Record(ctx, req); err != nil {
			return "", err
		}
		return "recorded", nil
	}
	return "", fmt.Errorf("%w: txn_type %q", ErrUnsupportedNotification, p.GetTxnType(ctx))
}

func (h *NotificationHandler) signup(ctx context.Context, p NotificationParser) (string, error) {
	us, err := h.findOrCreateBinding(ctx, p)
	if err != nil {
		return "", err
	}
	if err := h.subSvc.ApplySignup(ctx, us, p.GetProfileID(ctx)); err != nil {
		return "", err
	}
	return "subscribed", nil
}

func (h *NotificationHandler) payment(ctx context.Context, p NotificationParser) (string, error) {
	if status := p.GetPaymentStatus(ctx); status != types.IPNPaymentStatusCompleted {
		logctx.FromCtx(ctx, h.Logger).Infow("ignoring incomplete payment", "payment_status", status, "txn_id", p.GetTransactionID(ctx))
		return "ignored", nil
	}
	amount, err := p.GetAmount(ctx)
	if err != nil {
		return "", err
	}
	us, err := h.findOrCreateBinding(ctx, p)
	if err != nil {
		return "", err
	}
	plan := us.Subscription
	if plan == nil {
		if plan, err = h.subSvc.GetPlan(ctx, us.SubscriptionID); err != nil {
			return "", err
		}
	}

	currency := p.GetCurrency(ctx)
	if amount == nil || *amount != plan.Price || (currency != "" && plan.Currency != "" && currency != plan.Currency) {
		comment := fmt.Sprintf("expected %d %s", plan.Price, plan.Currency)
		if err := h.subSvc.Record(ctx, us, types.TransactionEventIncorrectPayment, amount, comment); err != nil {
			return "", err
		}
		return "incorrect_payment", nil
	}

	err = h.subSvc.ApplyPayment(ctx, us, &subscription.Payment{
		ProfileID: p.GetProfileID(ctx),
		TxnID:     p.GetTransactionID(ctx),
		Amount:    amount,
	})
	if errors.Is(err, subscription.ErrDuplicatePayment) {
		logctx.FromCtx(ctx, h.Logger).Infow("ignoring redelivered payment", "txn_id", p.GetTransactionID(ctx), "user_subscription_id", us.ID)
		return "duplicate", nil
	}
	if err != nil {
		return "", err
	}
	return "extended", nil
}

// findBinding resolves the binding by processor profile id, then by user and plan.
func (h *NotificationHandler) findBinding(ctx context.Context, p NotificationParser) (*models.UserSubscription, error) {
	if profileID := p.GetProfileID(ctx); profileID != "" {
		us, err := h.subSvc.FindBindingByProfile(ctx, profileID)
		if err == nil {
			return us, nil
		}
		if !errors.Is(err, subscription.ErrBindingNotFound) {
			return nil, err
		}
	}
	userID, err := p.GetUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: no profile match and %v", subscription.ErrBindingNotFound, err)
	}
	plan, err := h.subSvc.GetPlanByRef(ctx, p.GetPlanRef(ctx))
	if err != nil {
		return nil, err
	}
	return h.subSvc.FindBinding(ctx, userID, plan.ID)
}

// findOrCreateBinding returns the notification's binding, creating it when
// missing.
func (h *NotificationHandler) findOrCreateBinding(ctx context.Context, p NotificationParser) (*models.UserSubscription, error) {
	us, err := h.findBinding(ctx, p)
	if errors.Is(err, subscription.ErrBindingNotFound) {
		userID, uerr := p.GetUserID(ctx)
		if uerr != nil {
			return nil, err
		}
		req := &subscription.CreateBindingRequest{UserID: userID, Plan: p.GetPlanRef(ctx), PaymentProfileID: lo.EmptyableToPtr(p.GetProfileID(ctx))}
		us, err = h.subSvc.CreateBinding(ctx, req)
		if errors.Is(err, subscription.ErrDuplicateBinding) {
			// another notification for the same signup created it first
			us, err = h.findBinding(ctx, p)
		}
	}
	if err != nil {
		return nil, err
	}
	return us, nil
}
