package notification_handler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	"github.com/fatflowers/membership/pkg/config"
	"github.com/fatflowers/membership/pkg/types"
)

var ErrReceiverMismatch = errors.New("notification addressed to another receiver")

// paypalDateLayout is the format of payment_date and subscr_date.
const paypalDateLayout = "15:04:05 Jan 02, 2006 MST"

// PaypalIPN holds the fields of a PayPal subscription IPN used here.
type PaypalIPN struct {
	TxnType       string `form:"txn_type" json:"txn_type"`
	TxnID         string `form:"txn_id" json:"txn_id,omitempty"`
	SubscrID      string `form:"subscr_id" json:"subscr_id,omitempty"`
	Custom        string `form:"custom" json:"custom,omitempty"`
	ItemNumber    string `form:"item_number" json:"item_number,omitempty"`
	ItemName      string `form:"item_name" json:"item_name,omitempty"`
	McGross       string `form:"mc_gross" json:"mc_gross,omitempty"`
	McCurrency    string `form:"mc_currency" json:"mc_currency,omitempty"`
	PaymentStatus string `form:"payment_status" json:"payment_status,omitempty"`
	ReceiverEmail string `form:"receiver_email" json:"receiver_email,omitempty"`
	PayerEmail    string `form:"payer_email" json:"payer_email,omitempty"`
	PaymentDate   string `form:"payment_date" json:"payment_date,omitempty"`
	SubscrDate    string `form:"subscr_date" json:"subscr_date,omitempty"`
}

type PaypalNotificationParser struct {
	IPN        *PaypalIPN
	Raw        url.Values
	receivedAt time.Time
}

// GetPaypalNotificationParser parses the IPN form posted to c.
func GetPaypalNotificationParser(cfg *config.Config, c *gin.Context, now time.Time) (*PaypalNotificationParser, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse ipn form: %w", err)
	}
	return NewPaypalNotificationParser(cfg, c.Request.PostForm, now)
}

// NewPaypalNotificationParser maps form onto a PaypalIPN and checks the receiver.
func NewPaypalNotificationParser(cfg *config.Config, form url.Values, now time.Time) (*PaypalNotificationParser, error) {
	var ipn PaypalIPN
	if err := binding.MapFormWithTag(&ipn, form, "form"); err != nil {
		return nil, fmt.Errorf("failed to map ipn form: %w", err)
	}
	if ipn.TxnType == "" {
		return nil, fmt.Errorf("%w: ipn without txn_type", ErrUnsupportedNotification)
	}
	if cfg != nil && cfg.Paypal.ReceiverEmail != "" && !strings.EqualFold(cfg.Paypal.ReceiverEmail, ipn.ReceiverEmail) {
		return nil, fmt.Errorf("%w: %s", ErrReceiverMismatch, ipn.ReceiverEmail)
	}
	return &PaypalNotificationParser{IPN: &ipn, Raw: form, receivedAt: now}, nil
}

func (p *PaypalNotificationParser) GetProvider(ctx context.Context) types.PaymentProvider {
	return types.PaymentProviderPaypal
}

// GetNotificationTime returns the payment or signup date, falling back to
// the time the notification was received.
func (p *PaypalNotificationParser) GetNotificationTime(ctx context.Context) time.Time {
	for _, v := range []string{p.IPN.PaymentDate, p.IPN.SubscrDate} {
		if v == "" {
			continue
		}
		if t, err := time.Parse(paypalDateLayout, v); err == nil {
			return t
		}
	}
	return p.receivedAt
}

func (p *PaypalNotificationParser) GetTxnType(ctx context.Context) types.IPNTxnType {
	return types.IPNTxnType(p.IPN.TxnType)
}

func (p *PaypalNotificationParser) GetTransactionID(ctx context.Context) string {
	return p.IPN.TxnID
}

// GetUserID returns the user id passed through the custom field.
func (p *PaypalNotificationParser) GetUserID(ctx context.Context) (string, error) {
	if p.IPN.Custom == "" {
		return "", fmt.Errorf("custom field is empty")
	}
	return p.IPN.Custom, nil
}

func (p *PaypalNotificationParser) GetPlanRef(ctx context.Context) string {
	return p.IPN.ItemNumber
}

func (p *PaypalNotificationParser) GetProfileID(ctx context.Context) string {
	return p.IPN.SubscrID
}

func (p *PaypalNotificationParser) GetAmount(ctx context.Context) (*int64, error) {
	if p.IPN.McGross == "" {
		return nil, nil
	}
	v, err := parseMinorUnits(p.IPN.McGross)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (p *PaypalNotificationParser) GetCurrency(ctx context.Context) string {
	return p.IPN.McCurrency
}

func (p *PaypalNotificationParser) GetPaymentStatus(ctx context.Context) string {
	return p.IPN.PaymentStatus
}

// GetData returns the full form, preserving fields not mapped onto PaypalIPN.
func (p *PaypalNotificationParser) GetData(ctx context.Context) any {
	if p.Raw == nil {
		return p.IPN
	}
	return p.Raw
}

// parseMinorUnits converts a decimal amount with at most two fraction digits,
// e.g. "9.99", to cents.
func parseMinorUnits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "+eE") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("invalid amount %q: more than two fraction digits", s)
	}
	return d.Shift(2).IntPart(), nil
}
