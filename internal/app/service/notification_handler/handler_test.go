package notification_handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	subscription "github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/internal/app/service/transaction"
	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store/storetest"
	"github.com/fatflowers/membership/pkg/config"
	"github.com/fatflowers/membership/pkg/types"
)

var testNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type fakeRecorder struct {
	mu   sync.Mutex
	logs []*models.PaymentNotificationLog
}

func (r *fakeRecorder) Save(_ context.Context, log *models.PaymentNotificationLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
}

type fixture struct {
	h    *NotificationHandler
	mem  *storetest.Memory
	rec  *fakeRecorder
	cfg  *config.Config
	gold *models.Subscription
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := storetest.NewMemory()
	mem.SetClock(func() time.Time { return testNow })
	cfg := &config.Config{
		Subscription: config.SubscriptionConfig{GracePeriodDays: 2},
		Paypal:       config.PaypalConfig{ReceiverEmail: "shop@example.com"},
	}
	log := zap.NewNop().Sugar()
	sub, err := subscription.NewService(cfg, mem, log)
	require.NoError(t, err)
	sub.SetClock(func() time.Time { return testNow })

	gold := &models.Subscription{Title: "Gold", Sku: "gold", Price: 999, Currency: "USD", Available: true,
		RecurrencePeriod: lo.ToPtr(1), RecurrenceUnit: types.TimeUnitMonth, GroupID: "group-gold"}
	silver := &models.Subscription{Title: "Silver", Sku: "silver", Price: 499, Currency: "USD", Available: true,
		TrialPeriod: lo.ToPtr(7), TrialUnit: types.TimeUnitDay,
		RecurrencePeriod: lo.ToPtr(1), RecurrenceUnit: types.TimeUnitMonth, GroupID: "group-silver"}
	require.NoError(t, mem.SavePlan(ctx, gold))
	require.NoError(t, mem.SavePlan(ctx, silver))

	rec := &fakeRecorder{}
	h := NewNotificationHandler(cfg, rec, sub, transaction.NewService(log, mem), log)
	h.now = func() time.Time { return testNow }
	return &fixture{h: h, mem: mem, rec: rec, cfg: cfg, gold: gold}
}

func (f *fixture) handle(t *testing.T, fields map[string]string) error {
	t.Helper()
	form := url.Values{"receiver_email": {"shop@example.com"}}
	for k, v := range fields {
		form.Set(k, v)
	}
	p, err := NewPaypalNotificationParser(f.cfg, form, testNow)
	require.NoError(t, err)
	return f.h.Handle(context.Background(), p, "trace-1")
}

func (f *fixture) binding(t *testing.T, profileID string) *models.UserSubscription {
	t.Helper()
	us, err := f.mem.FindBindingByProfile(context.Background(), profileID)
	require.NoError(t, err)
	return us
}

func date(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func TestHandle_Signup(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_signup", "custom": "u1", "item_number": "silver", "subscr_id": "I-SIGNUP",
	}))

	us := f.binding(t, "I-SIGNUP")
	assert.Equal(t, "u1", us.UserID)
	assert.Equal(t, date(2024, 3, 22), us.Expires)
	assert.True(t, f.mem.InGroup("u1", "group-silver"))
	assert.Equal(t, []string{"new usersubscription", "new subscription"}, f.mem.Events())

	require.Len(t, f.rec.logs, 2)
	assert.Equal(t, models.PaymentNotificationLogStatusReceived, f.rec.logs[0].Status)
	assert.Equal(t, models.PaymentNotificationLogStatusHandled, f.rec.logs[1].Status)
	assert.Equal(t, f.rec.logs[0].NotificationID, f.rec.logs[1].NotificationID)
	assert.Equal(t, "subscr_signup", f.rec.logs[0].TxnType)
	assert.Equal(t, "trace-1", f.rec.logs[0].TraceID)
	assert.Contains(t, string(f.rec.logs[0].Data), "I-SIGNUP")

	for _, txn := range f.mem.Transactions() {
		require.NotNil(t, txn.NotificationID)
		assert.Equal(t, f.rec.logs[0].NotificationID, *txn.NotificationID)
	}
}

func TestHandle_Payment(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "custom": "u1", "item_number": "gold", "subscr_id": "I-PAY",
		"payment_status": "Completed", "mc_gross": "9.99", "mc_currency": "USD", "txn_id": "T-1",
	}))

	us := f.binding(t, "I-PAY")
	assert.Equal(t, date(2024, 4, 15), us.Expires)
	assert.True(t, f.mem.InGroup("u1", "group-gold"))
	assert.Equal(t, []string{"new usersubscription", "subscription payment"}, f.mem.Events())
	txns := f.mem.Transactions()
	require.NotNil(t, txns[1].Amount)
	assert.EqualValues(t, 999, *txns[1].Amount)

	// the next month's payment extends from the stored expiry
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "subscr_id": "I-PAY",
		"payment_status": "Completed", "mc_gross": "9.99", "mc_currency": "USD", "txn_id": "T-2",
	}))
	assert.Equal(t, date(2024, 5, 15), f.binding(t, "I-PAY").Expires)
}

func TestHandle_PaymentRedelivered(t *testing.T) {
	f := newFixture(t)
	form := map[string]string{
		"txn_type": "subscr_payment", "custom": "u1", "item_number": "gold", "subscr_id": "I-DUP",
		"payment_status": "Completed", "mc_gross": "9.99", "mc_currency": "USD", "txn_id": "T-1",
	}
	require.NoError(t, f.handle(t, form))
	require.NoError(t, f.handle(t, form))

	assert.Equal(t, date(2024, 4, 15), f.binding(t, "I-DUP").Expires)
	assert.Equal(t, []string{"new usersubscription", "subscription payment"}, f.mem.Events())
	last := f.rec.logs[len(f.rec.logs)-1]
	assert.Equal(t, models.PaymentNotificationLogStatusHandled, last.Status)
	assert.Contains(t, string(*last.Result), "duplicate")
}

func TestHandle_PaymentRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "custom": "u1", "item_number": "gold", "subscr_id": "I-FAIL",
		"payment_status": "Completed", "mc_gross": "9.99", "mc_currency": "USD", "txn_id": "T-1",
	}))
	f.mem.FailOn["AppendTransaction"] = errors.New("disk full")

	err := f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "subscr_id": "I-FAIL",
		"payment_status": "Completed", "mc_gross": "9.99", "mc_currency": "USD", "txn_id": "T-2",
	})
	require.Error(t, err)
	assert.Equal(t, date(2024, 4, 15), f.binding(t, "I-FAIL").Expires)
	assert.Equal(t, []string{"new usersubscription", "subscription payment"}, f.mem.Events())
	assert.Equal(t, models.PaymentNotificationLogStatusHandleFailed, f.rec.logs[len(f.rec.logs)-1].Status)

	// the processor retries once storage recovers
	delete(f.mem.FailOn, "AppendTransaction")
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "subscr_id": "I-FAIL",
		"payment_status": "Completed", "mc_gross": "9.99", "mc_currency": "USD", "txn_id": "T-2",
	}))
	assert.Equal(t, date(2024, 5, 15), f.binding(t, "I-FAIL").Expires)
}

func TestHandle_IncorrectPayment(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "custom": "u1", "item_number": "gold", "subscr_id": "I-LOW",
		"payment_status": "Completed", "mc_gross": "5.00", "mc_currency": "USD",
	}))

	us := f.binding(t, "I-LOW")
	assert.Equal(t, date(2024, 3, 15), us.Expires)
	assert.False(t, f.mem.InGroup("u1", "group-gold"))
	assert.Equal(t, []string{"new usersubscription", "incorrect payment"}, f.mem.Events())
	assert.Equal(t, "expected 999 USD", f.mem.Transactions()[1].Comment)
}

func TestHandle_IncompletePaymentIgnored(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "custom": "u1", "item_number": "gold", "subscr_id": "I-PEND",
		"payment_status": "Pending", "mc_gross": "9.99",
	}))
	assert.Empty(t, f.mem.Events())
	assert.Contains(t, string(*f.rec.logs[1].Result), "ignored")
}

func TestHandle_CancelAndEndOfTerm(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "custom": "u1", "item_number": "gold", "subscr_id": "I-C",
		"payment_status": "Completed", "mc_gross": "9.99",
	}))

	require.NoError(t, f.handle(t, map[string]string{"txn_type": "subscr_cancel", "subscr_id": "I-C"}))
	us := f.binding(t, "I-C")
	assert.True(t, us.Cancelled)
	assert.True(t, f.mem.InGroup("u1", "group-gold"))

	require.NoError(t, f.handle(t, map[string]string{"txn_type": "subscr_eot", "subscr_id": "I-C"}))
	assert.Equal(t, []string{"new usersubscription", "subscription payment", "cancel subscription", "subscription eot"}, f.mem.Events())
}

func TestHandle_ProfileStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle(t, map[string]string{
		"txn_type": "subscr_payment", "custom": "u1", "item_number": "gold", "subscr_id": "I-P",
		"payment_status": "Completed", "mc_gross": "9.99",
	}))

	require.NoError(t, f.handle(t, map[string]string{"txn_type": "recurring_payment_suspended", "subscr_id": "I-P"}))
	us := f.binding(t, "I-P")
	assert.False(t, us.Active)
	assert.False(t, f.mem.InGroup("u1", "group-gold"))

	require.NoError(t, f.handle(t, map[string]string{"txn_type": "recurring_payment_profile_cancel", "subscr_id": "I-P"}))
	us = f.binding(t, "I-P")
	assert.True(t, us.Cancelled)
	assert.Contains(t, string(*f.rec.logs[len(f.rec.logs)-1].Result), "profile_cancelled")
}

func TestHandle_ModifyAndFailedAreRecorded(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.handle(t, map[string]string{"txn_type": "subscr_modify", "custom": "u9", "subscr_id": "I-UNKNOWN", "item_number": "gold"}))
	require.NoError(t, f.handle(t, map[string]string{"txn_type": "subscr_failed", "custom": "u9", "subscr_id": "I-UNKNOWN", "item_number": "gold"}))

	assert.Equal(t, []string{"subscr_modify", "subscr_failed"}, f.mem.Events())
	txn := f.mem.Transactions()[0]
	require.NotNil(t, txn.UserID)
	assert.Equal(t, "u9", *txn.UserID)
	assert.Nil(t, txn.SubscriptionID)
}

func TestHandle_Unsupported(t *testing.T) {
	f := newFixture(t)
	err := f.handle(t, map[string]string{"txn_type": "web_accept", "custom": "u1"})
	require.ErrorIs(t, err, ErrUnsupportedNotification)
	require.Len(t, f.rec.logs, 2)
	assert.Equal(t, models.PaymentNotificationLogStatusHandleFailed, f.rec.logs[1].Status)
}

func TestHandle_CancelWithoutBinding(t *testing.T) {
	f := newFixture(t)
	err := f.handle(t, map[string]string{"txn_type": "subscr_cancel", "subscr_id": "I-NONE"})
	require.ErrorIs(t, err, subscription.ErrBindingNotFound)
}

func TestHandleNotification_Gin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)

	form := url.Values{
		"txn_type": {"subscr_signup"}, "custom": {"u1"}, "item_number": {"gold"},
		"subscr_id": {"I-GIN"}, "receiver_email": {"SHOP@example.com"},
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payment/webhook/paypal", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.NoError(t, f.h.HandleNotification(c, types.PaymentProviderPaypal))
	assert.True(t, f.mem.InGroup("u1", "group-gold"))

	require.ErrorIs(t, f.h.HandleNotification(c, types.PaymentProviderInner), ErrUnsupportedNotification)
}

func TestNewPaypalNotificationParser(t *testing.T) {
	cfg := &config.Config{Paypal: config.PaypalConfig{ReceiverEmail: "shop@example.com"}}

	_, err := NewPaypalNotificationParser(cfg, url.Values{"txn_type": {"subscr_signup"}, "receiver_email": {"evil@example.com"}}, testNow)
	require.ErrorIs(t, err, ErrReceiverMismatch)

	_, err = NewPaypalNotificationParser(cfg, url.Values{"receiver_email": {"shop@example.com"}}, testNow)
	require.Error(t, err)

	p, err := NewPaypalNotificationParser(nil, url.Values{
		"txn_type": {"subscr_payment"}, "payment_date": {"08:30:00 Mar 14, 2024 UTC"}, "mc_gross": {"12.5"},
	}, testNow)
	require.NoError(t, err)
	ctx := context.Background()
	assert.Equal(t, time.Date(2024, 3, 14, 8, 30, 0, 0, time.UTC), p.GetNotificationTime(ctx).UTC())
	amount, err := p.GetAmount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1250, *amount)
	_, err = p.GetUserID(ctx)
	require.Error(t, err)

	p, err = NewPaypalNotificationParser(nil, url.Values{"txn_type": {"subscr_cancel"}, "payment_date": {"garbage"}}, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, p.GetNotificationTime(ctx))
	amount, err = p.GetAmount(ctx)
	require.NoError(t, err)
	assert.Nil(t, amount)
}

func TestParseMinorUnits(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"9.99", 999, false},
		{"10", 1000, false},
		{"10.5", 1050, false},
		{"0.07", 7, false},
		{"-4.99", -499, false},
		{" 1.00 ", 100, false},
		{"1.230", 123, false},
		{".50", 50, false},
		{"1.234", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1.-5", 0, true},
		{"--5", 0, true},
		{"9.+9", 0, true},
		{"+9.99", 0, true},
		{"1e2", 0, true},
		{"9.9.9", 0, true},
		{"1,00", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseMinorUnits(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
