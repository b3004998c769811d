package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/membership/internal/models"
)

func (f *fixture) stored(t *testing.T, id string) *models.UserSubscription {
	t.Helper()
	us, err := f.mem.GetBinding(context.Background(), id)
	require.NoError(t, err)
	return us
}

func TestApplyPayment(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 3, 15), true, false, false)

	require.NoError(t, f.svc.ApplyPayment(ctx, us, &Payment{ProfileID: "I-1", TxnID: "T-1", Amount: lo.ToPtr[int64](999)}))
	assert.Equal(t, day(2024, 4, 15), us.Expires)
	assert.Equal(t, lo.ToPtr("I-1"), us.PaymentProfileID)

	stored := f.stored(t, us.ID)
	assert.Equal(t, day(2024, 4, 15), stored.Expires)
	assert.Equal(t, lo.ToPtr("I-1"), stored.PaymentProfileID)
	assert.True(t, f.mem.InGroup("u1", "group-gold"))

	txns := f.mem.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, "subscription payment", txns[0].Event)
	assert.Equal(t, lo.ToPtr("T-1"), txns[0].PaymentTxnID)
	assert.Equal(t, "T-1", txns[0].Comment)
	assert.EqualValues(t, 999, *txns[0].Amount)
}

func TestApplyPayment_SameTxnIDAppliedOnce(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 3, 15), true, false, false)
	payment := &Payment{TxnID: "T-1", Amount: lo.ToPtr[int64](999)}

	require.NoError(t, f.svc.ApplyPayment(ctx, us, payment))
	err := f.svc.ApplyPayment(ctx, us, payment)
	require.ErrorIs(t, err, ErrDuplicatePayment)

	assert.Equal(t, day(2024, 4, 15), f.stored(t, us.ID).Expires)
	assert.Equal(t, []string{"subscription payment"}, f.mem.Events())
}

func TestApplyPayment_WithoutTxnIDNotDeduplicated(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 3, 15), true, false, false)

	require.NoError(t, f.svc.ApplyPayment(ctx, us, &Payment{}))
	require.NoError(t, f.svc.ApplyPayment(ctx, us, &Payment{}))
	assert.Equal(t, day(2024, 5, 15), f.stored(t, us.ID).Expires)
	for _, txn := range f.mem.Transactions() {
		assert.Nil(t, txn.PaymentTxnID)
	}
}

func TestApplyPayment_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t, 2)
	us := f.bind(t, "u1", f.gold, day(2024, 3, 15), true, false, false)
	f.mem.FailOn["AppendTransaction"] = errors.New("disk full")

	err := f.svc.ApplyPayment(context.Background(), us, &Payment{ProfileID: "I-1", TxnID: "T-1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicatePayment)

	stored := f.stored(t, us.ID)
	assert.Equal(t, day(2024, 3, 15), stored.Expires)
	assert.Nil(t, stored.PaymentProfileID)
	assert.False(t, f.mem.InGroup("u1", "group-gold"))
	assert.Empty(t, f.mem.Events())
	assert.Equal(t, day(2024, 3, 15), us.Expires)
}

func TestApplyPayment_LocksRow(t *testing.T) {
	f := newFixture(t, 2)
	us := f.bind(t, "u1", f.gold, day(2024, 3, 15), true, false, false)

	require.NoError(t, f.svc.ApplyPayment(context.Background(), us, &Payment{TxnID: "T-1"}))
	assert.Equal(t, 1, f.mem.Calls["Transaction"])
	assert.Equal(t, 1, f.mem.Calls["GetBindingForUpdate"])
}

func TestApplySignup(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.silver, day(2024, 3, 15), true, false, false)

	require.NoError(t, f.svc.ApplySignup(ctx, us, "I-S"))
	assert.Equal(t, day(2024, 3, 22), f.stored(t, us.ID).Expires)
	assert.Equal(t, lo.ToPtr("I-S"), us.PaymentProfileID)
	assert.True(t, f.mem.InGroup("u1", "group-silver"))
	assert.Equal(t, []string{"new subscription"}, f.mem.Events())
	assert.Nil(t, f.mem.Transactions()[0].PaymentTxnID)
}

func TestApplySignup_KeepsExistingProfile(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.silver, day(2024, 3, 15), true, false, false)
	require.NoError(t, f.svc.ApplySignup(ctx, us, "I-FIRST"))

	require.NoError(t, f.svc.ApplySignup(ctx, us, "I-SECOND"))
	assert.Equal(t, lo.ToPtr("I-FIRST"), f.stored(t, us.ID).PaymentProfileID)
}

func TestApplySignup_MissingBinding(t *testing.T) {
	f := newFixture(t, 2)
	err := f.svc.ApplySignup(context.Background(), &models.UserSubscription{ID: "missing", UserID: "u1"}, "")
	require.ErrorIs(t, err, ErrBindingNotFound)
	assert.Empty(t, f.mem.Events())
}
