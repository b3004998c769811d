package transaction

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/membership/internal/store/storetest"
	"github.com/fatflowers/membership/pkg/types"
)

func TestRecord(t *testing.T) {
	mem := storetest.NewMemory()
	svc := NewService(zap.NewNop().Sugar(), mem)
	ctx := context.Background()

	got, err := svc.Record(ctx, &RecordRequest{
		UserID:         "u1",
		NotificationID: "n1",
		Event:          types.TransactionEventIncorrectPayment,
		Amount:         lo.ToPtr(int64(500)),
		Comment:        "expected 999",
		Extra:          map[string]any{"mc_gross": "5.00"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Nil(t, got.SubscriptionID)
	require.NotNil(t, got.NotificationID)
	assert.Equal(t, "n1", *got.NotificationID)
	assert.Equal(t, "5.00", got.Extra["mc_gross"])
	assert.Equal(t, []string{"incorrect payment"}, mem.Events())

	_, err = svc.Record(ctx, &RecordRequest{UserID: "u1"})
	require.Error(t, err)
}

func TestScanTransactions(t *testing.T) {
	mem := storetest.NewMemory()
	svc := NewService(zap.NewNop().Sugar(), mem)
	ctx := context.Background()

	for _, ev := range []types.TransactionEvent{types.TransactionEventNewSubscription, types.TransactionEventPayment, types.TransactionEventCancel} {
		_, err := svc.Record(ctx, &RecordRequest{UserID: "u1", Event: ev})
		require.NoError(t, err)
	}

	res, err := svc.ScanTransactions(ctx, &ScanTransactionsRequest{Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "cancel subscription", res.Items[0].Event)

	_, err = svc.ScanTransactions(ctx, &ScanTransactionsRequest{Filters: []*types.CommonFilter{{Field: "password", Operator: types.CommonFilterOperatorEq, Values: []any{"x"}}}})
	require.Error(t, err)

	_, err = svc.ScanTransactions(ctx, nil)
	require.Error(t, err)
}
