package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/pkg/types"
)

func TestExpired(t *testing.T) {
	f := newFixture(t, 2)
	cases := []struct {
		name    string
		expires *time.Time
		want    bool
	}{
		{"never expires", nil, false},
		{"future", day(2024, 3, 20), false},
		{"today", day(2024, 3, 15), false},
		{"last day of grace", day(2024, 3, 13), false},
		{"grace lapsed", day(2024, 3, 12), true},
		{"long ago", day(2020, 1, 1), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			us := &models.UserSubscription{Expires: tc.expires}
			assert.Equal(t, tc.want, f.svc.Expired(us))
		})
	}
}

func TestExpired_NilExpiryIgnoresClockAndGrace(t *testing.T) {
	for _, grace := range []int{0, 2, 30} {
		f := newFixture(t, grace)
		for _, now := range []time.Time{testNow, testNow.AddDate(50, 0, 0)} {
			f.svc.SetClock(func() time.Time { return now })
			assert.False(t, f.svc.Expired(&models.UserSubscription{}))
		}
	}
}

func TestExpired_ZeroGrace(t *testing.T) {
	f := newFixture(t, 0)
	assert.False(t, f.svc.Expired(&models.UserSubscription{Expires: day(2024, 3, 15)}))
	assert.True(t, f.svc.Expired(&models.UserSubscription{Expires: day(2024, 3, 14)}))
}

func TestFix(t *testing.T) {
	cases := []struct {
		name        string
		expires     *time.Time
		active      bool
		cancelled   bool
		member      bool
		wantAction  types.ReconcileAction
		wantMember  bool
		wantBinding bool
		wantEvents  []string
	}{
		{
			name: "valid member", expires: day(2024, 4, 1), active: true, member: true,
			wantAction: types.ReconcileActionNone, wantMember: true, wantBinding: true,
		},
		{
			name: "missing from group", expires: day(2024, 4, 1), active: true,
			wantAction: types.ReconcileActionSubscribe, wantMember: true, wantBinding: true,
		},
		{
			name: "never expires missing from group", active: true,
			wantAction: types.ReconcileActionSubscribe, wantMember: true, wantBinding: true,
		},
		{
			name: "expired member", expires: day(2024, 3, 1), active: true, member: true,
			wantAction: types.ReconcileActionUnsubscribe, wantBinding: true,
			wantEvents: []string{"subscription expired"},
		},
		{
			name: "inactive member", expires: day(2024, 4, 1), member: true,
			wantAction: types.ReconcileActionUnsubscribe, wantBinding: true,
			wantEvents: []string{"subscription expired"},
		},
		{
			name: "expired cancelled member", expires: day(2024, 3, 1), active: true, cancelled: true, member: true,
			wantAction: types.ReconcileActionDelete,
			wantEvents: []string{"subscription expired", "remove subscription (expired)"},
		},
		{
			name: "expired non member is valid", expires: day(2024, 3, 1), active: true, cancelled: true,
			wantAction: types.ReconcileActionNone, wantBinding: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 2)
			us := f.bind(t, "u1", f.gold, tc.expires, tc.active, tc.cancelled, tc.member)

			action, err := f.svc.Fix(context.Background(), us)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAction, action)
			assert.Equal(t, tc.wantMember, f.mem.InGroup("u1", "group-gold"))
			assert.Equal(t, tc.wantBinding, f.mem.HasBinding(us.ID))
			if tc.wantEvents == nil {
				assert.Empty(t, f.mem.Events())
			} else {
				assert.Equal(t, tc.wantEvents, f.mem.Events())
			}
		})
	}
}

func TestFix_TransactionsLinkUserAndPlan(t *testing.T) {
	f := newFixture(t, 2)
	us := f.bind(t, "u1", f.gold, day(2024, 3, 1), true, false, true)

	_, err := f.svc.Fix(context.Background(), us)
	require.NoError(t, err)

	txs := f.mem.Transactions()
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].UserID)
	require.NotNil(t, txs[0].SubscriptionID)
	assert.Equal(t, "u1", *txs[0].UserID)
	assert.Equal(t, f.gold.ID, *txs[0].SubscriptionID)
	assert.Nil(t, txs[0].NotificationID)
	assert.Nil(t, txs[0].Amount)
}

func TestFix_Idempotent(t *testing.T) {
	starts := []struct {
		name                      string
		expires                   *time.Time
		active, cancelled, member bool
	}{
		{"expired member", day(2024, 3, 1), true, false, true},
		{"inactive member", nil, false, false, true},
		{"missing from group", day(2024, 5, 1), true, false, false},
		{"expired cancelled member", day(2024, 3, 1), true, true, true},
	}
	for _, st := range starts {
		t.Run(st.name, func(t *testing.T) {
			f := newFixture(t, 2)
			ctx := context.Background()
			us := f.bind(t, "u1", f.gold, st.expires, st.active, st.cancelled, st.member)

			_, err := f.svc.Fix(ctx, us)
			require.NoError(t, err)
			member := f.mem.InGroup("u1", "group-gold")
			events := f.mem.Events()

			action, err := f.svc.Fix(ctx, us)
			require.NoError(t, err)
			assert.Equal(t, types.ReconcileActionNone, action)
			assert.Equal(t, member, f.mem.InGroup("u1", "group-gold"))
			assert.Equal(t, events, f.mem.Events())
		})
	}
}

func TestValid_AfterFix(t *testing.T) {
	for _, expires := range []*time.Time{nil, day(2024, 3, 1), day(2024, 3, 13), day(2024, 6, 1)} {
		for _, active := range []bool{true, false} {
			for _, member := range []bool{true, false} {
				f := newFixture(t, 2)
				ctx := context.Background()
				us := f.bind(t, "u1", f.gold, expires, active, false, member)

				_, err := f.svc.Fix(ctx, us)
				require.NoError(t, err)
				valid, err := f.svc.Valid(ctx, us)
				require.NoError(t, err)
				assert.True(t, valid, "expires=%v active=%v member=%v", expires, active, member)
			}
		}
	}
}

func TestFix_DeletedConcurrently(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 3, 1), true, true, true)
	require.NoError(t, f.mem.DeleteBinding(ctx, us.ID))

	action, err := f.svc.Fix(ctx, us)
	require.NoError(t, err)
	assert.Equal(t, types.ReconcileActionNone, action)
	assert.Empty(t, f.mem.Events())
}

func TestFix_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t, 2)
	us := f.bind(t, "u1", f.gold, day(2024, 3, 1), true, false, true)
	f.mem.FailOn["AppendTransaction"] = errors.New("disk full")

	_, err := f.svc.Fix(context.Background(), us)
	require.Error(t, err)
	assert.True(t, f.mem.InGroup("u1", "group-gold"))
	assert.Empty(t, f.mem.Events())
}

func TestUnsubscribeExpired_OnlyRowsBeforeToday(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	yesterday := f.bind(t, "u-yesterday", f.gold, day(2024, 3, 14), true, false, true)
	f.bind(t, "u-today", f.gold, day(2024, 3, 15), true, false, true)
	f.bind(t, "u-tomorrow", f.gold, day(2024, 3, 16), true, false, true)
	f.mem.Calls = map[string]int{}

	res, err := f.svc.UnsubscribeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Candidates)
	assert.Equal(t, 1, res.Actions[types.ReconcileActionUnsubscribe])
	assert.Equal(t, 1, f.mem.Calls["Transaction"])
	assert.Equal(t, 1, f.mem.Calls["GetBindingForUpdate"])

	assert.False(t, f.mem.InGroup("u-yesterday", "group-gold"))
	assert.True(t, f.mem.InGroup("u-today", "group-gold"))
	assert.True(t, f.mem.InGroup("u-tomorrow", "group-gold"))
	assert.True(t, f.mem.HasBinding(yesterday.ID))
	assert.Equal(t, []string{"subscription expired"}, f.mem.Events())
}

func TestUnsubscribeExpired_GraceRowsVisitedButKept(t *testing.T) {
	f := newFixture(t, 2)
	f.bind(t, "u1", f.gold, day(2024, 3, 14), true, false, true)

	res, err := f.svc.UnsubscribeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Candidates)
	assert.Equal(t, 1, res.Actions[types.ReconcileActionNone])
	assert.True(t, f.mem.InGroup("u1", "group-gold"))
	assert.Empty(t, f.mem.Events())
}

func TestUnsubscribeExpired_Repeatable(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	kept := f.bind(t, "u1", f.gold, day(2024, 3, 1), true, false, true)
	removed := f.bind(t, "u2", f.gold, day(2024, 3, 1), true, true, true)

	_, err := f.svc.UnsubscribeExpired(ctx)
	require.NoError(t, err)
	assert.True(t, f.mem.HasBinding(kept.ID))
	assert.False(t, f.mem.HasBinding(removed.ID))
	events := f.mem.Events()
	assert.Len(t, events, 3)

	res, err := f.svc.UnsubscribeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Candidates)
	assert.Equal(t, events, f.mem.Events())
}

func TestUnsubscribeExpired_ContinuesPastFailures(t *testing.T) {
	f := newFixture(t, 0)
	orphan := &models.Subscription{ID: "missing-plan"}
	f.bind(t, "u-orphan", orphan, day(2024, 3, 1), true, false, false)
	ok := f.bind(t, "u-ok", f.gold, day(2024, 3, 1), true, false, true)

	res, err := f.svc.UnsubscribeExpired(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.Equal(t, 2, res.Candidates)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, f.mem.InGroup("u-ok", "group-gold"))
	assert.True(t, f.mem.HasBinding(ok.ID))
}

func TestUnsubscribeExpired_ListFailure(t *testing.T) {
	f := newFixture(t, 0)
	f.mem.FailOn["ListBindingsExpiringBefore"] = errors.New("connection reset")

	res, err := f.svc.UnsubscribeExpired(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
}

func TestSubscribeUnsubscribe_Idempotent(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, nil, true, false, false)

	require.NoError(t, f.svc.Subscribe(ctx, us))
	require.NoError(t, f.svc.Subscribe(ctx, us))
	assert.True(t, f.mem.InGroup("u1", "group-gold"))

	require.NoError(t, f.svc.Unsubscribe(ctx, us))
	require.NoError(t, f.svc.Unsubscribe(ctx, us))
	assert.False(t, f.mem.InGroup("u1", "group-gold"))
}
