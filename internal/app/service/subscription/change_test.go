package subscription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/membership/internal/models"
)

func TestTryChange_SamePlan(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	cases := []struct {
		name              string
		active, cancelled bool
		want              []string
	}{
		{"resubscribe", true, true, nil},
		{"current", true, false, []string{ReasonCurrentSubscription}},
		{"inactive cancelled", false, true, []string{ReasonCurrentSubscription}},
		{"inactive", false, false, []string{ReasonCurrentSubscription}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			us := &models.UserSubscription{UserID: "u1", SubscriptionID: f.gold.ID, Active: tc.active, Cancelled: tc.cancelled}
			assert.Equal(t, tc.want, f.svc.TryChange(ctx, us, f.gold))
		})
	}
}

func TestTryChange_ValidatorsInRegistrationOrder(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	var seen []string
	reject := func(name, reason string) ChangeValidator {
		return func(_ context.Context, current *models.UserSubscription, candidate *models.Subscription) string {
			seen = append(seen, name)
			assert.Equal(t, "u1", current.UserID)
			assert.Equal(t, "silver", candidate.Sku)
			return reason
		}
	}
	f.svc.RegisterChangeValidator(reject("first", "cannot downgrade mid-cycle"))
	f.svc.RegisterChangeValidator(reject("second", ""))
	f.svc.RegisterChangeValidator(nil)
	f.svc.RegisterChangeValidator(reject("third", "outstanding balance"))

	us := &models.UserSubscription{UserID: "u1", SubscriptionID: f.gold.ID, Active: true}
	reasons := f.svc.TryChange(ctx, us, f.silver)
	assert.Equal(t, []string{"cannot downgrade mid-cycle", "outstanding balance"}, reasons)
	assert.Equal(t, []string{"first", "second", "third"}, seen)
}

func TestTryChange_NoValidatorsAllowsOtherPlan(t *testing.T) {
	f := newFixture(t, 2)
	us := &models.UserSubscription{UserID: "u1", SubscriptionID: f.gold.ID, Active: true}
	assert.Empty(t, f.svc.TryChange(context.Background(), us, f.silver))
}

func TestPlanAvailable(t *testing.T) {
	f := newFixture(t, 2)
	f.svc.RegisterChangeValidator(PlanAvailable())
	us := &models.UserSubscription{UserID: "u1", SubscriptionID: f.gold.ID, Active: true}

	assert.Empty(t, f.svc.TryChange(context.Background(), us, f.silver))
	f.silver.Available = false
	assert.Equal(t, []string{ReasonPlanUnavailable}, f.svc.TryChange(context.Background(), us, f.silver))
}

func TestChangePlan(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 4, 1), true, true, true)

	reasons, err := f.svc.ChangePlan(ctx, us, f.silver)
	require.NoError(t, err)
	assert.Empty(t, reasons)
	assert.Equal(t, f.silver.ID, us.SubscriptionID)
	assert.False(t, us.Cancelled)
	assert.False(t, f.mem.InGroup("u1", "group-gold"))
	assert.True(t, f.mem.InGroup("u1", "group-silver"))
	assert.Equal(t, []string{"change subscription"}, f.mem.Events())

	stored, err := f.svc.GetBinding(ctx, us.ID)
	require.NoError(t, err)
	assert.Equal(t, f.silver.ID, stored.SubscriptionID)
}

func TestChangePlan_Blocked(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.svc.RegisterChangeValidator(func(context.Context, *models.UserSubscription, *models.Subscription) string {
		return "no switching this week"
	})
	us := f.bind(t, "u1", f.gold, day(2024, 4, 1), true, false, true)

	reasons, err := f.svc.ChangePlan(ctx, us, f.silver)
	require.NoError(t, err)
	assert.Equal(t, []string{"no switching this week"}, reasons)
	assert.Equal(t, f.gold.ID, us.SubscriptionID)
	assert.True(t, f.mem.InGroup("u1", "group-gold"))
	assert.Empty(t, f.mem.Events())
}

func TestChangePlan_DuplicateBinding(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 4, 1), true, false, true)
	f.bind(t, "u1", f.silver, day(2024, 4, 1), true, false, false)

	_, err := f.svc.ChangePlan(ctx, us, f.silver)
	require.ErrorIs(t, err, ErrDuplicateBinding)
	assert.True(t, f.mem.InGroup("u1", "group-gold"))
	assert.Empty(t, f.mem.Events())
}

func TestResubscribe(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 4, 1), true, true, true)

	reasons, err := f.svc.ChangePlan(ctx, us, f.gold)
	require.NoError(t, err)
	assert.Empty(t, reasons)
	assert.False(t, us.Cancelled)
	assert.Equal(t, []string{"resubscribe"}, f.mem.Events())

	reasons, err = f.svc.Resubscribe(ctx, us)
	require.NoError(t, err)
	assert.Equal(t, []string{ReasonCurrentSubscription}, reasons)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 4, 1), true, false, true)

	require.NoError(t, f.svc.Cancel(ctx, us))
	assert.True(t, us.Cancelled)
	assert.True(t, f.mem.InGroup("u1", "group-gold"), "access continues until expiry")
	assert.Equal(t, []string{"cancel subscription"}, f.mem.Events())

	stored, err := f.svc.GetBinding(ctx, us.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cancelled)
}

func TestCancel_ExpiredBindingIsRemoved(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	us := f.bind(t, "u1", f.gold, day(2024, 3, 1), true, false, true)

	require.NoError(t, f.svc.Cancel(ctx, us))
	assert.False(t, f.mem.HasBinding(us.ID))
	assert.Equal(t, []string{"cancel subscription", "subscription expired", "remove subscription (expired)"}, f.mem.Events())
}
