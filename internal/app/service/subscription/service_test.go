package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store/storetest"
	"github.com/fatflowers/membership/pkg/config"
	"github.com/fatflowers/membership/pkg/types"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

type fixture struct {
	svc    *Service
	mem    *storetest.Memory
	gold   *models.Subscription
	silver *models.Subscription
}

func newFixture(t *testing.T, grace int) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := storetest.NewMemory()
	mem.SetClock(func() time.Time { return testNow })

	cfg := &config.Config{Subscription: config.SubscriptionConfig{GracePeriodDays: grace, Location: "UTC"}}
	svc, err := NewService(cfg, mem, zap.NewNop().Sugar())
	require.NoError(t, err)
	svc.SetClock(func() time.Time { return testNow })

	gold := &models.Subscription{
		Title: "Gold", Sku: "gold", Price: 999, Currency: "USD", Available: true,
		RecurrencePeriod: lo.ToPtr(1), RecurrenceUnit: types.TimeUnitMonth, GroupID: "group-gold",
	}
	silver := &models.Subscription{
		Title: "Silver", Sku: "silver", Price: 499, Currency: "USD", Available: true,
		TrialPeriod: lo.ToPtr(7), TrialUnit: types.TimeUnitDay,
		RecurrencePeriod: lo.ToPtr(1), RecurrenceUnit: types.TimeUnitYear, GroupID: "group-silver",
	}
	require.NoError(t, mem.SavePlan(ctx, gold))
	require.NoError(t, mem.SavePlan(ctx, silver))
	return &fixture{svc: svc, mem: mem, gold: gold, silver: silver}
}

// bind stores a binding directly, optionally placing the user in the plan group.
func (f *fixture) bind(t *testing.T, userID string, plan *models.Subscription, expires *time.Time, active, cancelled, member bool) *models.UserSubscription {
	t.Helper()
	ctx := context.Background()
	us := &models.UserSubscription{
		UserID:         userID,
		SubscriptionID: plan.ID,
		Expires:        expires,
		Active:         active,
		Cancelled:      cancelled,
	}
	require.NoError(t, f.mem.CreateBinding(ctx, us))
	if member {
		require.NoError(t, f.mem.AddUserToGroup(ctx, userID, plan.GroupID))
	}
	f.mem.Calls = map[string]int{}
	return us
}

func TestNewService_InvalidLocation(t *testing.T) {
	cfg := &config.Config{Subscription: config.SubscriptionConfig{Location: "Not/AZone"}}
	_, err := NewService(cfg, storetest.NewMemory(), zap.NewNop().Sugar())
	require.Error(t, err)
}

func TestNewService_NilConfigUsesDefaults(t *testing.T) {
	svc, err := NewService(nil, storetest.NewMemory(), zap.NewNop().Sugar())
	require.NoError(t, err)
	require.Equal(t, config.DefaultGracePeriodDays, svc.GracePeriodDays())
	require.Equal(t, 2, svc.GracePeriodDays())
}

func TestToday_UsesLocation(t *testing.T) {
	mem := storetest.NewMemory()
	cfg := &config.Config{Subscription: config.SubscriptionConfig{Location: "Asia/Tokyo"}}
	svc, err := NewService(cfg, mem, zap.NewNop().Sugar())
	require.NoError(t, err)
	// 20:00 UTC on the 15th is already the 16th in Tokyo.
	svc.SetClock(func() time.Time { return time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC) })
	require.Equal(t, *day(2024, 3, 16), svc.Today())
}

func TestGetPlanByRef(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	p, err := f.svc.GetPlanByRef(ctx, f.gold.ID)
	require.NoError(t, err)
	require.Equal(t, "gold", p.Sku)

	p, err = f.svc.GetPlanByRef(ctx, "silver")
	require.NoError(t, err)
	require.Equal(t, f.silver.ID, p.ID)

	_, err = f.svc.GetPlanByRef(ctx, "bronze")
	require.ErrorIs(t, err, ErrPlanNotFound)
}
