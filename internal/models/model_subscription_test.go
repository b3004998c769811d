package models

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/membership/pkg/types"
)

func TestSubscription_Recurs(t *testing.T) {
	tests := []struct {
		name string
		plan *Subscription
		want bool
	}{
		{name: "nil plan", plan: nil, want: false},
		{name: "no period", plan: &Subscription{RecurrenceUnit: types.TimeUnitMonth}, want: false},
		{name: "none unit", plan: &Subscription{RecurrencePeriod: lo.ToPtr(1), RecurrenceUnit: types.TimeUnitNone}, want: false},
		{name: "empty unit", plan: &Subscription{RecurrencePeriod: lo.ToPtr(1)}, want: false},
		{name: "monthly", plan: &Subscription{RecurrencePeriod: lo.ToPtr(1), RecurrenceUnit: types.TimeUnitMonth}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.plan.Recurs())
		})
	}
}

func TestSubscription_Trial(t *testing.T) {
	plan := &Subscription{TrialPeriod: lo.ToPtr(2), TrialUnit: types.TimeUnitWeek}
	require.Equal(t, types.Period{Count: 2, Unit: types.TimeUnitWeek}, plan.Trial())
	require.Equal(t, "2 weeks", plan.Trial().String())
	require.True(t, (&Subscription{}).Trial().IsZero())
}

func TestTableNames(t *testing.T) {
	require.Equal(t, "subscription_plan", Subscription{}.TableName())
	require.Equal(t, "user_subscription", UserSubscription{}.TableName())
	require.Equal(t, "subscription_transaction", Transaction{}.TableName())
	require.Equal(t, "auth_user_groups", UserGroup{}.TableName())
}
