package models

import (
	"time"

	"github.com/fatflowers/membership/pkg/types"
)

// Subscription is a purchasable plan. Subscribers are granted membership of GroupID.
type Subscription struct {
	ID          string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Title       string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Sku         string `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Description string `gorm:"column:description;type:text" json:"description"`
	// Price is the recurring price in minor units (cents).
	Price     int64  `gorm:"column:price;type:bigint;not null;default:0" json:"price"`
	Currency  string `gorm:"column:currency;type:varchar(16);not null;default:'USD'" json:"currency"`
	Available bool   `gorm:"column:available;not null;default:true" json:"available"`

	TrialPeriod      *int           `gorm:"column:trial_period" json:"trial_period"`
	TrialUnit        types.TimeUnit `gorm:"column:trial_unit;type:varchar(1)" json:"trial_unit"`
	RecurrencePeriod *int           `gorm:"column:recurrence_period" json:"recurrence_period"`
	// RecurrenceUnit none means a one-time purchase: paid bindings never expire.
	RecurrenceUnit types.TimeUnit `gorm:"column:recurrence_unit;type:varchar(1)" json:"recurrence_unit"`

	GroupID string `gorm:"column:group_id;type:uuid;not null;index" json:"group_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription_plan"
}

// Trial returns the trial period, zero when the plan has none.
func (s *Subscription) Trial() types.Period {
	if s == nil || s.TrialPeriod == nil {
		return types.Period{}
	}
	return types.Period{Count: *s.TrialPeriod, Unit: s.TrialUnit}
}

// Recurrence returns the renewal cadence, zero when the plan does not recur.
func (s *Subscription) Recurrence() types.Period {
	if s == nil || s.RecurrencePeriod == nil {
		return types.Period{}
	}
	return types.Period{Count: *s.RecurrencePeriod, Unit: s.RecurrenceUnit}
}

// Recurs reports whether the plan renews periodically.
func (s *Subscription) Recurs() bool {
	return !s.Recurrence().IsZero()
}

func (s *Subscription) String() string {
	if s == nil {
		return ""
	}
	return s.Title
}
