package models

import (
	"time"
)

// UserSubscription binds one user to one plan.
// Expires nil means the binding never expires.
type UserSubscription struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID         string `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:unique_user_id_subscription_id,priority:1" json:"user_id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;not null;uniqueIndex:unique_user_id_subscription_id,priority:2" json:"subscription_id"`
	// PaymentProfileID is the payment processor's recurring profile id (PayPal subscr_id).
	PaymentProfileID *string    `gorm:"column:payment_profile_id;type:varchar(64);uniqueIndex" json:"payment_profile_id"`
	Expires          *time.Time `gorm:"column:expires;type:date;index" json:"expires"`
	Active           bool       `gorm:"column:active;not null;default:true" json:"active"`
	Cancelled        bool       `gorm:"column:cancelled;not null;default:false" json:"cancelled"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Subscription *Subscription `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:RESTRICT" json:"subscription,omitempty"`
}

func (UserSubscription) TableName() string {
	return "user_subscription"
}
