package models

import (
	"time"

	"gorm.io/datatypes"
)

// Transaction is an append-only audit record written by the reconciler and
// payment notification processing.
type Transaction struct {
	ID             string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Timestamp      time.Time `gorm:"column:timestamp;autoCreateTime;<-:create;index:idx_timestamp,sort:desc" json:"timestamp"`
	SubscriptionID *string   `gorm:"column:subscription_id;type:uuid;index" json:"subscription_id"`
	UserID         *string   `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	// NotificationID links the payment notification that caused this record.
	NotificationID *string `gorm:"column:notification_id;type:uuid" json:"notification_id"`
	Event          string  `gorm:"column:event;type:varchar(100);not null" json:"event"`
	// Amount is in minor units.
	Amount  *int64 `gorm:"column:amount;type:bigint" json:"amount"`
	Comment string `gorm:"column:comment;type:text" json:"comment"`
	// PaymentTxnID is the processor's id of a settled payment. At most one
	// Transaction carries a given id.
	PaymentTxnID *string           `gorm:"column:payment_txn_id;type:varchar(64);uniqueIndex:idx_payment_txn_id" json:"payment_txn_id,omitempty"`
	Extra        datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
}

func (Transaction) TableName() string {
	return "subscription_transaction"
}
