package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentNotificationLogStatus string

const (
	PaymentNotificationLogStatusReceived     PaymentNotificationLogStatus = "received"
	PaymentNotificationLogStatusHandled      PaymentNotificationLogStatus = "handled"
	PaymentNotificationLogStatusHandleFailed PaymentNotificationLogStatus = "handle_failed"
)

// PaymentNotificationLog records one payment notification (IPN) as received
// and again after handling.
type PaymentNotificationLog struct {
	ID         string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID string  `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	TxnType    string  `gorm:"column:txn_type;type:varchar(64)" json:"txn_type"`
	TxnID      string  `gorm:"column:txn_id;type:varchar(128)" json:"txn_id"`
	SubscrID   string  `gorm:"column:subscr_id;type:varchar(64);index" json:"subscr_id"`
	UserID     *string `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	TraceID    string  `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	// NotificationID groups the received and handled records of one notification.
	NotificationID   string                       `gorm:"column:notification_id;type:uuid;index" json:"notification_id"`
	NotificationTime time.Time                    `gorm:"column:notification_time" json:"notification_time"`
	Data             datatypes.JSON               `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON              `gorm:"column:result;type:jsonb" json:"result"`
	Status           PaymentNotificationLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

func (PaymentNotificationLog) TableName() string { return "payment_notification_log" }
