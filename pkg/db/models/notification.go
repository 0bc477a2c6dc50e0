package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborlane/importdesk-backend/pkg/enums"
)

// Notification stores a queued message for a user. Rows are written by the
// notifier after a financial transaction commits and delivered
// asynchronously by the cron worker; delivery failure never touches the
// financial state that produced the row.
type Notification struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID                 `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID   *uuid.UUID                `gorm:"column:order_id;type:uuid"`
	Channel   enums.NotificationChannel `gorm:"column:channel;type:text;not null;default:'in_app'"`
	Type      enums.NotificationType    `gorm:"column:type;type:text;not null"`
	Subject   string                    `gorm:"column:subject;type:text;not null"`
	Body      string                    `gorm:"column:body;type:text;not null"`
	Status    enums.DeliveryStatus      `gorm:"column:status;type:text;not null;default:'pending'"`
	Attempts  int                       `gorm:"column:attempts;not null;default:0"`
	LastError *string                   `gorm:"column:last_error;type:text"`
	SentAt    *time.Time                `gorm:"column:sent_at"`
	ReadAt    *time.Time                `gorm:"column:read_at"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
