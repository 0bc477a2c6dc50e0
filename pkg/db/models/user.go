package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborlane/importdesk-backend/pkg/enums"
)

// User is a portal account: customers submit quote requests and deposits
// are recorded against them; staff and admins drive the order workflow.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;type:text;not null"`
	FullName     string         `gorm:"column:full_name;type:text;not null"`
	Phone        *string        `gorm:"column:phone;type:text"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
