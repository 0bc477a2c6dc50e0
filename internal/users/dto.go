package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
)

// UserDTO is the wire representation of an account. The password hash
// never leaves the service layer.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FullName    string         `json:"full_name"`
	Phone       *string        `json:"phone,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FromModel maps a persisted user onto its DTO.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Phone:       user.Phone,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// CreateCustomerInput is a staff-entered customer account.
type CreateCustomerInput struct {
	Email    string
	FullName string
	Phone    *string

	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// CreateCustomerResult carries the new account plus its generated
// temporary password, shown to staff exactly once.
type CreateCustomerResult struct {
	User         *UserDTO
	TempPassword string
}
