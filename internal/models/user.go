package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. The JSON tags describe the public
// view; the password hash never leaves the service.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone"`
	MobileNumber *string   `json:"mobile_number"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
}
