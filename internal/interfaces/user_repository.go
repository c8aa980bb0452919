package interfaces

import (
	"context"

	"companio-server/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data persistence (e.g., PostgreSQL).
type UserRepository interface {
	// CreateUser inserts a new user into the database. The store's unique
	// indexes remain the authoritative uniqueness check; duplicate email,
	// mobile number or phone are reported as models.Err*AlreadyExists.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by their ID.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetUserByEmail retrieves a user by their email address.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByMobile retrieves a user by their mobile number.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByMobile(ctx context.Context, mobile string) (*models.User, error)

	// ExistsByEmail reports whether any user holds the given email.
	// Best-effort preflight only; CreateUser may still race and reject.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByMobile reports whether any user holds the given mobile number.
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)
}
