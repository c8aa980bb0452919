package database

import (
	"context"
	"errors"
	"fmt"

	"companio-server/internal/interfaces"
	"companio-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

const userColumns = `id, email, phone, mobile_number, role, password_hash, is_active, date_joined`

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, phone, mobile_number, role, password_hash, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, date_joined`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", user.Email), zap.String("role", user.Role))
	err := r.db.QueryRow(ctx, query,
		user.Email, user.Phone, user.MobileNumber, user.Role, user.PasswordHash, user.IsActive,
	).Scan(&user.ID, &user.DateJoined)

	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			logFields := []zap.Field{zap.String("email", user.Email), zap.String("constraint", pgErr.ConstraintName)}
			switch pgErr.ConstraintName {
			case "users_email_key":
				r.logger.Warn("Attempted to create duplicate user by email", logFields...)
				return models.ErrEmailAlreadyExists
			case "users_mobile_number_key":
				r.logger.Warn("Attempted to create duplicate user by mobile number", logFields...)
				return models.ErrMobileAlreadyExists
			case "users_phone_key":
				r.logger.Warn("Attempted to create duplicate user by phone", logFields...)
				return models.ErrPhoneAlreadyExists
			default:
				r.logger.Warn("Attempted to create user with unique constraint violation", logFields...)
				return models.ErrEmailAlreadyExists
			}
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user in postgres: %w", storeErr(err))
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email), zap.String("role", user.Role))
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	return r.scanUser(r.db.QueryRow(ctx, query, id), zap.String("id", id.String()))
}

// GetUserByEmail retrieves a user by their email.
func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", email))
	return r.scanUser(r.db.QueryRow(ctx, query, email), zap.String("email", email))
}

// GetUserByMobile retrieves a user by their mobile number.
func (r *pgUserRepository) GetUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile_number = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("mobile", mobile))
	return r.scanUser(r.db.QueryRow(ctx, query, mobile), zap.String("mobile", mobile))
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *pgUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		r.logger.Error("Failed to check email existence in postgres", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", storeErr(err))
	}
	return exists, nil
}

// ExistsByMobile reports whether a user with the given mobile number exists.
func (r *pgUserRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE mobile_number = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, mobile).Scan(&exists); err != nil {
		r.logger.Error("Failed to check mobile existence in postgres", zap.Error(err), zap.String("mobile", mobile))
		return false, fmt.Errorf("failed to check mobile existence: %w", storeErr(err))
	}
	return exists, nil
}

// scanUser maps a single user row, translating pgx.ErrNoRows to ErrUserNotFound.
func (r *pgUserRepository) scanUser(row pgx.Row, logField zap.Field) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Phone, &user.MobileNumber,
		&user.Role, &user.PasswordHash, &user.IsActive, &user.DateJoined)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found", logField)
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user from postgres", zap.Error(err), logField)
		return nil, fmt.Errorf("failed to get user from postgres: %w", storeErr(err))
	}
	return user, nil
}

// storeErr tags connectivity failures so handlers answer 503 instead of a
// generic 500. Query-level errors pass through unchanged.
func storeErr(err error) error {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return err
}
