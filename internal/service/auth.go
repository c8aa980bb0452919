package service

import (
	"context"

	"companio-server/internal/domain"
	"companio-server/internal/models"
	"companio-server/internal/validation"
)

// AuthService defines the interface for registration and login orchestration.
// Both operations expect payloads that already passed the validation package
// and return the created/authenticated user together with a fresh token pair.
type AuthService interface {
	Register(ctx context.Context, payload *validation.RegistrationPayload) (*models.User, *models.TokenDetails, error)
	Login(ctx context.Context, payload *validation.LoginPayload) (*models.User, *models.TokenDetails, error)
}

// TokenService mints and validates the signed token pairs. Tokens are pure
// functions of the user record and the signing secret; no token state is
// persisted, so a refresh token stays valid until its embedded expiry.
type TokenService interface {
	Issue(user *models.User) (*models.TokenDetails, error)
	Refresh(refreshToken string) (*models.TokenDetails, error)
	ValidateAccess(accessToken string) (*domain.Claims, error)
}
