package service

import (
	"errors"
	"fmt"
	"time"

	"companio-server/internal/config"
	"companio-server/internal/domain"
	"companio-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenIssuer = "companio-auth"

// Compile-time check to ensure tokenServiceImpl implements TokenService
var _ TokenService = (*tokenServiceImpl)(nil)

type tokenServiceImpl struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTokenService creates a new instance of tokenServiceImpl.
func NewTokenService(cfg *config.Config, logger *zap.Logger) TokenService {
	return &tokenServiceImpl{
		cfg:    cfg,
		logger: logger.Named("TokenService"),
	}
}

// Issue produces a signed access/refresh token pair for the user. Both carry
// the user id as subject and a role claim; they differ in token_type and TTL.
func (s *tokenServiceImpl) Issue(user *models.User) (*models.TokenDetails, error) {
	return s.issue(user.ID.String(), user.Role)
}

// Refresh validates a refresh token's signature, expiry and token_type, then
// issues a fresh pair bound to the same subject (rotation). The supplied
// token is not invalidated; it stays usable until its own expiry.
func (s *tokenServiceImpl) Refresh(refreshTokenString string) (*models.TokenDetails, error) {
	s.logger.Debug("Token refresh attempt") // Не логируем сам токен
	claims, err := s.parse(refreshTokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != models.TokenTypeRefresh {
		s.logger.Warn("Refresh attempt with a non-refresh token", zap.String("tokenType", claims.TokenType))
		return nil, models.ErrTokenInvalid
	}

	td, err := s.issue(claims.Subject, claims.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Token refreshed successfully", zap.String("subject", claims.Subject))
	return td, nil
}

// ValidateAccess checks an access token's signature, expiry and token_type
// and returns its claims.
func (s *tokenServiceImpl) ValidateAccess(tokenString string) (*domain.Claims, error) {
	s.logger.Debug("Verifying access token")
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != models.TokenTypeAccess {
		s.logger.Warn("Access validation attempt with a non-access token", zap.String("tokenType", claims.TokenType))
		return nil, models.ErrTokenInvalid
	}

	return claims, nil
}

// parse validates signature and registered claims of either token kind.
func (s *tokenServiceImpl) parse(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug("Token verification failed: expired")
			return nil, models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			s.logger.Warn("Token verification failed: malformed")
			return nil, models.ErrTokenMalformed
		}
		s.logger.Warn("Failed to parse token", zap.Error(err))
		return nil, models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		s.logger.Warn("Token verification failed (invalid claims type or signature)")
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// issue mints both tokens for a subject/role pair.
func (s *tokenServiceImpl) issue(subject, role string) (*models.TokenDetails, error) {
	now := time.Now()
	td := &models.TokenDetails{
		AtExpires: now.Add(s.cfg.AccessTokenTTL).Unix(),
		RtExpires: now.Add(s.cfg.RefreshTokenTTL).Unix(),
	}

	var err error
	td.AccessToken, err = s.sign(subject, role, models.TokenTypeAccess, now, time.Unix(td.AtExpires, 0))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err), zap.String("subject", subject))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	td.RefreshToken, err = s.sign(subject, role, models.TokenTypeRefresh, now, time.Unix(td.RtExpires, 0))
	if err != nil {
		s.logger.Error("Failed to sign refresh token", zap.Error(err), zap.String("subject", subject))
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return td, nil
}

func (s *tokenServiceImpl) sign(subject, role, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &domain.Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
