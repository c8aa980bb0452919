package service

import (
	"context"
	"errors"
	"fmt"

	"companio-server/internal/config"
	"companio-server/internal/interfaces"
	"companio-server/internal/models"
	"companio-server/internal/validation"

	"go.uber.org/zap"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

const (
	syntheticEmailDomain = "companio.local"
	// Предохранитель для цикла подбора синтетического email
	maxSyntheticAttempts = 1000
)

// Duplicate-identifier messages surfaced as field-level validation errors.
const (
	msgEmailTaken  = "A user with this email already exists."
	msgMobileTaken = "A user with this mobile number already exists."
	msgPhoneTaken  = "A user with this phone already exists."
)

// authServiceImpl implements the AuthService interface.
type authServiceImpl struct {
	userRepo interfaces.UserRepository
	tokens   TokenService
	cfg      *config.Config
	logger   *zap.Logger
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(userRepo interfaces.UserRepository, tokens TokenService, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger.Named("AuthService"),
	}
}

// Register creates a new user from a validated payload and issues tokens.
// When only a mobile number was supplied, a unique synthetic email is
// generated because the storage layer requires a non-null unique email.
func (s *authServiceImpl) Register(ctx context.Context, payload *validation.RegistrationPayload) (*models.User, *models.TokenDetails, error) {
	logFields := []zap.Field{zap.String("email", payload.Email), zap.String("mobile", payload.MobileNumber), zap.String("role", payload.Role)}
	s.logger.Info("Registering new user", logFields...)

	// Best-effort ранняя проверка дубликатов ради внятных сообщений;
	// авторитетная проверка - уникальные индексы при CreateUser.
	if err := s.preflightDuplicates(ctx, payload); err != nil {
		return nil, nil, err
	}

	hashedPassword, err := hashPassword(payload.Password, s.cfg.PasswordPepper, s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}
	// Плейнтекст дальше никуда не передаем
	payload.Password = ""

	synthetic := payload.Email == ""
	email := payload.Email

	for attempt := 0; ; attempt++ {
		if synthetic {
			email, err = s.nextFreeSyntheticEmail(ctx, payload.MobileNumber, attempt)
			if err != nil {
				return nil, nil, err
			}
		}

		user := &models.User{
			Email:        email,
			Phone:        optional(payload.Phone),
			MobileNumber: optional(payload.MobileNumber),
			Role:         payload.Role,
			PasswordHash: hashedPassword,
			IsActive:     true,
		}

		err = s.userRepo.CreateUser(ctx, user)
		if err == nil {
			td, issueErr := s.tokens.Issue(user)
			if issueErr != nil {
				s.logger.Error("Failed to issue tokens after registration", zap.Error(issueErr), zap.String("userID", user.ID.String()))
				return nil, nil, fmt.Errorf("failed to issue tokens: %w", issueErr)
			}
			s.logger.Info("User registered successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email), zap.String("role", user.Role))
			return user, td, nil
		}

		// Проигравший гонку за синтетический email пробует следующий счетчик
		if synthetic && errors.Is(err, models.ErrEmailAlreadyExists) && attempt < maxSyntheticAttempts {
			s.logger.Debug("Synthetic email taken by concurrent registration, retrying",
				zap.String("email", email), zap.Int("attempt", attempt))
			continue
		}

		return nil, nil, s.mapCreateConflict(err, logFields)
	}
}

// Login authenticates a validated payload and returns the user with fresh
// tokens. Unknown identifier, inactive account and wrong password all
// collapse into models.ErrInvalidCredentials, and a hash compare runs in
// every branch so the causes are not trivially distinguishable by timing.
func (s *authServiceImpl) Login(ctx context.Context, payload *validation.LoginPayload) (*models.User, *models.TokenDetails, error) {
	identifier := payload.Email
	lookup := s.userRepo.GetUserByEmail
	if payload.MobileNumber != "" {
		identifier = payload.MobileNumber
		lookup = s.userRepo.GetUserByMobile
	}
	s.logger.Info("Login attempt", zap.String("identifier", identifier))

	user, err := lookup(ctx, identifier)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("identifier", identifier))
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	hash := dummyHash
	if user != nil && user.IsActive {
		hash = user.PasswordHash
	}
	passwordOK := checkPasswordHash(payload.Password, hash, s.cfg.PasswordPepper)

	if user == nil || !user.IsActive || !passwordOK {
		s.logger.Warn("Login failed: invalid credentials", zap.String("identifier", identifier))
		return nil, nil, models.ErrInvalidCredentials
	}

	td, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to create tokens during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, nil, fmt.Errorf("failed to create tokens: %w", err)
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return user, td, nil
}

// preflightDuplicates rejects identifiers that are already taken before any
// hashing work happens. CreateUser remains the authoritative check.
func (s *authServiceImpl) preflightDuplicates(ctx context.Context, payload *validation.RegistrationPayload) error {
	if payload.Email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, payload.Email)
		if err != nil {
			return fmt.Errorf("error checking existing email: %w", err)
		}
		if exists {
			s.logger.Warn("Registration attempt for existing email", zap.String("email", payload.Email))
			return models.ValidationErrors{"email": msgEmailTaken}
		}
	}
	if payload.MobileNumber != "" {
		exists, err := s.userRepo.ExistsByMobile(ctx, payload.MobileNumber)
		if err != nil {
			return fmt.Errorf("error checking existing mobile: %w", err)
		}
		if exists {
			s.logger.Warn("Registration attempt for existing mobile number", zap.String("mobile", payload.MobileNumber))
			return models.ValidationErrors{"mobile_number": msgMobileTaken}
		}
	}
	return nil
}

// nextFreeSyntheticEmail derives "<mobile>@companio.local" and walks the
// "+N" counter past both previously persisted synthetic emails and the
// offset accumulated from lost create races.
func (s *authServiceImpl) nextFreeSyntheticEmail(ctx context.Context, mobile string, offset int) (string, error) {
	counter := offset
	for ; counter <= maxSyntheticAttempts; counter++ {
		email := syntheticEmail(mobile, counter)
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("error probing synthetic email: %w", err)
		}
		if !exists {
			return email, nil
		}
	}
	s.logger.Error("Exhausted synthetic email candidates", zap.String("mobile", mobile))
	return "", fmt.Errorf("no free synthetic email for mobile %s: %w", mobile, models.ErrInternalServer)
}

// mapCreateConflict translates repository conflict errors back into
// field-level validation errors; anything else passes through wrapped.
func (s *authServiceImpl) mapCreateConflict(err error, logFields []zap.Field) error {
	switch {
	case errors.Is(err, models.ErrEmailAlreadyExists):
		return models.ValidationErrors{"email": msgEmailTaken}
	case errors.Is(err, models.ErrMobileAlreadyExists):
		return models.ValidationErrors{"mobile_number": msgMobileTaken}
	case errors.Is(err, models.ErrPhoneAlreadyExists):
		return models.ValidationErrors{"phone": msgPhoneTaken}
	default:
		s.logger.Error("Failed to create user via repository", append(logFields, zap.Error(err))...)
		return err
	}
}

func syntheticEmail(mobile string, counter int) string {
	if counter == 0 {
		return fmt.Sprintf("%s@%s", mobile, syntheticEmailDomain)
	}
	return fmt.Sprintf("%s+%d@%s", mobile, counter, syntheticEmailDomain)
}

// optional maps an empty string to a NULL-able column value.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
