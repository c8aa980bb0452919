package service_test // Используем _test пакет для изоляции

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"companio-server/internal/config"
	"companio-server/internal/database"
	"companio-server/internal/interfaces"
	"companio-server/internal/models"
	"companio-server/internal/service"
	"companio-server/internal/validation"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // Драйвер для PostgreSQL
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	// Докер клиент для проверки доступности
	"github.com/docker/docker/client"
)

// IntegrationTestSuite содержит состояние для наших интеграционных тестов
type IntegrationTestSuite struct {
	suite.Suite // Встраиваем testify suite для удобства
	ctx         context.Context
	pgContainer *postgres.PostgresContainer // Контейнер PostgreSQL
	pgPool      *pgxpool.Pool               // Пул подключений к тестовой БД
	config      *config.Config              // Тестовая конфигурация
	userRepo    interfaces.UserRepository
	authService service.AuthService
	logger      *zap.Logger
}

// SetupSuite выполняется один раз перед всеми тестами в наборе
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	// Настраиваем логгер для тестов
	s.logger, err = zap.NewDevelopment() // Простой логгер для тестов
	require.NoError(s.T(), err, "Failed to create logger for tests")
	s.logger.Info("Setting up integration test suite...")

	// Запускаем контейнер PostgreSQL
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")
	s.logger.Info("PostgreSQL container started")

	// Получаем DSN для подключения к тестовой БД
	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get postgres connection string")

	// Подключаемся к тестовой БД
	s.pgPool, err = pgxpool.New(s.ctx, pgConnStr)
	require.NoError(s.T(), err, "Failed to connect to test postgres")
	s.logger.Info("Connected to test PostgreSQL")

	// Применяем миграции
	err = s.runMigrations(pgConnStr)
	require.NoError(s.T(), err, "Failed to run migrations")
	s.logger.Info("Database migrations applied")

	// Создаем тестовую конфигурацию
	s.config = &config.Config{
		DBUser:     "testuser",
		DBPassword: "testpass",
		DBName:     "test_db",
		DBSSLMode:  "disable",
		// Секреты для тестов задаем прямо в конфиге
		JWTSecret:      "test-jwt-secret",
		PasswordPepper: "test-pepper",
		// Минимальная стоимость bcrypt, чтобы тесты не тормозили
		BcryptCost:      bcrypt.MinCost,
		AccessTokenTTL:  5 * time.Minute,
		RefreshTokenTTL: 10 * time.Minute,
		Env:             "test",
		LogLevel:        "debug",
	}
	s.logger.Info("Test configuration created")

	// Инициализируем зависимости для AuthService
	s.userRepo = database.NewPgUserRepository(s.pgPool, s.logger)
	tokenService := service.NewTokenService(s.config, s.logger)
	s.authService = service.NewAuthService(s.userRepo, tokenService, s.config, s.logger)
	s.logger.Info("AuthService initialized for tests")

	s.logger.Info("Test suite setup complete.")
}

// TearDownSuite выполняется один раз после всех тестов в наборе
func (s *IntegrationTestSuite) TearDownSuite() {
	s.logger.Info("Tearing down integration test suite...")
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate postgres container", zap.Error(err))
		}
	}
	s.logger.Info("Test suite teardown complete.")
}

// Перед каждым тестом очищаем таблицы БД
func (s *IntegrationTestSuite) SetupTest() {
	// ОСТОРОЖНО: НЕ запускать на production БД!
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE users RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate users table")
}

// runMigrations применяет миграции к тестовой БД
func (s *IntegrationTestSuite) runMigrations(dbURL string) error {
	// Находим путь к миграциям относительно текущего файла
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("could not get caller information")
	}
	migrationsPath := filepath.Join(filepath.Dir(filename), "..", "database", "migrations")

	// Используем iofs для чтения миграций из файловой системы
	fsys := os.DirFS(migrationsPath)
	sourceDriver, err := iofs.New(fsys, ".")
	if err != nil {
		s.logger.Error("Failed to create iofs source driver for migrations",
			zap.String("migrationsPath", migrationsPath),
			zap.Error(err),
		)
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dbURL)
	if err != nil {
		s.logger.Error("Failed to create migrate instance with iofs",
			zap.String("dbURL", dbURL),
			zap.String("migrationsPath", migrationsPath),
			zap.Error(err),
		)
		return fmt.Errorf("failed to create migrate instance with iofs: %w, path: %s, dbURL: %s", err, migrationsPath, dbURL)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		version, dirty, verr := m.Version()
		if verr == nil {
			s.logger.Error("Migration error details", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	s.logger.Info("Database migrations applied using iofs")
	return nil
}

// TestIntegrationTestSuite запускает набор тестов
func TestIntegrationTestSuite(t *testing.T) {
	// Пропускаем тесты, если запущены с флагом -short
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	// Проверяем доступность Docker перед запуском
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(IntegrationTestSuite))
}

func registrationPayload(email, mobile string) *validation.RegistrationPayload {
	return &validation.RegistrationPayload{
		Email:        email,
		MobileNumber: mobile,
		Password:     "password123",
		Role:         models.RoleBooker,
	}
}

// --- Сами Тестовые Функции ---

func (s *IntegrationTestSuite) TestRegisterAndLogin_Email() {
	t := s.T()
	ctx := context.Background()
	email := "testuser1@example.com"

	// 1. Регистрация
	registeredUser, tokens, err := s.authService.Register(ctx, registrationPayload(email, ""))
	require.NoError(t, err, "Register should succeed")
	require.NotNil(t, registeredUser, "Registered user should not be nil")
	require.Equal(t, email, registeredUser.Email, "Email should match")
	require.Equal(t, models.RoleBooker, registeredUser.Role, "Role should match")
	require.True(t, registeredUser.IsActive, "New user should be active")
	require.NotZero(t, registeredUser.ID, "User ID should be assigned")
	require.NotZero(t, registeredUser.DateJoined, "DateJoined should be set by the database")
	require.NotNil(t, tokens, "Tokens should be issued on registration")
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	// Попытка повторной регистрации с тем же email - должна быть ошибка по полю
	_, _, err = s.authService.Register(ctx, registrationPayload(email, ""))
	require.Error(t, err, "Registering with existing email should fail")
	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs), "Error should carry field errors")
	require.Equal(t, "A user with this email already exists.", verrs["email"])

	// 2. Логин
	user, loginTokens, err := s.authService.Login(ctx, &validation.LoginPayload{Email: email, Password: "password123"})
	require.NoError(t, err, "Login should succeed")
	require.Equal(t, registeredUser.ID, user.ID)
	require.NotEmpty(t, loginTokens.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, loginTokens.RefreshToken, "Refresh token should not be empty")
	require.NotZero(t, loginTokens.AtExpires, "Access token expiration should be set")
	require.NotZero(t, loginTokens.RtExpires, "Refresh token expiration should be set")

	// 3. Логин с неверным паролем
	_, _, err = s.authService.Login(ctx, &validation.LoginPayload{Email: email, Password: "wrongpassword"})
	require.Error(t, err, "Login with wrong password should fail")
	require.True(t, errors.Is(err, models.ErrInvalidCredentials), "Error should be ErrInvalidCredentials")

	// 4. Логин несуществующего пользователя
	_, _, err = s.authService.Login(ctx, &validation.LoginPayload{Email: "nonexistent@example.com", Password: "password123"})
	require.Error(t, err, "Login with non-existent user should fail")
	require.True(t, errors.Is(err, models.ErrInvalidCredentials), "Error should be ErrInvalidCredentials")
}

func (s *IntegrationTestSuite) TestRegisterAndLogin_Mobile() {
	t := s.T()
	ctx := context.Background()
	mobile := "9991234567"

	// 1. Регистрация по мобильному: email генерируется
	registeredUser, _, err := s.authService.Register(ctx, registrationPayload("", mobile))
	require.NoError(t, err, "Register by mobile should succeed")
	require.Equal(t, mobile+"@companio.local", registeredUser.Email, "Synthetic email should be derived from mobile")
	require.NotNil(t, registeredUser.MobileNumber)
	require.Equal(t, mobile, *registeredUser.MobileNumber)

	// Повторная регистрация с тем же мобильным - ошибка по полю
	_, _, err = s.authService.Register(ctx, registrationPayload("", mobile))
	require.Error(t, err, "Registering with existing mobile should fail")
	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Equal(t, "A user with this mobile number already exists.", verrs["mobile_number"])

	// 2. Логин по мобильному
	user, tokens, err := s.authService.Login(ctx, &validation.LoginPayload{MobileNumber: mobile, Password: "password123"})
	require.NoError(t, err, "Login by mobile should succeed")
	require.Equal(t, registeredUser.ID, user.ID)
	require.NotEmpty(t, tokens.AccessToken)
}

func (s *IntegrationTestSuite) TestRegister_SyntheticEmailCollision() {
	t := s.T()
	ctx := context.Background()
	mobile := "9995554433"

	// Занимаем базовый синтетический адрес обычной email-регистрацией
	_, _, err := s.authService.Register(ctx, registrationPayload(mobile+"@companio.local", ""))
	require.NoError(t, err)

	// Регистрация по мобильному должна уйти на счетчик "+1"
	user, _, err := s.authService.Register(ctx, registrationPayload("", mobile))
	require.NoError(t, err, "Register should step over the taken synthetic email")
	require.Equal(t, mobile+"+1@companio.local", user.Email)
}

func (s *IntegrationTestSuite) TestRegister_ConcurrentSameMobile() {
	t := s.T()
	ctx := context.Background()
	mobile := "9990001122"

	// Гонка регистраций на один мобильный: уникальный индекс в БД
	// пропускает ровно одну, остальные получают ошибку по полю.
	const goroutines = 4
	var wg sync.WaitGroup
	errCh := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.authService.Register(ctx, registrationPayload("", mobile))
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var succeeded int
	for err := range errCh {
		if err == nil {
			succeeded++
			continue
		}
		var verrs models.ValidationErrors
		require.True(t, errors.As(err, &verrs), "losers should get field errors, got: %v", err)
		require.Equal(t, "A user with this mobile number already exists.", verrs["mobile_number"])
	}
	require.Equal(t, 1, succeeded, "exactly one registration should win the race")

	users, err := s.userRepo.GetUserByMobile(ctx, mobile)
	require.NoError(t, err)
	require.NotNil(t, users)
}

func (s *IntegrationTestSuite) TestLogin_InactiveUser() {
	t := s.T()
	ctx := context.Background()
	email := "inactive@example.com"

	registeredUser, _, err := s.authService.Register(ctx, registrationPayload(email, ""))
	require.NoError(t, err)

	// Деактивируем пользователя напрямую в БД
	_, err = s.pgPool.Exec(ctx, "UPDATE users SET is_active = FALSE WHERE id = $1", registeredUser.ID)
	require.NoError(t, err)

	_, _, err = s.authService.Login(ctx, &validation.LoginPayload{Email: email, Password: "password123"})
	require.Error(t, err, "Login for inactive user should fail")
	require.True(t, errors.Is(err, models.ErrInvalidCredentials), "Error should be ErrInvalidCredentials, not a distinct inactive error")
}

func (s *IntegrationTestSuite) TestRepository_GetUserByID() {
	t := s.T()
	ctx := context.Background()

	registeredUser, _, err := s.authService.Register(ctx, registrationPayload("byid@example.com", ""))
	require.NoError(t, err)

	fetched, err := s.userRepo.GetUserByID(ctx, registeredUser.ID)
	require.NoError(t, err)
	require.Equal(t, registeredUser.Email, fetched.Email)
	require.NotEmpty(t, fetched.PasswordHash, "Repository should return the stored hash")
}
