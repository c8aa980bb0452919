package handler

import (
	"errors"
	"net/http"

	"companio-server/internal/models"
	"companio-server/internal/validation"

	"github.com/gin-gonic/gin"
)

// @Summary Регистрация нового пользователя
// @Description Создает аккаунт по email или мобильному номеру и сразу выдает пару токенов
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Данные для регистрации"
// @Success 201 {object} models.AuthResponse "Успешная регистрация"
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Router /auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request data: " + err.Error()})
		return
	}

	payload, validationErrs := validation.ValidateRegistration(validation.RegistrationInput{
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Phone:        req.Phone,
		Password:     req.Password,
		Password2:    req.Password2,
		Role:         req.Role,
	})
	if validationErrs != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "User registration failed",
			Errors:  validationErrs,
		})
		return
	}

	user, tokens, err := h.authService.Register(c.Request.Context(), payload)
	if err != nil {
		var ve models.ValidationErrors
		if errors.As(err, &ve) {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
				Message: "User registration failed",
				Errors:  ve,
			})
			return
		}
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()

	c.JSON(http.StatusCreated, models.AuthResponse{
		Message: "User registered successfully",
		User:    user,
		Tokens:  tokens,
	})
}

// @Summary Вход в систему
// @Description Аутентификация по email или мобильному номеру и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Данные для входа"
// @Success 200 {object} models.AuthResponse "Токены доступа"
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Failure 401 {object} models.ErrorResponse "Неверные учетные данные"
// @Router /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body: " + err.Error()})
		return
	}

	payload, validationErrs := validation.ValidateLogin(validation.LoginInput{
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
	})
	if validationErrs != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Login failed",
			Errors:  validationErrs,
		})
		return
	}

	user, tokens, err := h.authService.Login(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			// Не раскрываем, что именно не совпало
			message := "Invalid email or password"
			if payload.MobileNumber != "" {
				message = "Invalid mobile or password"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Message: message})
			return
		}
		handleServiceError(c, err)
		return
	}

	loginsTotal.Inc()

	c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		User:    user,
		Tokens:  tokens,
	})
}

// @Summary Обновление токенов
// @Description Получение новой пары токенов по refresh токену
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh токен"
// @Success 200 {object} models.TokenDetails "Новые токены"
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Failure 401 {object} models.ErrorResponse "Неверный или истекший токен"
// @Router /auth/token/refresh [post]
func (h *AuthHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Message: "Missing or invalid refresh token in request body: " + err.Error()})
		return
	}

	tokens, err := h.tokenService.Refresh(req.Refresh)
	if err != nil {
		tokenVerificationsTotal.WithLabelValues("refresh", "failure").Inc()
		handleServiceError(c, err)
		return
	}

	refreshesTotal.Inc()
	tokenVerificationsTotal.WithLabelValues("refresh", "success").Inc()

	c.JSON(http.StatusOK, tokens)
}
