package handler

import (
	"errors"
	"net/http"

	"companio-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// @Summary Получение информации о текущем пользователе
// @Description Возвращает публичное представление пользователя по токену
// @Tags user
// @Produce json
// @Success 200 {object} models.User "Информация о пользователе"
// @Failure 401 {object} models.ErrorResponse "Неавторизован"
// @Failure 404 {object} models.ErrorResponse "Пользователь не найден"
// @Security BearerAuth
// @Router /api/me [get]
func (h *AuthHandler) getMe(c *gin.Context) {
	userIDRaw, exists := c.Get("user_id")
	if !exists {
		zap.L().Error("User ID missing in context during /me request")
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	userID, ok := userIDRaw.(uuid.UUID)
	if !ok {
		zap.L().Error("Invalid user ID type in context during /me request")
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			zap.L().Warn("User not found for ID from token during /me request", zap.String("userID", userID.String()))
		}
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
