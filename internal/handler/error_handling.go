package handler

import (
	"errors"
	"net/http"

	"companio-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError maps service-layer errors onto HTTP responses.
// Validation errors keep their field-keyed payload; credential failures stay
// opaque; unexpected errors become an anonymous 500.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	var validationErrs models.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Message: "Validation failed", Errors: validationErrs}
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Message: "Invalid email or password"}
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Message: "User not found"}
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Message: "Token has expired"}
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Message: "Token is invalid or malformed"}
	case errors.Is(err, models.ErrStoreUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Message: "Service temporarily unavailable, please retry"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
