package handler

import (
	"companio-server/internal/config"
	"companio-server/internal/interfaces"
	"companio-server/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	tokenService service.TokenService
	userRepo     interfaces.UserRepository
	cfg          *config.Config
}

func NewAuthHandler(authService service.AuthService, tokenService service.TokenService, userRepo interfaces.UserRepository, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
		userRepo:     userRepo,
		cfg:          cfg,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/token/refresh", h.refresh)
	}

	protected := router.Group("/api")
	protected.Use(h.AuthMiddleware())
	{
		protected.GET("/me", h.getMe)
	}
}
