package handler

import (
	"net/http"

	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler вход и выход пользователя сессии (без проверки пароля)
type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

// GetMe обрабатывает GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.UserResponse{User: user, Authenticated: user != nil})
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	user, err := h.authService.Login(c.Request.Context(), session, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.UserResponse{User: user, Authenticated: true})
}

// Logout обрабатывает POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), session); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Logged out"})
}
