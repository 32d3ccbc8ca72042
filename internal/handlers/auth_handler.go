package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
	"github.com/smarttransit/bus-tracking-backend/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{
		IPAddress: utils.ClientIP(c),
		UserAgent: utils.UserAgent(c),
	}
}

func authBody(result *models.AuthResult) gin.H {
	body := gin.H{
		"user_id":    result.UserID,
		"user_type":  result.UserType,
		"full_name":  result.FullName,
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
	}
	if result.RefreshToken != "" {
		body["refresh_token"] = result.RefreshToken
	}
	return body
}

// Register handles POST /api/v1/auth?action=register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registration successful", authBody(result))
}

// Login handles POST /api/v1/auth?action=login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", authBody(result))
}

// Refresh handles POST /api/v1/auth?action=refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Token refreshed", authBody(result))
}

// Logout handles POST /api/v1/auth?action=logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken, clientInfo(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Logged out successfully", nil)
}
