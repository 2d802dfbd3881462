package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/istanbulinstitute/educrm-exam/internal/middleware"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
	"github.com/istanbulinstitute/educrm-exam/internal/validator"
)

// AuthHandler handles staff authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates email + password, returns a signed admin JWT.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetAdminProfile godoc
// GET /api/v1/auth/admin/me
// Returns the identity carried by the caller's token.
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":    claims.UserID,
			"email": claims.Email,
		},
	})
}
