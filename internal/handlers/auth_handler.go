package handlers

import (
	"clouddrive/internal/middleware"
	"clouddrive/internal/services"
	"clouddrive/internal/utils"
	"clouddrive/internal/validators"
	"clouddrive/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	local       bool
	audit       *logger.AuditLogger
}

// NewAuthHandler serves /me for every provider. Register, login and refresh
// exist only when this server issues the tokens itself (local is true).
// audit may be nil.
func NewAuthHandler(authService services.AuthService, local bool, audit *logger.AuditLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		local:       local,
		audit:       audit,
	}
}

func (h *AuthHandler) record(c *gin.Context, event, userID string, success bool) {
	if h.audit == nil {
		return
	}
	h.audit.LogAuthEvent(event, userID, c.ClientIP(), c.Request.UserAgent(), success)
}

func (h *AuthHandler) LocalAccounts() bool {
	return h.local
}

func (h *AuthHandler) Register(c *gin.Context) {
	var request validators.RegisterRequest
	if !bindJSON(c, &request) {
		return
	}
	if validationFailed(c, validators.ValidateRegister(&request)) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &services.RegisterInput{
		Email:    request.Email,
		Password: request.Password,
		FullName: request.FullName,
	})
	if err != nil {
		h.record(c, "register", "", false)
		utils.HandleServiceError(c, err, "REGISTRATION_FAILED", "Failed to register")
		return
	}
	h.record(c, "register", result.User.ID.Hex(), true)

	utils.CreatedResponse(c, "Registration successful", result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if !bindJSON(c, &request) {
		return
	}
	if validationFailed(c, validators.ValidateLogin(&request)) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &services.LoginInput{
		Email:    request.Email,
		Password: request.Password,
	})
	if err != nil {
		h.record(c, "login", "", false)
		utils.HandleServiceError(c, err, "LOGIN_FAILED", "Failed to log in")
		return
	}
	h.record(c, "login", result.User.ID.Hex(), true)

	utils.SuccessResponse(c, "Login successful", result)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var request validators.RefreshTokenRequest
	if !bindJSON(c, &request) {
		return
	}
	if validationFailed(c, validators.ValidateRefreshToken(&request)) {
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), request.RefreshToken)
	if err != nil {
		h.record(c, "refresh", "", false)
		utils.HandleServiceError(c, err, "REFRESH_FAILED", "Failed to refresh token")
		return
	}

	utils.SuccessResponse(c, "Token refreshed", tokens)
}

// Me describes the caller as seen by the identity provider.
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.authService.Me(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		utils.HandleServiceError(c, err, "PROFILE_FETCH_FAILED", "Failed to load account")
		return
	}

	utils.SuccessResponse(c, "Account retrieved", account)
}
