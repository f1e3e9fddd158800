package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/middleware"
	"github.com/EgehanKilicarslan/library-api/internal/response"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(service service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Request DTOs
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Code     string `json:"code" binding:"required,len=6,numeric"`
	Password string `json:"password" binding:"required,min=6"`
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [AuthHandler] Invalid signup request", "error", err)
		bindingError(c, err)
		return
	}

	user, token, err := h.service.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	if !h.startSession(c, token) {
		return
	}

	response.Success(c, http.StatusCreated, user, response.SuccessMessage("Signed up successfully"))
}

// Signin handles POST /auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [AuthHandler] Invalid signin request", "error", err)
		bindingError(c, err)
		return
	}

	user, token, err := h.service.Signin(req.Email, req.Password)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	if !h.startSession(c, token) {
		return
	}

	response.Success(c, http.StatusCreated, user, response.SuccessMessage("Signed in successfully"))
}

// Signout handles POST /auth/signout
func (h *AuthHandler) Signout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true})
	if err := session.Save(); err != nil {
		h.logger.Error("❌ [AuthHandler] Failed to clear session", "error", err)
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil, response.SuccessMessage("Signed out successfully"))
}

// ForgetPassword handles POST /auth/forgetPassword
func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	if err := h.service.ForgetPassword(req.Email); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, nil,
		response.SuccessMessage("Reset password code sent successfully"),
		response.InfoMessage("Please check your email"),
	)
}

// ResetPassword handles PATCH /auth/resetPassword
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, token, err := h.service.ResetPassword(req.Code, req.Password)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	if !h.startSession(c, token) {
		return
	}

	response.Success(c, http.StatusOK, user, response.SuccessMessage("Password reset successfully"))
}

// startSession stores the token in the signed session cookie
func (h *AuthHandler) startSession(c *gin.Context, token string) bool {
	session := sessions.Default(c)
	session.Set(middleware.SessionTokenKey, token)
	if err := session.Save(); err != nil {
		h.logger.Error("❌ [AuthHandler] Failed to save session", "error", err)
		response.Internal(c, err)
		return false
	}
	return true
}
