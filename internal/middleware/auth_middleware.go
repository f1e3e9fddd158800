package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/models"
	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/response"
)

const (
	// SessionTokenKey is the session field holding the signed token
	SessionTokenKey = "token"
	userContextKey  = "user"
)

// AuthMiddleware resolves the session cookie to a user
type AuthMiddleware struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(service service.AuthService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		service: service,
		logger:  logger,
	}
}

// RequireAuth validates the session token and stores the user in the context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := sessions.Default(c).Get(SessionTokenKey).(string)
		if token == "" {
			m.logger.Warn("⚠️ [Middleware] Missing session", "path", c.Request.URL.Path)
			response.Error(c, http.StatusUnauthorized, nil,
				response.ErrorMessage("Session expired, please login again"))
			return
		}

		user, err := m.service.ValidateSession(token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenStale):
				response.Error(c, http.StatusUnauthorized, err,
					response.ErrorMessage("You have changed your password recently, please login again"))
			case errors.Is(err, service.ErrInvalidToken):
				m.logger.Warn("⚠️ [Middleware] Invalid session token", "error", err)
				response.Error(c, http.StatusUnauthorized, err,
					response.ErrorMessage("Session expired, please login again"))
			default:
				m.logger.Error("❌ [Middleware] Session lookup failed", "error", err)
				response.Internal(c, err)
			}
			return
		}

		c.Set(userContextKey, user)
		m.logger.Debug("✅ [Middleware] Session validated", "user_id", user.ID)

		c.Next()
	}
}

// RequireCapability rejects users whose role lacks the capability.
// Must run after RequireAuth.
func RequireCapability(capability config.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.Can(capability) {
			response.Error(c, http.StatusUnauthorized, nil, response.ErrorMessage("You are not authorized"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
