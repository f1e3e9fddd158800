package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/handler"
	"github.com/EgehanKilicarslan/library-api/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Auth      *handler.AuthHandler
	Book      *handler.BookHandler
	User      *handler.UserHandler
	Borrowing *handler.BorrowingHandler
	Health    *handler.HealthHandler
}

func SetupRouter(
	cfg *config.Config,
	logger *slog.Logger,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter middleware.RateLimiter,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.SetTrustedProxies(nil)
	r.Use(
		middleware.RequestID(logger),
		middleware.Recovery(logger),
		cors.New(corsConfig(cfg)),
		sessions.Sessions(cfg.CookieName, sessionStore(cfg)),
	)
	r.NoRoute(middleware.NoRoute)

	requireAuth := authMiddleware.RequireAuth()
	can := middleware.RequireCapability
	rateLimited := middleware.RateLimit(rateLimiter, logger)

	v1 := r.Group("/api/v1")

	// Public routes
	v1.GET("/health", h.Health.Health)

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", h.Auth.Signup)
		authGroup.POST("/signin", h.Auth.Signin)
		authGroup.POST("/signout", requireAuth, h.Auth.Signout)
		authGroup.POST("/forgetPassword", h.Auth.ForgetPassword)
		authGroup.PATCH("/resetPassword", h.Auth.ResetPassword)
	}

	books := v1.Group("/books")
	{
		books.GET("", rateLimited, h.Book.List)
		books.GET("/:id", rateLimited, h.Book.Get)
		books.POST("", requireAuth, can(config.CapManageCatalog), h.Book.Create)
		books.PUT("/:id", requireAuth, can(config.CapManageCatalog), h.Book.Update)
		books.DELETE("/:id", requireAuth, can(config.CapManageCatalog), h.Book.Delete)
	}

	// Protected API routes
	borrowing := v1.Group("/borrowing", requireAuth)
	{
		borrowing.POST("/checkOut", can(config.CapBorrow), h.Borrowing.CheckOut)
		borrowing.PUT("/return", can(config.CapBorrow), h.Borrowing.Return)

		borrowing.GET("/me", can(config.CapViewOwnBorrowings), h.Borrowing.Mine)
		borrowing.GET("/overdue/me", can(config.CapViewOwnBorrowings), h.Borrowing.MyOverdue)

		reports := borrowing.Group("", can(config.CapViewReports))
		reports.GET("/overdue", h.Borrowing.Overdue)
		reports.GET("/overdue/lastMonth", h.Borrowing.OverdueLastMonth)
		reports.GET("/overdue/lastMonthxlsx", h.Borrowing.OverdueLastMonthXLSX)
		reports.GET("/inPeriod", h.Borrowing.InPeriod)
		reports.GET("/inPeriodxlsx", h.Borrowing.InPeriodXLSX)
		reports.GET("/lastMonth", h.Borrowing.LastMonth)
		reports.GET("/lastMonthxlsx", h.Borrowing.LastMonthXLSX)

		borrowing.GET("/overdue/:userId", rateLimited, can(config.CapViewOwnBorrowings), h.Borrowing.OverdueForUser)
		borrowing.GET("/:userId", rateLimited, can(config.CapViewOwnBorrowings), h.Borrowing.ForUser)
	}

	users := v1.Group("/users", requireAuth)
	{
		users.GET("/me", h.User.GetMe)
		users.PUT("/me", h.User.UpdateMe)

		admin := users.Group("", can(config.CapManageUsers))
		admin.GET("", h.User.List)
		admin.POST("", h.User.Create)
		admin.GET("/:id", h.User.Get)
		admin.PUT("/:id", h.User.Update)
		admin.DELETE("/:id", h.User.Delete)
	}

	return r
}

func sessionStore(cfg *config.Config) sessions.Store {
	store := cookie.NewStore([]byte(cfg.CookieSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.CookieMaxAge),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins := strings.Split(cfg.CORSOrigin, ",")
	if len(origins) == 1 && strings.TrimSpace(origins[0]) == "*" {
		// Credentialed requests cannot use a literal wildcard
		corsCfg.AllowOriginFunc = func(string) bool { return true }
		return corsCfg
	}
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, origin)
		}
	}
	return corsCfg
}
