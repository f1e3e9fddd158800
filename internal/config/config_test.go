package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Success(t *testing.T) {
	t.Setenv("API_SERVICE_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOAN_PERIOD_DAYS", "14")
	t.Setenv("MAX_OPEN_BORROWINGS", "3")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("REDIS_DATABASE", "2")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.ApiServicePort)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, int64(14), cfg.LoanPeriodDays)
	assert.Equal(t, int64(3), cfg.MaxOpenBorrowings)
	assert.Equal(t, int64(5), cfg.RateLimitRequests)
	assert.Equal(t, int64(2), cfg.RedisDatabase)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.ApiServicePort)
	assert.Equal(t, int64(7), cfg.LoanPeriodDays)
	assert.Equal(t, int64(10), cfg.MaxOpenBorrowings)
	assert.Equal(t, int64(172800), cfg.JWTExpiresIn)
	assert.Equal(t, int64(600), cfg.ResetCodeTTL)
	assert.Equal(t, int64(100), cfg.RateLimitRequests)
	assert.Equal(t, int64(900), cfg.RateLimitWindow)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("LOAN_PERIOD_DAYS", "a week")
	t.Setenv("LOG_LEVEL", "verbose")

	cfg := LoadConfig()

	assert.Equal(t, int64(7), cfg.LoanPeriodDays)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		name string
		role Role
		cap  Capability
		want bool
	}{
		{"borrower can borrow", RoleBorrower, CapBorrow, true},
		{"borrower views own borrowings", RoleBorrower, CapViewOwnBorrowings, true},
		{"borrower cannot manage catalog", RoleBorrower, CapManageCatalog, false},
		{"borrower cannot manage users", RoleBorrower, CapManageUsers, false},
		{"borrower cannot view reports", RoleBorrower, CapViewReports, false},
		{"admin manages catalog", RoleAdmin, CapManageCatalog, true},
		{"admin views reports", RoleAdmin, CapViewReports, true},
		{"unknown role has nothing", Role("GUEST"), CapBorrow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Can(tt.cap))
		})
	}
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleAdmin))
	assert.True(t, IsValidRole(RoleBorrower))
	assert.False(t, IsValidRole(Role("admin")))
	assert.Equal(t, []string{"BORROWER", "ADMIN"}, ValidRoles())
}
