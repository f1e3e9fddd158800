package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv             string
	LogLevel           slog.Level
	ApiServicePort     string
	CORSOrigin         string
	PostgreSQLHost     string
	PostgreSQLPort     int64
	PostgreSQLUser     string
	PostgreSQLPassword string
	PostgreSQLDatabase string
	RedisHost          string
	RedisPort          int64
	RedisPassword      string
	RedisDatabase      int64
	JWTSecret          string
	JWTExpiresIn       int64 // Token lifetime in seconds
	CookieName         string
	CookieSecret       string
	CookieMaxAge       int64 // Session cookie lifetime in seconds
	BcryptCost         int64
	LoanPeriodDays     int64
	MaxOpenBorrowings  int64
	ResetCodeTTL       int64 // Password reset code lifetime in seconds
	RateLimitRequests  int64
	RateLimitWindow    int64 // Rate limit window in seconds
	SMTPHost           string
	SMTPPort           int64
	SMTPUser           string
	SMTPPassword       string
	MailFrom           string
}

// LoadConfig reads the process environment, after merging an optional .env file.
func LoadConfig() *Config {
	// Missing .env is normal in containers
	_ = godotenv.Load()

	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),              // Default development
		LogLevel:           getLogLevel(),                                 // Default INFO
		ApiServicePort:     getEnv("API_SERVICE_PORT", "8080"),            // Default 8080
		CORSOrigin:         getEnv("CORS_ORIGIN", "*"),                    // Default any origin
		PostgreSQLHost:     getEnv("POSTGRESQL_HOST", "db"),               // Default db
		PostgreSQLPort:     getEnvAsInt64("POSTGRESQL_PORT", 5432),        // Default 5432
		PostgreSQLUser:     getEnv("POSTGRESQL_USER", "library_user"),     // Default user
		PostgreSQLPassword: getEnv("POSTGRESQL_PASSWORD", "library_pass"), // Default password
		PostgreSQLDatabase: getEnv("POSTGRESQL_DATABASE", "library_db"),   // Default database name
		RedisHost:          getEnv("REDIS_HOST", "redis"),                 // Default redis
		RedisPort:          getEnvAsInt64("REDIS_PORT", 6379),             // Default 6379
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),                  // Default empty
		RedisDatabase:      getEnvAsInt64("REDIS_DATABASE", 0),            // Default 0
		JWTSecret:          getEnv("JWT_SECRET", "library_secret"),        // Default secret key
		JWTExpiresIn:       getEnvAsInt64("JWT_EXPIRES_IN", 172800),       // Default 2 days
		CookieName:         getEnv("COOKIE_NAME", "library_session"),      // Default cookie name
		CookieSecret:       getEnv("COOKIE_SECRET", "library_cookie"),     // Default cookie signing key
		CookieMaxAge:       getEnvAsInt64("COOKIE_MAX_AGE", 172800),       // Default 2 days
		BcryptCost:         getEnvAsInt64("BCRYPT_COST", 10),              // Default bcrypt.DefaultCost
		LoanPeriodDays:     getEnvAsInt64("LOAN_PERIOD_DAYS", 7),          // Default 1 week
		MaxOpenBorrowings:  getEnvAsInt64("MAX_OPEN_BORROWINGS", 10),      // Default 10 books per reader
		ResetCodeTTL:       getEnvAsInt64("RESET_CODE_TTL", 600),          // Default 10 minutes
		RateLimitRequests:  getEnvAsInt64("RATE_LIMIT_REQUESTS", 100),     // Default 100 requests
		RateLimitWindow:    getEnvAsInt64("RATE_LIMIT_WINDOW", 900),       // Default 15 minutes
		SMTPHost:           getEnv("SMTP_HOST", ""),                       // Default disabled
		SMTPPort:           getEnvAsInt64("SMTP_PORT", 465),               // Default SMTPS
		SMTPUser:           getEnv("SMTP_USER", ""),                       // Default empty
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),                   // Default empty
		MailFrom:           getEnv("MAIL_FROM", "Library <no-reply@library.local>"),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.AppEnv) == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
