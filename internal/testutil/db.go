package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gosimple/slug"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/models"
)

// TestConfig returns a config with cheap hashing and deterministic limits
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:            "test",
		ApiServicePort:    "8080",
		CORSOrigin:        "*",
		JWTSecret:         "test-secret",
		JWTExpiresIn:      3600,
		CookieName:        "library_session",
		CookieSecret:      "test-cookie-secret",
		CookieMaxAge:      172800,
		BcryptCost:        int64(bcrypt.MinCost),
		LoanPeriodDays:    7,
		MaxOpenBorrowings: 10,
		ResetCodeTTL:      600,
		RateLimitRequests: 100,
		RateLimitWindow:   900,
	}
}

// TestLogger discards all output
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the shared-cache database alive and serialises
// transactions the way row locks do on PostgreSQL.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Borrowing{},
		&models.PasswordResetCode{},
	))

	return db
}

// CreateUser inserts a user whose password is "password123"
func CreateUser(t *testing.T, db *gorm.DB, email string, role config.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:    email,
		Name:     strings.Split(email, "@")[0],
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateBook inserts an active book with the given number of copies
func CreateBook(t *testing.T, db *gorm.DB, title string, quantity int) *models.Book {
	t.Helper()

	bookSlug := slug.Make(title)
	book := &models.Book{
		Title:             title,
		ISBN:              "isbn-" + bookSlug,
		Author:            "Author of " + title,
		Description:       "About " + title,
		ShelfLocation:     "A1",
		AvailableQuantity: quantity,
		Active:            true,
		Slug:              bookSlug,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

// ReloadBook reads the current row for a book
func ReloadBook(t *testing.T, db *gorm.DB, id uint) *models.Book {
	t.Helper()

	var book models.Book
	require.NoError(t, db.First(&book, id).Error)
	return &book
}
