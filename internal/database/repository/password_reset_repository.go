package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/library-api/internal/database/models"
)

// PasswordResetRepository defines the interface for reset code operations
type PasswordResetRepository interface {
	Replace(code *models.PasswordResetCode) error
	FindValid(codeHash string, now time.Time) (*models.PasswordResetCode, error)
	DeleteByEmail(email string) error
	DeleteExpired(now time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new password reset repository instance
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

// Replace drops any outstanding codes for the email and stores the new one
func (r *passwordResetRepository) Replace(code *models.PasswordResetCode) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", code.Email).Delete(&models.PasswordResetCode{}).Error; err != nil {
			return err
		}
		if err := tx.Create(code).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrResetCodeConflict
			}
			return err
		}
		return nil
	})
}

func (r *passwordResetRepository) FindValid(codeHash string, now time.Time) (*models.PasswordResetCode, error) {
	var code models.PasswordResetCode
	err := r.db.Where("code_hash = ?", codeHash).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetCodeNotFound
		}
		return nil, err
	}

	if !now.Before(code.ExpiresAt) {
		return nil, ErrResetCodeExpired
	}

	return &code, nil
}

func (r *passwordResetRepository) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.PasswordResetCode{}).Error
}

func (r *passwordResetRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&models.PasswordResetCode{})
	return result.RowsAffected, result.Error
}

// Repository errors
var (
	ErrResetCodeNotFound = errors.New("reset code not found")
	ErrResetCodeExpired  = errors.New("reset code expired")
	ErrResetCodeConflict = errors.New("reset code already issued")
)
