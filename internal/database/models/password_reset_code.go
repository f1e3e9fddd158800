package models

import "time"

// PasswordResetCode stores the hash of a one-time numeric reset code
type PasswordResetCode struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"not null;index" json:"email"`
	CodeHash  string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name
func (PasswordResetCode) TableName() string {
	return "password_reset_codes"
}
