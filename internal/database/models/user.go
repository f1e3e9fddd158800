package models

import (
	"time"

	"github.com/EgehanKilicarslan/library-api/internal/config"
)

// User represents a library account
type User struct {
	ID                uint        `gorm:"primarykey" json:"id"`
	Email             string      `gorm:"uniqueIndex;not null" json:"email"`
	Name              string      `gorm:"not null" json:"name"`
	Password          string      `gorm:"not null" json:"-"`
	Role              config.Role `gorm:"not null;default:BORROWER" json:"role"`
	PasswordChangedAt time.Time   `gorm:"not null" json:"passwordChangeAt"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// Can reports whether the user's role grants the capability
func (u *User) Can(c config.Capability) bool {
	return u.Role.Can(c)
}

// TokenIsStale reports whether a session token issued at issuedAt predates
// the last password change
func (u *User) TokenIsStale(issuedAt time.Time) bool {
	return u.PasswordChangedAt.UnixMilli() > issuedAt.UnixMilli()
}
