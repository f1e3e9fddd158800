package models

import "time"

// Borrowing is one checkout in the ledger. ReturnedAt stays nil until the
// copy comes back; only one open row may exist per (user, book).
type Borrowing struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_borrowings_open,where:returned_at IS NULL" json:"userId"`
	BookID     uint       `gorm:"not null;index;uniqueIndex:idx_borrowings_open,where:returned_at IS NULL" json:"bookId"`
	BorrowedAt time.Time  `gorm:"not null;index" json:"borrowedDate"`
	DueAt      time.Time  `gorm:"not null;index" json:"dueDate"`
	ReturnedAt *time.Time `json:"returnedDate"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
}

// TableName overrides the table name
func (Borrowing) TableName() string {
	return "borrowings"
}

// IsReturned reports whether the copy has been given back
func (b *Borrowing) IsReturned() bool {
	return b.ReturnedAt != nil
}

// IsOverdue reports whether the copy is still out past its due date
func (b *Borrowing) IsOverdue(now time.Time) bool {
	return b.ReturnedAt == nil && b.DueAt.Before(now)
}
