package models

import "time"

// Book is a catalog entry; AvailableQuantity counts copies on the shelf
type Book struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	Title             string    `gorm:"not null" json:"title"`
	ISBN              string    `gorm:"column:isbn;uniqueIndex;not null" json:"ISBN"`
	Author            string    `gorm:"not null" json:"author"`
	Description       string    `gorm:"not null" json:"description"`
	ShelfLocation     string    `gorm:"not null" json:"shelfLocation"`
	AvailableQuantity int       `gorm:"not null;check:chk_books_available_quantity,available_quantity >= 0" json:"availableQuantity"`
	Active            bool      `gorm:"not null" json:"active"`
	Slug              string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (Book) TableName() string {
	return "books"
}

// IsAvailable reports whether a copy can be checked out
func (b *Book) IsAvailable() bool {
	return b.Active && b.AvailableQuantity > 0
}
