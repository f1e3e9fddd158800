package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EgehanKilicarslan/library-api/internal/database/models"
)

// BorrowingFilter narrows a ledger listing. Nil fields are ignored.
type BorrowingFilter struct {
	UserID       *uint
	BookID       *uint
	BorrowedFrom *time.Time
	BorrowedTo   *time.Time
	DueFrom      *time.Time
	OverdueAt    *time.Time // only loans still out with due date before this instant
}

// BorrowingRepository defines the interface for the borrowing ledger
type BorrowingRepository interface {
	CheckOut(userID, bookID uint, borrowedAt, dueAt time.Time, maxOpen int) (*models.Borrowing, error)
	Return(userID, bookID uint, returnedAt time.Time) (*models.Borrowing, error)
	List(filter BorrowingFilter) ([]models.Borrowing, error)
}

type borrowingRepository struct {
	db *gorm.DB
}

// NewBorrowingRepository creates a new borrowing repository instance
func NewBorrowingRepository(db *gorm.DB) BorrowingRepository {
	return &borrowingRepository{db: db}
}

// CheckOut records a loan and takes one copy off the shelf in a single
// transaction. maxOpen <= 0 disables the per-user cap.
func (r *borrowingRepository) CheckOut(userID, bookID uint, borrowedAt, dueAt time.Time, maxOpen int) (*models.Borrowing, error) {
	borrowing := &models.Borrowing{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: borrowedAt,
		DueAt:      dueAt,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// The user row lock serialises this user's checkouts so the cap
		// count below cannot be passed twice, and blocks a concurrent delete.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&models.User{}, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var sameBook int64
		if err := tx.Model(&models.Borrowing{}).
			Where("user_id = ? AND book_id = ? AND returned_at IS NULL", userID, bookID).
			Count(&sameBook).Error; err != nil {
			return err
		}
		if sameBook > 0 {
			return ErrAlreadyBorrowed
		}

		if maxOpen > 0 {
			var open int64
			if err := tx.Model(&models.Borrowing{}).
				Where("user_id = ? AND returned_at IS NULL", userID).
				Count(&open).Error; err != nil {
				return err
			}
			if open >= int64(maxOpen) {
				return ErrBorrowingLimitReached
			}
		}

		// Conditional decrement keeps available_quantity from going negative
		// when several readers race for the last copy.
		result := tx.Model(&models.Book{}).
			Where("id = ? AND active = ? AND available_quantity > 0", bookID, true).
			Update("available_quantity", gorm.Expr("available_quantity - ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoCopiesAvailable
		}

		if err := tx.Create(borrowing).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyBorrowed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return borrowing, nil
}

// Return closes the open loan for (user, book) and puts the copy back
func (r *borrowingRepository) Return(userID, bookID uint, returnedAt time.Time) (*models.Borrowing, error) {
	var borrowing models.Borrowing

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND book_id = ? AND returned_at IS NULL", userID, bookID).
			First(&borrowing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowingNotFound
			}
			return err
		}

		result := tx.Model(&models.Borrowing{}).
			Where("id = ? AND returned_at IS NULL", borrowing.ID).
			Update("returned_at", returnedAt)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBorrowingNotFound
		}

		return tx.Model(&models.Book{}).
			Where("id = ?", bookID).
			Update("available_quantity", gorm.Expr("available_quantity + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	borrowing.ReturnedAt = &returnedAt
	return &borrowing, nil
}

func (r *borrowingRepository) List(filter BorrowingFilter) ([]models.Borrowing, error) {
	var borrowings []models.Borrowing

	query := r.db.Model(&models.Borrowing{}).Preload("Book").Preload("User")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.BookID != nil {
		query = query.Where("book_id = ?", *filter.BookID)
	}
	if filter.BorrowedFrom != nil {
		query = query.Where("borrowed_at >= ?", *filter.BorrowedFrom)
	}
	if filter.BorrowedTo != nil {
		query = query.Where("borrowed_at <= ?", *filter.BorrowedTo)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_at >= ?", *filter.DueFrom)
	}
	if filter.OverdueAt != nil {
		query = query.Where("returned_at IS NULL AND due_at < ?", *filter.OverdueAt)
	}

	err := query.Order("borrowed_at DESC").Order("id DESC").Find(&borrowings).Error
	return borrowings, err
}

// countOpen counts loans still out for the given user_id or book_id column
func countOpen(tx *gorm.DB, column string, id uint) (int64, error) {
	var count int64
	err := tx.Model(&models.Borrowing{}).
		Where(column+" = ? AND returned_at IS NULL", id).
		Count(&count).Error
	return count, err
}

// Repository errors
var (
	ErrHasOpenBorrowings     = errors.New("open borrowings exist")
	ErrBorrowingNotFound     = errors.New("borrowing not found")
	ErrAlreadyBorrowed       = errors.New("book already borrowed by this user")
	ErrNoCopiesAvailable     = errors.New("no copies available")
	ErrBorrowingLimitReached = errors.New("borrowing limit reached")
)
