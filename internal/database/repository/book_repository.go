package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EgehanKilicarslan/library-api/internal/database/models"
)

// BookRepository defines the interface for catalog data operations
type BookRepository interface {
	Create(book *models.Book) error
	FindByID(id uint) (*models.Book, error)
	FindBySlug(slug string) (*models.Book, error)
	FindByISBN(isbn string) (*models.Book, error)
	Update(id uint, changes map[string]interface{}) error
	Delete(id uint) error
	List(query ListQuery) ([]models.Book, int64, error)
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository instance
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(book *models.Book) error {
	if err := r.db.Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrBookConflict
		}
		return err
	}
	return nil
}

func (r *bookRepository) FindByID(id uint) (*models.Book, error) {
	return r.findOne(r.db.Where("id = ?", id))
}

func (r *bookRepository) FindBySlug(slug string) (*models.Book, error) {
	return r.findOne(r.db.Where("slug = ?", slug))
}

func (r *bookRepository) FindByISBN(isbn string) (*models.Book, error) {
	return r.findOne(r.db.Where("isbn = ?", isbn))
}

func (r *bookRepository) findOne(query *gorm.DB) (*models.Book, error) {
	var book models.Book
	err := query.First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Update writes only the given columns so counters moved by concurrent
// checkouts and returns are left alone
func (r *bookRepository) Update(id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}

	result := r.db.Model(&models.Book{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrBookConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Delete removes a book that has no loans still out. The book row is locked
// first, so a checkout either commits before the count or fails afterwards.
func (r *bookRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&models.Book{}, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		open, err := countOpen(tx, "book_id", id)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrHasOpenBorrowings
		}

		return tx.Delete(&models.Book{}, id).Error
	})
}

func (r *bookRepository) List(query ListQuery) ([]models.Book, int64, error) {
	var books []models.Book
	var total int64

	filtered := r.db.Model(&models.Book{}).Scopes(searchScope(query.Search, bookSearchColumns))

	if err := filtered.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Model(&models.Book{}).
		Scopes(searchScope(query.Search, bookSearchColumns), sortScope(query.Sort)).
		Offset(query.Offset()).
		Limit(query.Limit).
		Find(&books).Error
	return books, total, err
}

// Repository errors
var (
	ErrBookNotFound = errors.New("book not found")
	ErrBookConflict = errors.New("book with the same title or ISBN already exists")
)
