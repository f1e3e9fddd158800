package service

import (
	"errors"
	"log/slog"

	"github.com/gosimple/slug"

	"github.com/EgehanKilicarslan/library-api/internal/database/models"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
)

// CreateBookInput is a new catalog entry. A nil Active means true.
type CreateBookInput struct {
	Title             string
	ISBN              string
	Author            string
	Description       string
	ShelfLocation     string
	AvailableQuantity int
	Active            *bool
}

// UpdateBookInput carries a partial update; nil fields are unchanged
type UpdateBookInput struct {
	Title             *string
	ISBN              *string
	Author            *string
	Description       *string
	ShelfLocation     *string
	AvailableQuantity *int
	Active            *bool
}

// BookService defines the interface for catalog business logic
type BookService interface {
	ListBooks(query repository.ListQuery) ([]models.Book, int64, error)
	GetBook(bookID uint) (*models.Book, error)
	CreateBook(input CreateBookInput) (*models.Book, error)
	UpdateBook(bookID uint, input UpdateBookInput) (*models.Book, error)
	DeleteBook(bookID uint) error
}

type bookService struct {
	bookRepo repository.BookRepository
	logger   *slog.Logger
}

// NewBookService creates a new book service instance
func NewBookService(bookRepo repository.BookRepository, logger *slog.Logger) BookService {
	return &bookService{
		bookRepo: bookRepo,
		logger:   logger,
	}
}

func (s *bookService) ListBooks(query repository.ListQuery) ([]models.Book, int64, error) {
	return s.bookRepo.List(query)
}

func (s *bookService) GetBook(bookID uint) (*models.Book, error) {
	return s.bookRepo.FindByID(bookID)
}

func (s *bookService) CreateBook(input CreateBookInput) (*models.Book, error) {
	bookSlug, err := s.uniqueSlug(input.Title, 0)
	if err != nil {
		return nil, err
	}
	if err := s.ensureISBNFree(input.ISBN, 0); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	book := &models.Book{
		Title:             input.Title,
		ISBN:              input.ISBN,
		Author:            input.Author,
		Description:       input.Description,
		ShelfLocation:     input.ShelfLocation,
		AvailableQuantity: input.AvailableQuantity,
		Active:            active,
		Slug:              bookSlug,
	}

	if err := s.bookRepo.Create(book); err != nil {
		if errors.Is(err, repository.ErrBookConflict) {
			return nil, ErrTitleAlreadyExists
		}
		s.logger.Error("❌ [BookService] Failed to create book", "error", err)
		return nil, err
	}

	s.logger.Info("📚 [BookService] Book created", "book_id", book.ID, "slug", book.Slug)
	return book, nil
}

func (s *bookService) UpdateBook(bookID uint, input UpdateBookInput) (*models.Book, error) {
	book, err := s.bookRepo.FindByID(bookID)
	if err != nil {
		return nil, err
	}

	// Only columns named in the request are written; available_quantity in
	// particular moves with every checkout and return.
	changes := map[string]interface{}{}
	if input.Title != nil && *input.Title != book.Title {
		bookSlug, err := s.uniqueSlug(*input.Title, book.ID)
		if err != nil {
			return nil, err
		}
		changes["title"] = *input.Title
		changes["slug"] = bookSlug
	}
	if input.ISBN != nil && *input.ISBN != book.ISBN {
		if err := s.ensureISBNFree(*input.ISBN, book.ID); err != nil {
			return nil, err
		}
		changes["isbn"] = *input.ISBN
	}
	if input.Author != nil {
		changes["author"] = *input.Author
	}
	if input.Description != nil {
		changes["description"] = *input.Description
	}
	if input.ShelfLocation != nil {
		changes["shelf_location"] = *input.ShelfLocation
	}
	if input.AvailableQuantity != nil {
		changes["available_quantity"] = *input.AvailableQuantity
	}
	if input.Active != nil {
		changes["active"] = *input.Active
	}

	if err := s.bookRepo.Update(book.ID, changes); err != nil {
		if errors.Is(err, repository.ErrBookConflict) {
			return nil, ErrTitleAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("✏️ [BookService] Book updated", "book_id", book.ID, "fields", len(changes))
	return s.bookRepo.FindByID(book.ID)
}

func (s *bookService) DeleteBook(bookID uint) error {
	if err := s.bookRepo.Delete(bookID); err != nil {
		if errors.Is(err, repository.ErrHasOpenBorrowings) {
			s.logger.Warn("⚠️ [BookService] Refusing to delete borrowed book", "book_id", bookID)
			return ErrBookHasOpenBorrowings
		}
		return err
	}

	s.logger.Info("🗑️ [BookService] Book deleted", "book_id", bookID)
	return nil
}

// uniqueSlug derives the slug for title and checks no other book owns it
func (s *bookService) uniqueSlug(title string, selfID uint) (string, error) {
	bookSlug := slug.Make(title)
	if bookSlug == "" {
		return "", ErrInvalidTitle
	}

	existing, err := s.bookRepo.FindBySlug(bookSlug)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return bookSlug, nil
		}
		return "", err
	}
	if existing.ID != selfID {
		return "", ErrTitleAlreadyExists
	}
	return bookSlug, nil
}

func (s *bookService) ensureISBNFree(isbn string, selfID uint) error {
	existing, err := s.bookRepo.FindByISBN(isbn)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrISBNAlreadyExists
	}
	return nil
}

// Service errors
var (
	ErrTitleAlreadyExists    = errors.New("title already exists")
	ErrISBNAlreadyExists     = errors.New("ISBN already exists")
	ErrInvalidTitle          = errors.New("title must contain letters or digits")
	ErrBookHasOpenBorrowings = errors.New("book has open borrowings")
)
