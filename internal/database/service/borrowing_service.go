package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/models"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
)

// BorrowingService defines the checkout/return lifecycle and ledger reports
type BorrowingService interface {
	CheckOut(userID, bookID uint) (*models.Borrowing, error)
	Return(userID, bookID uint) (*models.Borrowing, error)

	ForUser(userID uint) ([]models.Borrowing, error)
	OverdueForUser(userID uint) ([]models.Borrowing, error)

	Overdue() ([]models.Borrowing, error)
	OverdueLastMonth() ([]models.Borrowing, error)
	LastMonth() ([]models.Borrowing, error)
	InPeriod(start, end time.Time) ([]models.Borrowing, error)
}

type borrowingService struct {
	borrowingRepo repository.BorrowingRepository
	bookRepo      repository.BookRepository
	userRepo      repository.UserRepository
	loanPeriod    time.Duration
	maxOpen       int
	now           func() time.Time
	logger        *slog.Logger
}

// NewBorrowingService creates a new borrowing service instance
func NewBorrowingService(
	borrowingRepo repository.BorrowingRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	cfg *config.Config,
	logger *slog.Logger,
) BorrowingService {
	return &borrowingService{
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		userRepo:      userRepo,
		loanPeriod:    time.Duration(cfg.LoanPeriodDays) * 24 * time.Hour,
		maxOpen:       int(cfg.MaxOpenBorrowings),
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger,
	}
}

func (s *borrowingService) CheckOut(userID, bookID uint) (*models.Borrowing, error) {
	book, err := s.bookRepo.FindByID(bookID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if !book.Active {
		return nil, ErrBookInactive
	}
	if book.AvailableQuantity <= 0 {
		return nil, ErrBookUnavailable
	}

	borrowedAt := s.now()
	borrowing, err := s.borrowingRepo.CheckOut(user.ID, book.ID, borrowedAt, borrowedAt.Add(s.loanPeriod), s.maxOpen)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoCopiesAvailable):
			return nil, ErrBookUnavailable
		case errors.Is(err, repository.ErrAlreadyBorrowed):
			return nil, ErrAlreadyBorrowed
		case errors.Is(err, repository.ErrBorrowingLimitReached):
			return nil, ErrBorrowingLimitReached
		}
		s.logger.Error("❌ [BorrowingService] Checkout failed", "user_id", userID, "book_id", bookID, "error", err)
		return nil, err
	}

	book.AvailableQuantity--
	borrowing.Book = book

	s.logger.Info("📕 [BorrowingService] Book checked out",
		"user_id", userID,
		"book_id", bookID,
		"due_at", borrowing.DueAt,
	)
	return borrowing, nil
}

func (s *borrowingService) Return(userID, bookID uint) (*models.Borrowing, error) {
	book, err := s.bookRepo.FindByID(bookID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}

	borrowing, err := s.borrowingRepo.Return(userID, bookID, s.now())
	if err != nil {
		if !errors.Is(err, repository.ErrBorrowingNotFound) {
			s.logger.Error("❌ [BorrowingService] Return failed", "user_id", userID, "book_id", bookID, "error", err)
		}
		return nil, err
	}

	book.AvailableQuantity++
	borrowing.Book = book

	s.logger.Info("📗 [BorrowingService] Book returned",
		"user_id", userID,
		"book_id", bookID,
		"overdue", borrowing.ReturnedAt.After(borrowing.DueAt),
	)
	return borrowing, nil
}

func (s *borrowingService) ForUser(userID uint) ([]models.Borrowing, error) {
	return s.borrowingRepo.List(repository.BorrowingFilter{UserID: &userID})
}

func (s *borrowingService) OverdueForUser(userID uint) ([]models.Borrowing, error) {
	now := s.now()
	return s.borrowingRepo.List(repository.BorrowingFilter{UserID: &userID, OverdueAt: &now})
}

func (s *borrowingService) Overdue() ([]models.Borrowing, error) {
	now := s.now()
	return s.borrowingRepo.List(repository.BorrowingFilter{OverdueAt: &now})
}

// OverdueLastMonth lists loans still out whose due date fell within the last month
func (s *borrowingService) OverdueLastMonth() ([]models.Borrowing, error) {
	now := s.now()
	monthAgo := now.AddDate(0, -1, 0)
	return s.borrowingRepo.List(repository.BorrowingFilter{DueFrom: &monthAgo, OverdueAt: &now})
}

func (s *borrowingService) LastMonth() ([]models.Borrowing, error) {
	now := s.now()
	monthAgo := now.AddDate(0, -1, 0)
	return s.borrowingRepo.List(repository.BorrowingFilter{BorrowedFrom: &monthAgo, BorrowedTo: &now})
}

func (s *borrowingService) InPeriod(start, end time.Time) ([]models.Borrowing, error) {
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}
	start, end = start.UTC(), end.UTC()
	return s.borrowingRepo.List(repository.BorrowingFilter{BorrowedFrom: &start, BorrowedTo: &end})
}

// Service errors
var (
	ErrBookInactive          = errors.New("book is not available for borrowing")
	ErrBookUnavailable       = errors.New("no copies of this book are available")
	ErrAlreadyBorrowed       = errors.New("you already borrowed this book")
	ErrBorrowingLimitReached = errors.New("borrowing limit reached, return a book first")
	ErrInvalidPeriod         = errors.New("endDate must not be before startDate")
)
