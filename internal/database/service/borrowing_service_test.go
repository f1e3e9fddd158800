package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/testutil"
)

func newBorrowingService(t *testing.T, cfg *config.Config) (*borrowingService, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	svc := NewBorrowingService(
		repository.NewBorrowingRepository(db),
		repository.NewBookRepository(db),
		repository.NewUserRepository(db),
		cfg,
		testutil.TestLogger(),
	).(*borrowingService)
	return svc, db
}

// at pins the service clock
func (s *borrowingService) at(now time.Time) {
	s.now = func() time.Time { return now }
}

func TestBorrowingService_CheckOutWithNoCopiesFails(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	book := testutil.CreateBook(t, db, "Dune", 0)

	_, err := svc.CheckOut(user.ID, book.ID)
	assert.ErrorIs(t, err, ErrBookUnavailable)
	assert.Equal(t, 0, testutil.ReloadBook(t, db, book.ID).AvailableQuantity)
}

func TestBorrowingService_CheckOutThenReturnRestoresQuantity(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	book := testutil.CreateBook(t, db, "Dune", 3)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.at(now)

	borrowing, err := svc.CheckOut(user.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, now, borrowing.BorrowedAt)
	assert.Equal(t, now.AddDate(0, 0, 7), borrowing.DueAt)
	assert.Equal(t, 2, borrowing.Book.AvailableQuantity)
	assert.Equal(t, 2, testutil.ReloadBook(t, db, book.ID).AvailableQuantity)

	svc.at(now.Add(48 * time.Hour))
	returned, err := svc.Return(user.ID, book.ID)
	require.NoError(t, err)
	assert.True(t, returned.IsReturned())
	assert.Equal(t, 3, returned.Book.AvailableQuantity)
	assert.Equal(t, 3, testutil.ReloadBook(t, db, book.ID).AvailableQuantity)
}

func TestBorrowingService_DoubleCheckOutFails(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	book := testutil.CreateBook(t, db, "Dune", 5)

	_, err := svc.CheckOut(user.ID, book.ID)
	require.NoError(t, err)

	_, err = svc.CheckOut(user.ID, book.ID)
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)
	assert.Equal(t, 4, testutil.ReloadBook(t, db, book.ID).AvailableQuantity)
}

func TestBorrowingService_ReborrowAfterReturn(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	book := testutil.CreateBook(t, db, "Dune", 1)

	_, err := svc.CheckOut(user.ID, book.ID)
	require.NoError(t, err)
	_, err = svc.Return(user.ID, book.ID)
	require.NoError(t, err)

	_, err = svc.CheckOut(user.ID, book.ID)
	require.NoError(t, err)

	history, err := svc.ForUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, 0, testutil.ReloadBook(t, db, book.ID).AvailableQuantity)
}

func TestBorrowingService_ReturnWithoutOpenLoan(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	book := testutil.CreateBook(t, db, "Dune", 1)

	_, err := svc.Return(user.ID, book.ID)
	assert.ErrorIs(t, err, repository.ErrBorrowingNotFound)
	assert.Equal(t, 1, testutil.ReloadBook(t, db, book.ID).AvailableQuantity)
}

func TestBorrowingService_MissingEntities(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	book := testutil.CreateBook(t, db, "Dune", 1)

	_, err := svc.CheckOut(user.ID, 999)
	assert.ErrorIs(t, err, repository.ErrBookNotFound)

	_, err = svc.CheckOut(999, book.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = svc.Return(user.ID, 999)
	assert.ErrorIs(t, err, repository.ErrBookNotFound)
}

func TestBorrowingService_InactiveBook(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	book := testutil.CreateBook(t, db, "Dune", 2)
	require.NoError(t, db.Model(book).Update("active", false).Error)

	_, err := svc.CheckOut(user.ID, book.ID)
	assert.ErrorIs(t, err, ErrBookInactive)
}

func TestBorrowingService_PerReaderCap(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.MaxOpenBorrowings = 2
	svc, db := newBorrowingService(t, cfg)
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)

	for i := 0; i < 2; i++ {
		book := testutil.CreateBook(t, db, fmt.Sprintf("Book %d", i), 1)
		_, err := svc.CheckOut(user.ID, book.ID)
		require.NoError(t, err)
	}

	extra := testutil.CreateBook(t, db, "One Too Many", 1)
	_, err := svc.CheckOut(user.ID, extra.ID)
	assert.ErrorIs(t, err, ErrBorrowingLimitReached)
}

func TestBorrowingService_ConcurrentCheckOutOfLastCopy(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	book := testutil.CreateBook(t, db, "Dune", 1)

	const readers = 8
	userIDs := make([]uint, readers)
	for i := range userIDs {
		userIDs[i] = testutil.CreateUser(t, db, fmt.Sprintf("reader%d@example.com", i), config.RoleBorrower).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for _, id := range userIDs {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := svc.CheckOut(userID, book.ID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrBookUnavailable)
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, testutil.ReloadBook(t, db, book.ID).AvailableQuantity)
}

func TestBorrowingService_OverdueExcludesReturned(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	ada := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	grace := testutil.CreateUser(t, db, "grace@example.com", config.RoleBorrower)
	late := testutil.CreateBook(t, db, "Late", 2)
	back := testutil.CreateBook(t, db, "Back", 2)

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.at(start)
	_, err := svc.CheckOut(ada.ID, late.ID)
	require.NoError(t, err)
	_, err = svc.CheckOut(ada.ID, back.ID)
	require.NoError(t, err)
	_, err = svc.CheckOut(grace.ID, late.ID)
	require.NoError(t, err)

	// Ada returns one book late; the others stay out past their due date
	svc.at(start.AddDate(0, 0, 10))
	_, err = svc.Return(ada.ID, back.ID)
	require.NoError(t, err)

	overdue, err := svc.Overdue()
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	for _, b := range overdue {
		assert.Nil(t, b.ReturnedAt)
		assert.Equal(t, late.ID, b.BookID)
	}

	mine, err := svc.OverdueForUser(ada.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, late.ID, mine[0].BookID)

	// Nothing is overdue before the loan period ends
	svc.at(start.AddDate(0, 0, 6))
	overdue, err = svc.Overdue()
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestBorrowingService_Reports(t *testing.T) {
	svc, db := newBorrowingService(t, testutil.TestConfig())
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	old := testutil.CreateBook(t, db, "Old", 1)
	recent := testutil.CreateBook(t, db, "Recent", 1)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	svc.at(now.AddDate(0, -3, 0))
	_, err := svc.CheckOut(user.ID, old.ID)
	require.NoError(t, err)

	svc.at(now.AddDate(0, 0, -10))
	_, err = svc.CheckOut(user.ID, recent.ID)
	require.NoError(t, err)

	svc.at(now)

	lastMonth, err := svc.LastMonth()
	require.NoError(t, err)
	require.Len(t, lastMonth, 1)
	assert.Equal(t, recent.ID, lastMonth[0].BookID)

	// Old loan fell due months ago, recent one three days ago
	overdueLastMonth, err := svc.OverdueLastMonth()
	require.NoError(t, err)
	require.Len(t, overdueLastMonth, 1)
	assert.Equal(t, recent.ID, overdueLastMonth[0].BookID)

	all, err := svc.Overdue()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	period, err := svc.InPeriod(now.AddDate(0, -4, 0), now.AddDate(0, -2, 0))
	require.NoError(t, err)
	require.Len(t, period, 1)
	assert.Equal(t, old.ID, period[0].BookID)

	_, err = svc.InPeriod(now, now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
