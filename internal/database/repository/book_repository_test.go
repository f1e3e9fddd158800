package repository_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/models"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/testutil"
)

func TestBookRepository_ListPaginates(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBookRepository(db)

	for i := 1; i <= 25; i++ {
		testutil.CreateBook(t, db, fmt.Sprintf("Book %02d", i), 1)
	}

	query, err := repository.ParseListQuery("2", "10", "", "title:asc", repository.BookSortColumns)
	require.NoError(t, err)

	books, total, err := repo.List(query)
	require.NoError(t, err)

	assert.Equal(t, int64(25), total)
	assert.Equal(t, 3, query.Pages(total))
	require.Len(t, books, 10)
	for i, book := range books {
		assert.Equal(t, fmt.Sprintf("Book %02d", i+11), book.Title)
	}
}

func TestBookRepository_ListSortDescending(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBookRepository(db)

	testutil.CreateBook(t, db, "Few", 1)
	testutil.CreateBook(t, db, "Many", 9)
	testutil.CreateBook(t, db, "Some", 4)

	query, err := repository.ParseListQuery("", "", "", "availableQuantity:desc", repository.BookSortColumns)
	require.NoError(t, err)

	books, _, err := repo.List(query)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, []string{"Many", "Some", "Few"}, []string{books[0].Title, books[1].Title, books[2].Title})
}

func TestBookRepository_ListSearchIsCaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBookRepository(db)

	testutil.CreateBook(t, db, "The Go Programming Language", 1)
	testutil.CreateBook(t, db, "Learning GO", 1)
	testutil.CreateBook(t, db, "Rust in Action", 1)

	query, err := repository.ParseListQuery("", "", "gO", "", repository.BookSortColumns)
	require.NoError(t, err)

	books, total, err := repo.List(query)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, books, 2)
}

func TestBookRepository_Lookups(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBookRepository(db)
	book := testutil.CreateBook(t, db, "Dune", 2)

	found, err := repo.FindBySlug("dune")
	require.NoError(t, err)
	assert.Equal(t, book.ID, found.ID)

	found, err = repo.FindByISBN(book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, book.ID, found.ID)

	_, err = repo.FindByID(999)
	assert.ErrorIs(t, err, repository.ErrBookNotFound)

	assert.ErrorIs(t, repo.Delete(999), repository.ErrBookNotFound)
	require.NoError(t, repo.Delete(book.ID))
	_, err = repo.FindByID(book.ID)
	assert.ErrorIs(t, err, repository.ErrBookNotFound)
}

func TestBookRepository_CreateDuplicate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBookRepository(db)
	existing := testutil.CreateBook(t, db, "Dune", 2)

	dup := &models.Book{
		Title:         "Dune",
		ISBN:          existing.ISBN,
		Author:        "Frank Herbert",
		Description:   "Spice",
		ShelfLocation: "B2",
		Active:        true,
		Slug:          "dune-2",
	}
	assert.ErrorIs(t, repo.Create(dup), repository.ErrBookConflict)
}

func TestBookRepository_QuantityCannotGoNegative(t *testing.T) {
	db := testutil.NewTestDB(t)
	book := testutil.CreateBook(t, db, "Dune", 0)

	err := db.Model(&models.Book{}).Where("id = ?", book.ID).Update("available_quantity", -1).Error
	assert.Error(t, err)
}

func TestBookRepository_UpdateWritesOnlyGivenColumns(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBookRepository(db)
	book := testutil.CreateBook(t, db, "Dune", 3)

	// Counter moved elsewhere after the caller last read the row
	require.NoError(t, db.Model(&models.Book{}).Where("id = ?", book.ID).
		Update("available_quantity", 1).Error)

	require.NoError(t, repo.Update(book.ID, map[string]interface{}{"description": "New blurb", "active": false}))

	stored := testutil.ReloadBook(t, db, book.ID)
	assert.Equal(t, "New blurb", stored.Description)
	assert.False(t, stored.Active)
	assert.Equal(t, 1, stored.AvailableQuantity)
	assert.Equal(t, book.Title, stored.Title)

	other := testutil.CreateBook(t, db, "Emma", 1)
	assert.ErrorIs(t, repo.Update(other.ID, map[string]interface{}{"isbn": book.ISBN}), repository.ErrBookConflict)
	assert.ErrorIs(t, repo.Update(999, map[string]interface{}{"author": "Nobody"}), repository.ErrBookNotFound)
}

func TestBookRepository_DeleteWithOpenLoan(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBookRepository(db)
	borrowings := repository.NewBorrowingRepository(db)
	user := testutil.CreateUser(t, db, "ada@example.com", config.RoleBorrower)
	book := testutil.CreateBook(t, db, "Dune", 2)

	now := time.Now().UTC()
	_, err := borrowings.CheckOut(user.ID, book.ID, now, now.AddDate(0, 0, 7), 0)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(book.ID), repository.ErrHasOpenBorrowings)
	assert.Equal(t, 1, testutil.ReloadBook(t, db, book.ID).AvailableQuantity)

	_, err = borrowings.Return(user.ID, book.ID, now)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(book.ID))
}
