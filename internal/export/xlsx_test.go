package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/EgehanKilicarslan/library-api/internal/database/models"
)

func TestWriteBorrowings(t *testing.T) {
	borrowed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	returned := borrowed.AddDate(0, 0, 3)

	rows := []models.Borrowing{
		{
			BorrowedAt: borrowed,
			DueAt:      borrowed.AddDate(0, 0, 7),
			ReturnedAt: &returned,
			Book:       &models.Book{Title: "Dune"},
			User:       &models.User{Name: "Ada"},
		},
		{
			BorrowedAt: borrowed,
			DueAt:      borrowed.AddDate(0, 0, 7),
			Book:       &models.Book{Title: "Emma"},
			User:       &models.User{Name: "Grace"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBorrowings(&buf, "Borrowing Data", rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Borrowing Data"}, f.GetSheetList())

	got, err := f.GetRows("Borrowing Data")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Header, got[0])
	assert.Equal(t, []string{
		"2024-03-01T09:30:00Z",
		"2024-03-08T09:30:00Z",
		"2024-03-04T09:30:00Z",
		"Dune",
		"Ada",
	}, got[1])

	// Open loans leave the returned column blank
	assert.Equal(t, "", got[2][2])
	assert.Equal(t, "Emma", got[2][3])
	assert.Equal(t, "Grace", got[2][4])
}

func TestWriteBorrowings_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBorrowings(&buf, "Empty", nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Empty")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Header, got[0])
}
