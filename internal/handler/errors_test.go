package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/response"
	"github.com/EgehanKilicarslan/library-api/internal/testutil"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		err            error
		expectedStatus int
		message        string
	}{
		{service.ErrEmailAlreadyExists, http.StatusBadRequest, "Email already exists"},
		{service.ErrInvalidCredentials, http.StatusBadRequest, "Email or password is incorrect"},
		{service.ErrEmailNotFound, http.StatusBadRequest, "Email not found"},
		{service.ErrInvalidResetCode, http.StatusBadRequest, "Invalid code or expired"},
		{service.ErrTokenStale, http.StatusUnauthorized, "Session expired, please login again"},
		{service.ErrTitleAlreadyExists, http.StatusBadRequest, "Title already exists"},
		{service.ErrISBNAlreadyExists, http.StatusBadRequest, "ISBN already exists"},
		{service.ErrBookHasOpenBorrowings, http.StatusBadRequest, "Book has open borrowings and cannot be deleted"},
		{service.ErrUserHasOpenBorrowings, http.StatusBadRequest, "User has open borrowings and cannot be deleted"},
		{service.ErrBookUnavailable, http.StatusBadRequest, "No copies of this book are available"},
		{service.ErrAlreadyBorrowed, http.StatusBadRequest, "You already borrowed this book"},
		{service.ErrBorrowingLimitReached, http.StatusBadRequest, "Borrowing limit reached, return a book first"},
		{repository.ErrBookNotFound, http.StatusNotFound, "Book not found"},
		{repository.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{repository.ErrBorrowingNotFound, http.StatusNotFound, "You have not borrowed this book"},
		{repository.ErrInvalidSort, http.StatusBadRequest, "Sort parameter is invalid"},
		{fmt.Errorf("lookup: %w", repository.ErrBookNotFound), http.StatusNotFound, "Book not found"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleServiceError(c, testutil.TestLogger(), tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var env response.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			require.NotEmpty(t, env.Messages)
			assert.Equal(t, tt.message, env.Messages[0].Message)
		})
	}
}

type bindTarget struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Code     string `json:"code" binding:"omitempty,len=6"`
	Role     string `json:"role" binding:"omitempty,oneof=BORROWER ADMIN"`
	Quantity *int   `json:"availableQuantity" binding:"required,min=0"`
}

func TestBindingMessages(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{
			name:     "missing fields",
			body:     `{}`,
			expected: []string{"Email is required", "Password is required", "AvailableQuantity is required"},
		},
		{
			name:     "invalid values",
			body:     `{"email":"x","password":"123","code":"12","role":"ROOT","availableQuantity":-1}`,
			expected: []string{"Email is invalid", "Password must be at least 6 characters", "Code must be 6 characters", "Role must be BORROWER, ADMIN", "AvailableQuantity must be at least 0"},
		},
		{
			name:     "wrong type",
			body:     `{"email":"a@b.co","password":"secret1","availableQuantity":"many"}`,
			expected: []string{"AvailableQuantity must be int"},
		},
		{
			name:     "malformed json",
			body:     `{"email":`,
			expected: []string{"Invalid request body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			err := c.ShouldBindJSON(&target)
			require.Error(t, err)

			var got []string
			for _, m := range bindingMessages(err) {
				assert.Equal(t, response.TypeError, m.Type)
				got = append(got, m.Message)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"42", true},
		{"0", false},
		{"-1", false},
		{"abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			id, ok := parseID(c, "id")

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, uint(42), id)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), "Id Must Be Integer")
			}
		})
	}
}
