package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/response"
)

func init() {
	// Report validation failures by JSON/query name rather than Go field name
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
	}
}

// handleServiceError maps service and repository errors to HTTP responses
func handleServiceError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	// Auth
	case errors.Is(err, service.ErrEmailAlreadyExists), errors.Is(err, repository.ErrEmailTaken):
		badRequest(c, err, "Email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		badRequest(c, err, "Email or password is incorrect")
	case errors.Is(err, service.ErrEmailNotFound):
		badRequest(c, err, "Email not found")
	case errors.Is(err, service.ErrInvalidResetCode):
		badRequest(c, err, "Invalid code or expired")
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenStale):
		response.Error(c, http.StatusUnauthorized, err, response.ErrorMessage("Session expired, please login again"))

	// Catalog and users
	case errors.Is(err, service.ErrTitleAlreadyExists):
		badRequest(c, err, "Title already exists")
	case errors.Is(err, service.ErrISBNAlreadyExists):
		badRequest(c, err, "ISBN already exists")
	case errors.Is(err, repository.ErrBookConflict):
		badRequest(c, err, "Title or ISBN already exists")
	case errors.Is(err, service.ErrInvalidTitle):
		badRequest(c, err, "Title must contain letters or digits")
	case errors.Is(err, service.ErrBookHasOpenBorrowings):
		badRequest(c, err, "Book has open borrowings and cannot be deleted")
	case errors.Is(err, service.ErrUserHasOpenBorrowings):
		badRequest(c, err, "User has open borrowings and cannot be deleted")
	case errors.Is(err, service.ErrInvalidRole):
		badRequest(c, err, "Role must be BORROWER, ADMIN")
	case errors.Is(err, repository.ErrBookNotFound):
		notFound(c, err, "Book not found")
	case errors.Is(err, repository.ErrUserNotFound):
		notFound(c, err, "User not found")

	// Borrowing
	case errors.Is(err, service.ErrBookInactive):
		badRequest(c, err, "Book is not available for borrowing")
	case errors.Is(err, service.ErrBookUnavailable):
		badRequest(c, err, "No copies of this book are available")
	case errors.Is(err, service.ErrAlreadyBorrowed):
		badRequest(c, err, "You already borrowed this book")
	case errors.Is(err, service.ErrBorrowingLimitReached):
		badRequest(c, err, "Borrowing limit reached, return a book first")
	case errors.Is(err, service.ErrInvalidPeriod):
		badRequest(c, err, "endDate must not be before startDate")
	case errors.Is(err, repository.ErrBorrowingNotFound):
		notFound(c, err, "You have not borrowed this book")

	// List queries
	case errors.Is(err, repository.ErrInvalidPage):
		badRequest(c, err, "Page Must be Positive value")
	case errors.Is(err, repository.ErrInvalidLimit):
		badRequest(c, err, "Limit Must be Positive value")
	case errors.Is(err, repository.ErrInvalidSort):
		badRequest(c, err, "Sort parameter is invalid")

	default:
		logger.Error("❌ [Handler] Internal server error", "error", err)
		response.Internal(c, err)
	}
}

func badRequest(c *gin.Context, err error, msg string) {
	response.Error(c, http.StatusBadRequest, err, response.ErrorMessage(msg))
}

func notFound(c *gin.Context, err error, msg string) {
	response.Error(c, http.StatusNotFound, err, response.ErrorMessage(msg))
}

// bindingError answers a failed ShouldBind* with one message per invalid field
func bindingError(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, err, bindingMessages(err)...)
}

func bindingMessages(err error) []response.Message {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		messages := make([]response.Message, 0, len(validationErrs))
		for _, fe := range validationErrs {
			messages = append(messages, response.ErrorMessage(fieldMessage(fe)))
		}
		return messages
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []response.Message{response.ErrorMessage(fmt.Sprintf("%s must be %s", capitalize(typeErr.Field), typeErr.Type.Kind()))}
	}

	return []response.Message{response.ErrorMessage("Invalid request body")}
}

func fieldMessage(fe validator.FieldError) string {
	field := capitalize(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Email is invalid"
	case "isbn":
		return "Not valid ISBN"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "numeric":
		return field + " must be numeric"
	case "oneof":
		return fmt.Sprintf("%s must be %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, err, "Id Must Be Integer")
		return 0, false
	}
	return uint(id), true
}

// listQuery parses page, limit, search and sort from the query string
func listQuery(c *gin.Context, logger *slog.Logger, sortable map[string]string) (repository.ListQuery, bool) {
	query, err := repository.ParseListQuery(
		c.Query("page"),
		c.Query("limit"),
		c.Query("search"),
		c.Query("sort"),
		sortable,
	)
	if err != nil {
		handleServiceError(c, logger, err)
		return repository.ListQuery{}, false
	}
	return query, true
}

func pagination(query repository.ListQuery, length int, total int64) response.Pagination {
	return response.Pagination{
		Pages:  query.Pages(total),
		Page:   query.Page,
		Length: length,
		Limit:  query.Limit,
		Total:  total,
	}
}
