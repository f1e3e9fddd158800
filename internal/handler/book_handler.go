package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/response"
)

// BookHandler handles catalog requests
type BookHandler struct {
	service service.BookService
	logger  *slog.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(service service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		logger:  logger,
	}
}

type CreateBookRequest struct {
	Title             string `json:"title" binding:"required,max=255"`
	ISBN              string `json:"ISBN" binding:"required,isbn"`
	Author            string `json:"author" binding:"required"`
	Description       string `json:"description" binding:"required"`
	ShelfLocation     string `json:"shelfLocation" binding:"required"`
	AvailableQuantity *int   `json:"availableQuantity" binding:"required,min=0"`
	Active            *bool  `json:"active"`
}

// UpdateBookRequest fields are optional; omitted ones keep their value
type UpdateBookRequest struct {
	Title             *string `json:"title" binding:"omitempty,min=1,max=255"`
	ISBN              *string `json:"ISBN" binding:"omitempty,isbn"`
	Author            *string `json:"author" binding:"omitempty,min=1"`
	Description       *string `json:"description"`
	ShelfLocation     *string `json:"shelfLocation" binding:"omitempty,min=1"`
	AvailableQuantity *int    `json:"availableQuantity" binding:"omitempty,min=0"`
	Active            *bool   `json:"active"`
}

// List handles GET /books
func (h *BookHandler) List(c *gin.Context) {
	query, ok := listQuery(c, h.logger, repository.BookSortColumns)
	if !ok {
		return
	}

	books, total, err := h.service.ListBooks(query)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Paginated(c, books, pagination(query, len(books), total),
		response.SuccessMessage("Books retrieved Successfully"))
}

// Get handles GET /books/:id
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	book, err := h.service.GetBook(id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, book, response.SuccessMessage("Book retrieved Successfully"))
}

// Create handles POST /books
func (h *BookHandler) Create(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	book, err := h.service.CreateBook(service.CreateBookInput{
		Title:             req.Title,
		ISBN:              req.ISBN,
		Author:            req.Author,
		Description:       req.Description,
		ShelfLocation:     req.ShelfLocation,
		AvailableQuantity: *req.AvailableQuantity,
		Active:            req.Active,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusCreated, book, response.SuccessMessage("Book Created Successfully"))
}

// Update handles PUT /books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	book, err := h.service.UpdateBook(id, service.UpdateBookInput{
		Title:             req.Title,
		ISBN:              req.ISBN,
		Author:            req.Author,
		Description:       req.Description,
		ShelfLocation:     req.ShelfLocation,
		AvailableQuantity: req.AvailableQuantity,
		Active:            req.Active,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, book, response.SuccessMessage("Book Updated Successfully"))
}

// Delete handles DELETE /books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBook(id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, nil, response.SuccessMessage("Book Deleted Successfully"))
}
