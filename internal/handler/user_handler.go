package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/middleware"
	"github.com/EgehanKilicarslan/library-api/internal/response"
)

// UserHandler handles account administration and the signed-in profile
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

type UpdateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=BORROWER ADMIN"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
	Role  *string `json:"role" binding:"omitempty,oneof=BORROWER ADMIN"`
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.logger.Error("❌ [UserHandler] User not found in context")
		response.Error(c, http.StatusUnauthorized, nil, response.ErrorMessage("You are not authorized"))
		return
	}

	response.Success(c, http.StatusOK, user, response.SuccessMessage("User details fetched successfully"))
}

// UpdateMe handles PUT /users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		h.logger.Error("❌ [UserHandler] User not found in context")
		response.Error(c, http.StatusUnauthorized, nil, response.ErrorMessage("You are not authorized"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(current.ID, req.Name)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, user, response.SuccessMessage("Profile updated successfully"))
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	query, ok := listQuery(c, h.logger, repository.UserSortColumns)
	if !ok {
		return
	}

	users, total, err := h.userService.ListUsers(query)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Paginated(c, users, pagination(query, len(users), total),
		response.SuccessMessage("Users retrieved Successfully"))
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, user, response.SuccessMessage("User details fetched successfully"))
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, err := h.userService.CreateUser(service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     config.Role(req.Role),
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusCreated, user, response.SuccessMessage("User created successfully"))
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	input := service.UpdateUserInput{Name: req.Name, Email: req.Email}
	if req.Role != nil {
		role := config.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.userService.UpdateUser(id, input)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, user, response.SuccessMessage("User details updated successfully"))
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, nil, response.SuccessMessage("User deleted successfully"))
}
