package service

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/models"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
)

// CreateUserInput is an admin-created account. An empty Role means BORROWER.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     config.Role
}

// UpdateUserInput carries a partial admin update; nil fields are unchanged
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *config.Role
}

// UserService defines the interface for user business logic
type UserService interface {
	ListUsers(query repository.ListQuery) ([]models.User, int64, error)
	GetUser(userID uint) (*models.User, error)
	CreateUser(input CreateUserInput) (*models.User, error)
	UpdateUser(userID uint, input UpdateUserInput) (*models.User, error)
	DeleteUser(userID uint) error
	UpdateProfile(userID uint, name *string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	logger   *slog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(userRepo repository.UserRepository, cfg *config.Config, logger *slog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *userService) ListUsers(query repository.ListQuery) ([]models.User, int64, error) {
	return s.userRepo.List(query)
}

func (s *userService) GetUser(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *userService) CreateUser(input CreateUserInput) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = config.RoleBorrower
	}
	if !config.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	email := strings.TrimSpace(input.Email)
	if err := s.ensureEmailFree(email, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:              input.Name,
		Email:             email,
		Password:          hashedPassword,
		Role:              role,
		PasswordChangedAt: time.Now().UTC(),
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [UserService] Failed to create user", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [UserService] User created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) UpdateUser(userID uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if input.Name != nil {
		changes["name"] = *input.Name
	}
	if input.Email != nil && *input.Email != user.Email {
		email := strings.TrimSpace(*input.Email)
		if err := s.ensureEmailFree(email, user.ID); err != nil {
			return nil, err
		}
		changes["email"] = email
	}
	if input.Role != nil {
		if !config.IsValidRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		changes["role"] = *input.Role
	}

	if err := s.userRepo.Update(user.ID, changes); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("✅ [UserService] User updated", "user_id", user.ID)
	return s.userRepo.FindByID(user.ID)
}

func (s *userService) DeleteUser(userID uint) error {
	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, repository.ErrHasOpenBorrowings) {
			s.logger.Warn("⚠️ [UserService] Refusing to delete user with open borrowings", "user_id", userID)
			return ErrUserHasOpenBorrowings
		}
		return err
	}

	s.logger.Info("🗑️ [UserService] User deleted", "user_id", userID)
	return nil
}

// UpdateProfile lets a signed-in user change their own display name
func (s *userService) UpdateProfile(userID uint, name *string) (*models.User, error) {
	if name != nil {
		if err := s.userRepo.Update(userID, map[string]interface{}{"name": *name}); err != nil {
			return nil, err
		}
	}

	return s.userRepo.FindByID(userID)
}

func (s *userService) ensureEmailFree(email string, selfID uint) error {
	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrEmailAlreadyExists
	}
	return nil
}

// Service errors
var (
	ErrInvalidRole           = errors.New("role must be BORROWER, ADMIN")
	ErrUserHasOpenBorrowings = errors.New("user has open borrowings")
)
