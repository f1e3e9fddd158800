package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/models"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/mail"
	"github.com/EgehanKilicarslan/library-api/internal/worker"
)

const (
	resetCodeDigits   = 6
	resetCodeAttempts = 3
	resetEmailTimeout = 30 * time.Second
)

// TaskRunner runs fire-and-forget background work; *worker.Pool implements it
type TaskRunner interface {
	SubmitWithTimeout(name string, timeout time.Duration, task worker.Task) error
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Signup(name, email, password string) (*models.User, string, error)
	Signin(email, password string) (*models.User, string, error)
	GenerateToken(userID uint) (string, error)
	ValidateSession(tokenString string) (*models.User, error)
	ForgetPassword(email string) error
	ResetPassword(code, password string) (*models.User, string, error)
}

type authService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	mailer    mail.Mailer
	tasks     TaskRunner
	jwtSecret string
	cfg       *config.Config
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	mailer mail.Mailer,
	tasks TaskRunner,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		mailer:    mailer,
		tasks:     tasks,
		jwtSecret: cfg.JWTSecret,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *authService) Signup(name, email, password string) (*models.User, string, error) {
	s.logger.Info("📝 [AuthService] Signup attempt", "email", email)

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, "", err
	}
	if existingUser != nil {
		s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
		return nil, "", ErrEmailAlreadyExists
	}

	hashedPassword, err := hashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return nil, "", err
	}

	user := &models.User{
		Name:              name,
		Email:             email,
		Password:          hashedPassword,
		Role:              config.RoleBorrower,
		PasswordChangedAt: time.Now().UTC(),
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [AuthService] Failed to create user", "error", err)
		return nil, "", err
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate token", "error", err)
		return nil, "", err
	}

	s.logger.Info("✅ [AuthService] User signed up", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) Signin(email, password string) (*models.User, string, error) {
	s.logger.Info("🔐 [AuthService] Signin attempt", "email", email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate token", "error", err)
		return nil, "", err
	}

	s.logger.Info("✅ [AuthService] User signed in", "user_id", user.ID)
	return user, token, nil
}

// GenerateToken signs a session token. createdAt (unix ms) is compared
// against the user's last password change on every request.
func (s *authService) GenerateToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   userID,
		"createdAt": now.UnixMilli(),
		"iat":       now.Unix(),
		"exp":       now.Add(time.Duration(s.cfg.JWTExpiresIn) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateSession(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	createdAt, ok := claims["createdAt"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(uint(userID))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if user.TokenIsStale(time.UnixMilli(int64(createdAt))) {
		s.logger.Warn("⚠️ [AuthService] Token issued before password change", "user_id", user.ID)
		return nil, ErrTokenStale
	}

	return user, nil
}

func (s *authService) ForgetPassword(email string) error {
	s.logger.Info("🔑 [AuthService] Password reset requested", "email", email)

	if _, err := s.userRepo.FindByEmail(email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrEmailNotFound
		}
		return err
	}

	ttl := time.Duration(s.cfg.ResetCodeTTL) * time.Second

	var code string
	for attempt := 1; ; attempt++ {
		var err error
		code, err = generateResetCode()
		if err != nil {
			return err
		}

		err = s.resetRepo.Replace(&models.PasswordResetCode{
			Email:     email,
			CodeHash:  hashResetCode(code),
			ExpiresAt: time.Now().UTC().Add(ttl),
		})
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrResetCodeConflict) || attempt == resetCodeAttempts {
			s.logger.Error("❌ [AuthService] Failed to store reset code", "error", err)
			return err
		}
	}

	msg, err := mail.PasswordResetMessage(email, code, ttl)
	if err != nil {
		return err
	}

	err = s.tasks.SubmitWithTimeout("password-reset-email", resetEmailTimeout, func(ctx context.Context) error {
		return s.mailer.Send(ctx, msg)
	})
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to queue reset email", "error", err)
		return fmt.Errorf("failed to queue reset email: %w", err)
	}

	s.logger.Info("✅ [AuthService] Reset code issued", "email", email)
	return nil
}

func (s *authService) ResetPassword(code, password string) (*models.User, string, error) {
	now := time.Now().UTC()

	resetCode, err := s.resetRepo.FindValid(hashResetCode(code), now)
	if err != nil {
		if errors.Is(err, repository.ErrResetCodeNotFound) || errors.Is(err, repository.ErrResetCodeExpired) {
			s.logger.Warn("⚠️ [AuthService] Invalid reset code")
			return nil, "", ErrInvalidResetCode
		}
		return nil, "", err
	}

	user, err := s.userRepo.FindByEmail(resetCode.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidResetCode
		}
		return nil, "", err
	}

	hashedPassword, err := hashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	if err := s.userRepo.UpdatePassword(user.ID, hashedPassword, now); err != nil {
		s.logger.Error("❌ [AuthService] Failed to update password", "error", err)
		return nil, "", err
	}
	user.Password = hashedPassword
	user.PasswordChangedAt = now

	if err := s.resetRepo.DeleteByEmail(user.Email); err != nil {
		s.logger.Error("❌ [AuthService] Failed to delete used reset codes", "error", err)
		return nil, "", err
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("✅ [AuthService] Password reset", "user_id", user.ID)
	return user, token, nil
}

func hashPassword(password string, cost int64) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), int(cost))
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// generateResetCode returns a zero-padded numeric code
func generateResetCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < resetCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n.Int64()), nil
}

func hashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Service errors
var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenStale         = errors.New("password changed since token was issued")
	ErrEmailNotFound      = errors.New("email not found")
	ErrInvalidResetCode   = errors.New("invalid code or expired")
)
