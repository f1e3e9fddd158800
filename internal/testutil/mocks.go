package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/EgehanKilicarslan/library-api/internal/database/models"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/mail"
	"github.com/EgehanKilicarslan/library-api/internal/worker"
)

// ==================== MOCK USER REPOSITORY ====================

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(id uint, changes map[string]interface{}) error {
	args := m.Called(id, changes)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(id uint, passwordHash string, changedAt time.Time) error {
	args := m.Called(id, passwordHash, changedAt)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) List(query repository.ListQuery) ([]models.User, int64, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// ==================== MOCK PASSWORD RESET REPOSITORY ====================

// MockPasswordResetRepository implements repository.PasswordResetRepository for testing
type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) Replace(code *models.PasswordResetCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) FindValid(codeHash string, now time.Time) (*models.PasswordResetCode, error) {
	args := m.Called(codeHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordResetCode), args.Error(1)
}

func (m *MockPasswordResetRepository) DeleteByEmail(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) DeleteExpired(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

// ==================== MAIL + TASKS ====================

// RecordingMailer keeps every message it is asked to send
type RecordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	Err      error
}

func (m *RecordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return m.Err
}

// Messages returns a copy of the sent messages
func (m *RecordingMailer) Messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

// InlineRunner runs submitted tasks synchronously so tests can assert on
// their effects right after the call returns
type InlineRunner struct {
	Err error
}

func (r *InlineRunner) SubmitWithTimeout(name string, timeout time.Duration, task worker.Task) error {
	if r.Err != nil {
		return r.Err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = task(ctx)
	return nil
}
