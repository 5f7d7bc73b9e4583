package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func TestRegisterHashesPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)

	ctx := context.Background()
	mockRepo.On("GetByEmail", ctx, "ana@redepharma.com.br").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(nil)

	user, err := service.Register(ctx, "ana@redepharma.com.br", "s3cret-pass", "Ana")

	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
	mockRepo.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)

	ctx := context.Background()
	mockRepo.On("GetByEmail", ctx, "ana@redepharma.com.br").Return(&User{Email: "ana@redepharma.com.br"}, nil)

	_, err := service.Register(ctx, "ana@redepharma.com.br", "s3cret-pass", "Ana")

	assert.ErrorIs(t, err, ErrEmailTaken)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginAndValidateToken(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)

	ctx := context.Background()
	mockRepo.On("GetByEmail", ctx, "ana@redepharma.com.br").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*User).ID = uuid.New()
	})

	user, err := service.Register(ctx, "ana@redepharma.com.br", "s3cret-pass", "Ana")
	assert.NoError(t, err)

	mockRepo.ExpectedCalls = nil
	mockRepo.On("GetByEmail", ctx, "ana@redepharma.com.br").Return(user, nil)

	token, loggedIn, err := service.Login(ctx, "ana@redepharma.com.br", "s3cret-pass")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	userID, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLoginWrongPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)

	ctx := context.Background()
	mockRepo.On("GetByEmail", ctx, "ana@redepharma.com.br").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(nil)

	user, err := service.Register(ctx, "ana@redepharma.com.br", "s3cret-pass", "Ana")
	assert.NoError(t, err)

	mockRepo.ExpectedCalls = nil
	mockRepo.On("GetByEmail", ctx, "ana@redepharma.com.br").Return(user, nil)

	_, _, err = service.Login(ctx, "ana@redepharma.com.br", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)
	other := NewService(mockRepo, "different-secret", time.Hour)

	ctx := context.Background()
	mockRepo.On("GetByEmail", ctx, "ana@redepharma.com.br").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*User).ID = uuid.New()
	})

	user, err := other.Register(ctx, "ana@redepharma.com.br", "s3cret-pass", "Ana")
	assert.NoError(t, err)

	mockRepo.ExpectedCalls = nil
	mockRepo.On("GetByEmail", ctx, "ana@redepharma.com.br").Return(user, nil)

	// Sign with one secret, validate with another.
	token, _, err := other.Login(ctx, "ana@redepharma.com.br", "s3cret-pass")
	assert.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
