package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainSession "github.com/mediahub/mediahub/internal/domain/session"
	domainUser "github.com/mediahub/mediahub/internal/domain/user"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domainUser.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *domainUser.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainUser.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domainUser.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainUser.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainUser.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter domainUser.Filter, limit, offset int) ([]*domainUser.User, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainUser.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockSessionRepository is a mock implementation of session.Repository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, sess *domainSession.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domainSession.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainSession.Session), args.Error(1)
}

func (m *MockSessionRepository) DeleteByID(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockSessionRepository) UpdateLastSeen(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func activeUser(t *testing.T, password string) *domainUser.User {
	t.Helper()
	hash, err := domainUser.HashPassword(password)
	require.NoError(t, err)
	return &domainUser.User{
		UserID:       uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         domainUser.RoleMember,
		Status:       domainUser.StatusActive,
	}
}

func TestLoginSuccess(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewService(userRepo, sessionRepo, time.Hour, zerolog.Nop())

	u := activeUser(t, "Str0ngPassw0rd!")
	userRepo.On("GetByUsername", mock.Anything, "alice").Return(u, nil)
	sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*session.Session")).Return(nil)

	res, err := svc.Login(context.Background(), "Alice", "Str0ngPassw0rd!", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, u.UserID, res.User.UserID)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, u.UserID, res.Session.UserID)
	assert.True(t, res.Session.ExpiresAt.After(time.Now()))

	userRepo.AssertExpectations(t)
	sessionRepo.AssertExpectations(t)
}

func TestLoginWithEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewService(userRepo, sessionRepo, time.Hour, zerolog.Nop())

	u := activeUser(t, "Str0ngPassw0rd!")
	userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(u, nil)
	sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*session.Session")).Return(nil)

	res, err := svc.Login(context.Background(), "Alice@Example.com", "Str0ngPassw0rd!", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, res.User.UserID)

	userRepo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	userRepo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewService(userRepo, sessionRepo, time.Hour, zerolog.Nop())

	u := activeUser(t, "Str0ngPassw0rd!")
	userRepo.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	_, err := svc.Login(context.Background(), "alice", "wrong", nil, nil)
	require.Error(t, err)
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginDisabledUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewService(userRepo, sessionRepo, time.Hour, zerolog.Nop())

	u := activeUser(t, "Str0ngPassw0rd!")
	u.Status = domainUser.StatusDisabled
	userRepo.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	_, err := svc.Login(context.Background(), "alice", "Str0ngPassw0rd!", nil, nil)
	require.Error(t, err)
}

func TestAuthenticateRoundTrip(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewService(userRepo, sessionRepo, time.Hour, zerolog.Nop())

	u := activeUser(t, "Str0ngPassw0rd!")
	userRepo.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	var created *domainSession.Session
	sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*session.Session")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domainSession.Session)
		}).Return(nil)

	res, err := svc.Login(context.Background(), "alice", "Str0ngPassw0rd!", nil, nil)
	require.NoError(t, err)

	// The stored hash must authenticate the issued token.
	sessionRepo.On("GetByTokenHash", mock.Anything, created.TokenHash).Return(created, nil)
	sessionRepo.On("UpdateLastSeen", mock.Anything, created.SessionID).Return(nil)
	userRepo.On("GetByID", mock.Anything, u.UserID).Return(u, nil)

	gotUser, gotSess, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, gotUser.UserID)
	assert.Equal(t, created.SessionID, gotSess.SessionID)

	// The raw token is never the lookup key.
	assert.NotEqual(t, res.Token, created.TokenHash)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewService(userRepo, sessionRepo, time.Hour, zerolog.Nop())

	expired := &domainSession.Session{
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	sessionRepo.On("GetByTokenHash", mock.Anything, mock.Anything).Return(expired, nil)
	sessionRepo.On("DeleteByID", mock.Anything, expired.SessionID).Return(nil)

	_, _, err := svc.Authenticate(context.Background(), "some-token")
	require.Error(t, err)
	sessionRepo.AssertCalled(t, "DeleteByID", mock.Anything, expired.SessionID)
}

func TestLogout(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewService(userRepo, sessionRepo, time.Hour, zerolog.Nop())

	sessionRepo.On("DeleteByTokenHash", mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, svc.Logout(context.Background(), "some-token"))

	// Empty tokens are a silent no-op.
	require.NoError(t, svc.Logout(context.Background(), ""))
	sessionRepo.AssertNumberOfCalls(t, "DeleteByTokenHash", 1)
}
