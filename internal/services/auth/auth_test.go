package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/briefe-einfach/internal/lib/jwt"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/password"
	"github.com/magabrotheeeer/briefe-einfach/internal/models"
	"github.com/magabrotheeeer/briefe-einfach/internal/storage/repository"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) RegisterUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type revokedStoreStub struct {
	data map[string]bool
}

func newRevokedStoreStub() *revokedStoreStub {
	return &revokedStoreStub{data: map[string]bool{}}
}

func (s *revokedStoreStub) Get(_ context.Context, key string, result any) (bool, error) {
	if _, ok := s.data[key]; !ok {
		return false, nil
	}
	*(result.(*bool)) = true
	return true, nil
}

func (s *revokedStoreStub) Set(_ context.Context, key string, _ any, _ time.Duration) error {
	s.data[key] = true
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(users UserRepository) *AuthService {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return NewAuthService(users, maker, newRevokedStoreStub(), newNoopLogger())
}

func TestRegister(t *testing.T) {
	usersMock := new(UserRepositoryMock)
	usersMock.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "max@example.com" && u.UID != "" && u.PasswordHash != "geheim123" && !u.IsSubscribed
	})).Return(nil).Once()

	svc := newTestService(usersMock)

	user, token, err := svc.Register(context.Background(), "  Max@Example.com ", "geheim123")
	require.NoError(t, err)
	assert.Equal(t, "max@example.com", user.Email)
	assert.NotEmpty(t, token)
	usersMock.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	usersMock := new(UserRepositoryMock)
	usersMock.On("RegisterUser", mock.Anything, mock.Anything).
		Return(repository.ErrAlreadyExists).Once()

	svc := newTestService(usersMock)

	_, _, err := svc.Register(context.Background(), "max@example.com", "geheim123")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("geheim123")
	require.NoError(t, err)

	stored := &models.User{UID: "uid-1", Email: "max@example.com", PasswordHash: hash}

	usersMock := new(UserRepositoryMock)
	usersMock.On("GetUserByEmail", mock.Anything, "max@example.com").Return(stored, nil)

	svc := newTestService(usersMock)

	user, token, err := svc.Login(context.Background(), "Max@example.com", "geheim123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPasswordAndUnknownUserIndistinguishable(t *testing.T) {
	hash, err := password.GetHash("geheim123")
	require.NoError(t, err)

	usersMock := new(UserRepositoryMock)
	usersMock.On("GetUserByEmail", mock.Anything, "known@example.com").
		Return(&models.User{UID: "uid-1", Email: "known@example.com", PasswordHash: hash}, nil)
	usersMock.On("GetUserByEmail", mock.Anything, "unknown@example.com").
		Return(nil, repository.ErrNotFound)

	svc := newTestService(usersMock)

	_, _, errWrongPassword := svc.Login(context.Background(), "known@example.com", "falsch")
	_, _, errUnknownUser := svc.Login(context.Background(), "unknown@example.com", "geheim123")

	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownUser, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
}

func TestIdentify(t *testing.T) {
	stored := &models.User{UID: "uid-1", Email: "max@example.com"}

	usersMock := new(UserRepositoryMock)
	usersMock.On("GetUserByUID", mock.Anything, "uid-1").Return(stored, nil)

	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	svc := NewAuthService(usersMock, maker, newRevokedStoreStub(), newNoopLogger())

	token, err := maker.GenerateToken("uid-1", "max@example.com")
	require.NoError(t, err)

	user, err := svc.Identify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)
}

func TestIdentify_GarbageToken(t *testing.T) {
	svc := newTestService(new(UserRepositoryMock))

	_, err := svc.Identify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesToken(t *testing.T) {
	stored := &models.User{UID: "uid-1", Email: "max@example.com"}

	usersMock := new(UserRepositoryMock)
	usersMock.On("GetUserByUID", mock.Anything, "uid-1").Return(stored, nil)

	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	svc := NewAuthService(usersMock, maker, newRevokedStoreStub(), newNoopLogger())

	token, err := maker.GenerateToken("uid-1", "max@example.com")
	require.NoError(t, err)

	_, err = svc.Identify(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))

	_, err = svc.Identify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Повторный выход не является ошибкой.
	assert.NoError(t, svc.Logout(context.Background(), token))
}

func TestLogout_GarbageTokenIsNoop(t *testing.T) {
	svc := newTestService(new(UserRepositoryMock))

	assert.NoError(t, svc.Logout(context.Background(), "not-a-token"))
}
