// Package auth содержит логику бизнес-уровня для работы с пользователями и сессиями.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/briefe-einfach/internal/lib/jwt"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/password"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
	"github.com/magabrotheeeer/briefe-einfach/internal/models"
	"github.com/magabrotheeeer/briefe-einfach/internal/storage/repository"
)

// ErrEmailTaken возвращается при регистрации на уже занятый email.
var ErrEmailTaken = errors.New("email already taken")

// ErrInvalidCredentials возвращается при неудачном входе. Намеренно не
// различает "нет такого пользователя" и "неверный пароль".
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken возвращается для невалидного, истёкшего или отозванного токена.
var ErrInvalidToken = errors.New("invalid or expired token")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя.
	RegisterUser(ctx context.Context, user models.User) error

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUID возвращает пользователя по uid или ошибку, если не найден.
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
}

// RevokedTokenStore хранит идентификаторы отозванных токенов до их истечения.
type RevokedTokenStore interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AuthService отвечает за регистрацию, авторизацию и валидацию сессий.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	revoked  RevokedTokenStore
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, revoked RevokedTokenStore, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		revoked:  revoked,
		log:      log,
	}
}

// NormalizeEmail приводит email к каноническому виду для поиска и хранения.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя с хэшированием пароля и сразу
// открывает для него сессию. Занятый email даёт ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Register"

	email = NormalizeEmail(email)
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		IsSubscribed: false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.RegisterUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return &user, token, nil
}

// Login проверяет пароль пользователя и открывает сессию.
// Любая причина отказа приводит к ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// Logout отзывает токен текущей сессии. Идемпотентен: повторный вызов
// или неразборчивый токен не являются ошибкой.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		// Невалидный токен и так не открывает сессию.
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKey(claims.ID), true, ttl); err != nil {
		s.log.Error("failed to store revoked token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Identify проверяет токен сессии и возвращает актуальные данные
// пользователя из хранилища.
func (s *AuthService) Identify(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.Identify"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var stub bool
	found, err := s.revoked.Get(ctx, revokedKey(claims.ID), &stub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if found {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByUID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}
