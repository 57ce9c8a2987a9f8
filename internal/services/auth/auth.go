// Package services реализует провайдер идентификации planner: регистрацию,
// вход по паролю, сессии на JWT с ротацией refresh-токенов и одноразовые
// токены подтверждения email.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/planner/internal/lib/jwt"
	"github.com/magabrotheeeer/planner/internal/lib/password"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

const (
	refreshPrefix = "refresh:"
	otpPrefix     = "otp:"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUserWithProfile создаёт пользователя и профиль в одной транзакции.
	CreateUserWithProfile(ctx context.Context, email, passwordHash string, fullName *string) (*models.User, error)
	// GetUserByEmail возвращает пользователя или models.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ConfirmEmail отмечает email подтверждённым.
	ConfirmEmail(ctx context.Context, email string) error
}

// TokenStore хранилище короткоживущих токенов.
type TokenStore interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Take(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// refreshEntry значение refresh-токена в хранилище.
type refreshEntry struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AuthService отвечает за регистрацию, вход, сессии и подтверждение email.
type AuthService struct {
	users      UserRepository
	tokens     TokenStore
	jwtMaker   jwt.Maker
	refreshTTL time.Duration
	otpTTL     time.Duration
	log        *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, tokens TokenStore, jwtMaker jwt.Maker,
	refreshTTL, otpTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtMaker:   jwtMaker,
		refreshTTL: refreshTTL,
		otpTTL:     otpTTL,
		log:        log,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp создаёт пользователя с профилем. Занятый email — models.ErrConflict.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	const op = "auth.SignUp"

	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("email is required"))
	}
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("password is too long"))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var fullName *string
	if req.FullName != nil {
		if trimmed := strings.TrimSpace(*req.FullName); trimmed != "" {
			fullName = &trimmed
		}
	}

	user, err := s.users.CreateUserWithProfile(ctx, email, hashed, fullName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user signed up", slog.String("user_id", user.ID))
	return user, nil
}

// SignInWithPassword проверяет пароль и выдаёт новую сессию.
// Неизвестный email и неверный пароль неразличимы: models.ErrUnauthenticated.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, rawPassword string) (*models.Session, error) {
	const op = "auth.SignInWithPassword"

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = password.CompareDummy(rawPassword)
			return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// GetUser возвращает пользователя, которому выдан access-токен.
func (s *AuthService) GetUser(_ context.Context, accessToken string) (*models.Identity, error) {
	const op = "auth.GetUser"
	if accessToken == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	claims, err := s.jwtMaker.ParseToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrUnauthenticated, err)
	}
	return &models.Identity{UserID: claims.UserID(), Email: claims.Email}, nil
}

// Refresh обменивает refresh-токен на новую пару. Старый токен удаляется
// атомарно, повторное использование возвращает models.ErrUnauthenticated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	const op = "auth.Refresh"
	if refreshToken == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}

	var entry refreshEntry
	found, err := s.tokens.Take(ctx, refreshPrefix+refreshToken, &entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}

	session, err := s.issueSession(ctx, &models.User{ID: entry.UserID, Email: entry.Email})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// SignOut отзывает refresh-токен. Пустой или неизвестный токен не ошибка.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	const op = "auth.SignOut"
	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.Invalidate(ctx, refreshPrefix+refreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SignInWithOTP выпускает одноразовый токен для email. redirectTo сохраняется
// вместе с токеном и ограничивает его область действия.
func (s *AuthService) SignInWithOTP(ctx context.Context, email, redirectTo string) (string, error) {
	const op = "auth.SignInWithOTP"

	email = NormalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, models.NewValidationError("email is required"))
	}
	token := uuid.NewString()
	if err := s.tokens.Set(ctx, otpKey(email, token), redirectTo, s.otpTTL); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// VerifyOTP погашает одноразовый токен и подтверждает email.
func (s *AuthService) VerifyOTP(ctx context.Context, email, token string) error {
	const op = "auth.VerifyOTP"

	email = NormalizeEmail(email)
	var redirectTo string
	found, err := s.tokens.Take(ctx, otpKey(email, token), &redirectTo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return fmt.Errorf("%s: %w", op, models.NewValidationError("verification link is invalid or has expired"))
	}

	if err = s.users.ConfirmEmail(ctx, email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, models.NewValidationError("no account is registered for this email"))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email verified", slog.String("redirect_to", redirectTo))
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*models.Session, error) {
	accessToken, expiresAt, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken := uuid.NewString()
	entry := refreshEntry{UserID: user.ID, Email: user.Email}
	if err = s.tokens.Set(ctx, refreshPrefix+refreshToken, entry, s.refreshTTL); err != nil {
		s.log.Error("failed to store refresh token", sl.Err(err))
		return nil, err
	}
	return &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

func otpKey(email, token string) string {
	return otpPrefix + email + ":" + token
}
