// Package services содержит логику бизнес-уровня для регистрации,
// аутентификации и работы с парой access/refresh токенов.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/jwt"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/password"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

const (
	// maxLoginAttempts — число неудачных входов, после которого аккаунт блокируется.
	maxLoginAttempts = 5
	// lockDuration — длительность блокировки аккаунта.
	lockDuration = 2 * time.Hour
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	// Возвращает apperr.ErrConflict, если почта уже занята.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по почте или apperr.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по UID или apperr.ErrNotFound.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// IncrementLoginAttempts атомарно увеличивает счетчик неудачных входов
	// и блокирует аккаунт при достижении порога.
	IncrementLoginAttempts(ctx context.Context, userUID string, maxAttempts int, lockFor time.Duration) (int, error)
	// ResetLoginAttempts сбрасывает счетчик после успешного входа.
	ResetLoginAttempts(ctx context.Context, userUID string) error
	// SetRefreshToken сохраняет refresh-токен текущей сессии.
	SetRefreshToken(ctx context.Context, userUID, token string) error
	// RotateRefreshToken заменяет токен по схеме compare-and-swap.
	RotateRefreshToken(ctx context.Context, userUID, oldToken, newToken string) (bool, error)
	// ClearRefreshToken удаляет сохраненный refresh-токен.
	ClearRefreshToken(ctx context.Context, userUID string) error
	// EnsureProfile возвращает профиль, создавая его с ролью pending при отсутствии.
	EnsureProfile(ctx context.Context, userUID string) (*models.Profile, error)
}

// TokenPair объединяет короткоживущий access-токен и долгоживущий refresh-токен.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService отвечает за регистрацию, авторизацию, ротацию refresh-токенов
// и валидацию access-токенов.
//
// В системе хранится один активный refresh-токен на аккаунт: параллельные
// сессии инвалидируют друг друга. Это осознанное упрощение по сравнению со
// схемой token family + reuse detection.
type AuthService struct {
	users       UserRepository
	jwtMaker    jwt.Maker
	emailDomain string
}

// NewAuthService создает новый экземпляр AuthService.
// emailDomain — обязательный суффикс университетской почты, например "@ucsd.edu".
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, emailDomain string) *AuthService {
	return &AuthService{
		users:       users,
		jwtMaker:    jwtMaker,
		emailDomain: emailDomain,
	}
}

// Register создает нового пользователя с хэшированием пароля, лениво заводит
// профиль с ролью pending и выдает пару токенов.
func (s *AuthService) Register(ctx context.Context, email, firstName, lastName, rawPassword string) (*TokenPair, *models.User, error) {
	const op = "auth.Register"

	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.HasSuffix(email, s.emailDomain) {
		return nil, nil, fmt.Errorf("%s: email must end with %s: %w", op, s.emailDomain, apperr.ErrValidation)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        email,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: hashed,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	user.UID = uid

	profile, err := s.users.EnsureProfile(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(ctx, uid, email, profile.Role)
	if err != nil {
		return nil, nil, err
	}
	return pair, &user, nil
}

// Login проверяет пароль пользователя и выдает новую пару токенов.
//
// Неудачная попытка входа атомарно увеличивает счетчик; после maxLoginAttempts
// подряд аккаунт блокируется на lockDuration, и даже верный пароль возвращает
// apperr.ErrAccountLocked до истечения блокировки.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*TokenPair, *models.User, error) {
	const op = "auth.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if user.IsLocked(time.Now()) {
		return nil, nil, fmt.Errorf("%s: %w", op, apperr.ErrAccountLocked)
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if _, incErr := s.users.IncrementLoginAttempts(ctx, user.UID, maxLoginAttempts, lockDuration); incErr != nil {
			return nil, nil, incErr
		}
		return nil, nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredentials)
	}

	if err := s.users.ResetLoginAttempts(ctx, user.UID); err != nil {
		return nil, nil, err
	}

	profile, err := s.users.EnsureProfile(ctx, user.UID)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(ctx, user.UID, user.Email, profile.Role)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh проверяет refresh-токен и ротирует его: сохраненный токен заменяется
// новым только если предъявлен актуальный. Предъявление устаревшего токена
// (в том числе вторым из двух параллельных запросов) возвращает ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "auth.Refresh"

	claims, err := s.jwtMaker.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	newRefresh, err := s.jwtMaker.GenerateRefreshToken(claims.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rotated, err := s.users.RotateRefreshToken(ctx, claims.UserUID, refreshToken, newRefresh)
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, fmt.Errorf("%s: stale refresh token: %w", op, apperr.ErrInvalidToken)
	}

	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.EnsureProfile(ctx, user.UID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtMaker.GenerateAccessToken(user.UID, user.Email, profile.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// Logout удаляет сохраненный refresh-токен пользователя. Идемпотентна.
func (s *AuthService) Logout(ctx context.Context, userUID string) error {
	return s.users.ClearRefreshToken(ctx, userUID)
}

// ValidateToken проверяет access-токен и возвращает его claims.
// Вызывается middleware перед каждой защищенной операцией.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.AccessClaims, error) {
	return s.jwtMaker.ParseAccessToken(token)
}

func (s *AuthService) issueTokenPair(ctx context.Context, userUID, email, role string) (*TokenPair, error) {
	const op = "auth.issueTokenPair"

	accessToken, err := s.jwtMaker.GenerateAccessToken(userUID, email, role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refreshToken, err := s.jwtMaker.GenerateRefreshToken(userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetRefreshToken(ctx, userUID, refreshToken); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
