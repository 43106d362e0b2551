package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
)

// AccessClaims описывает пользовательские данные, хранящиеся в access-токене.
type AccessClaims struct {
	UserUID              string `json:"uid"`   // Идентификатор пользователя
	Email                string `json:"email"` // Почта пользователя
	Role                 string `json:"role"`  // Роль пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// RefreshClaims содержит только идентификатор пользователя: остальное
// восстанавливается из хранилища при ротации.
type RefreshClaims struct {
	UserUID string `json:"uid"`
	jwt.RegisteredClaims
}

// GenerateAccessToken создает access-токен с заданными uid, email и ролью,
// подписывая его секретным ключом. Время жизни токена определяется accessTTL.
func (j *MakerImpl) GenerateAccessToken(userUID, email, role string) (string, error) {
	claims := AccessClaims{
		UserUID: userUID,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.accessSecret))
}

// ParseAccessToken парсит access-токен, проверяет его подпись и срок действия,
// возвращает AccessClaims с данными, если токен корректен.
func (j *MakerImpl) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	const op = "jwt.ParseAccessToken"
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.accessSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidToken)
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidToken)
	}
	return claims, nil
}

// GenerateRefreshToken создает refresh-токен для пользователя userUID.
func (j *MakerImpl) GenerateRefreshToken(userUID string) (string, error) {
	claims := RefreshClaims{
		UserUID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.refreshTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.refreshSecret))
}

// ParseRefreshToken парсит refresh-токен и возвращает RefreshClaims.
func (j *MakerImpl) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	const op = "jwt.ParseRefreshToken"
	token, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.refreshSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidToken)
	}
	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidToken)
	}
	return claims, nil
}
