// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки пары токенов:
// короткоживущего access-токена и долгоживущего refresh-токена.
// MakerImpl — конкретная реализация с использованием двух секретных ключей и TTL.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateAccessToken создает access-токен с uid, email и ролью пользователя.
	GenerateAccessToken(userUID, email, role string) (string, error)
	// ParseAccessToken возвращает *AccessClaims, если токен корректен и не просрочен.
	ParseAccessToken(tokenStr string) (*AccessClaims, error)
	// GenerateRefreshToken создает refresh-токен, содержащий только uid пользователя.
	GenerateRefreshToken(userUID string) (string, error)
	// ParseRefreshToken возвращает *RefreshClaims, если токен корректен и не просрочен.
	ParseRefreshToken(tokenStr string) (*RefreshClaims, error)
}

// MakerImpl реализует интерфейс Maker. Access и refresh токены подписываются
// разными секретами, чтобы refresh-токен нельзя было предъявить как access.
type MakerImpl struct {
	accessSecret  string        // Секретный ключ для подписи access-токенов
	refreshSecret string        // Секретный ключ для подписи refresh-токенов
	accessTTL     time.Duration // Время жизни access-токена
	refreshTTL    time.Duration // Время жизни refresh-токена
}

// NewJWTMaker создаёт новый экземпляр MakerImpl.
func NewJWTMaker(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL возвращает время жизни refresh-токена (нужно для срока действия cookie).
func (j *MakerImpl) RefreshTTL() time.Duration {
	return j.refreshTTL
}
