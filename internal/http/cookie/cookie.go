// Package cookie задает единые правила транспорта refresh-токена:
// httpOnly cookie с ограничением по пути авторизационных маршрутов.
package cookie

import (
	"net/http"
	"time"
)

// RefreshTokenName — имя cookie с refresh-токеном.
const RefreshTokenName = "refreshToken"

// refreshPath ограничивает cookie маршрутами /api/v1/auth.
const refreshPath = "/api/v1/auth"

// SetRefreshToken выставляет httpOnly cookie с refresh-токеном.
// Access-токен в cookie не попадает никогда: он передается в заголовке.
func SetRefreshToken(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenName,
		Value:    token,
		Path:     refreshPath,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearRefreshToken удаляет cookie с refresh-токеном.
func ClearRefreshToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenName,
		Value:    "",
		Path:     refreshPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
