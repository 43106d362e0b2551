// Package refresh реализует HTTP-обработчик обновления пары токенов.
//
// Refresh-токен приходит в httpOnly cookie, сверяется с сохраненным в базе
// и атомарно заменяется новым: повторное использование старого токена
// отклоняется.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/CSES-Open-Source/tritonscript/internal/http/cookie"
	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	authservice "github.com/CSES-Open-Source/tritonscript/internal/services/auth"
)

// Service описывает интерфейс обновления пары токенов.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*authservice.TokenPair, error)
}

// Handler обрабатывает HTTP-запросы на обновление токенов.
type Handler struct {
	log        *slog.Logger
	service    Service
	refreshTTL time.Duration
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		refreshTTL: refreshTTL,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	c, err := r.Cookie(cookie.RefreshTokenName)
	if err != nil || c.Value == "" {
		log.Error("refresh token cookie missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("refresh token missing"))
		return
	}

	pair, err := h.service.Refresh(r.Context(), c.Value)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrTokenExpired), errors.Is(err, apperr.ErrInvalidToken),
			errors.Is(err, apperr.ErrNotFound):
			log.Error("refresh token rejected", sl.Err(err))
			cookie.ClearRefreshToken(w)
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid or expired refresh token"))
		default:
			log.Error("failed to refresh tokens", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to refresh tokens"))
		}
		return
	}

	cookie.SetRefreshToken(w, pair.RefreshToken, h.refreshTTL)

	log.Info("tokens refreshed")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"access_token": pair.AccessToken,
	}))
}
