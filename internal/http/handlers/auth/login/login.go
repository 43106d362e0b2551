// Package login реализует HTTP-обработчик входа пользователя.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/CSES-Open-Source/tritonscript/internal/http/cookie"
	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
	authservice "github.com/CSES-Open-Source/tritonscript/internal/services/auth"
)

// Request — входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*authservice.TokenPair, *models.User, error)
}

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	refreshTTL time.Duration
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		validate:   validator.New(),
		refreshTTL: refreshTTL,
	}
}

// ServeHTTP обрабатывает вход пользователя.
//
// @Summary Вход пользователя
// @Description Проверяет почту и пароль, возвращает access-токен и ставит refresh-токен в httpOnly cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body Request true "Почта и пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "Неверные учетные данные"
// @Failure 423 {object} response.Response "Аккаунт временно заблокирован"
// @Failure 500 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	pair, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAccountLocked):
			log.Error("account locked", sl.Err(err))
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error("account temporarily locked, try again later"))
		case errors.Is(err, apperr.ErrInvalidCredentials), errors.Is(err, apperr.ErrNotFound):
			// Не раскрываем, существует ли пользователь.
			log.Error("invalid credentials", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid email or password"))
		default:
			log.Error("login failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to login"))
		}
		return
	}

	cookie.SetRefreshToken(w, pair.RefreshToken, h.refreshTTL)

	log.Info("user logged in", slog.String("email", user.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"access_token": pair.AccessToken,
		"user":         user.Public(),
	}))
}
