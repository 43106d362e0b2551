// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Handler принимает JSON с университетской почтой, именем и паролем,
// валидирует их, создает аккаунт через сервис аутентификации и возвращает
// access-токен; refresh-токен уходит в httpOnly cookie.
package register

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

// Request — входные данные для регистрации.
type Request struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, email, firstName, lastName, password string) (*authservice.TokenPair, *models.User, error)
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	refreshTTL time.Duration
}

// New создает новый Handler. refreshTTL задает срок жизни cookie.
func New(log *slog.Logger, service Service, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		validate:   validator.New(),
		refreshTTL: refreshTTL,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	pair, user, err := h.service.Register(r.Context(), req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrConflict):
			log.Error("user already exists", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("user already exists"))
		case errors.Is(err, apperr.ErrValidation):
			log.Error("invalid email domain", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("email must be a valid university address"))
		default:
			log.Error("registration failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to register user"))
		}
		return
	}

	cookie.SetRefreshToken(w, pair.RefreshToken, h.refreshTTL)

	log.Info("user registered", slog.String("email", user.Email))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"access_token": pair.AccessToken,
		"user":         user.Public(),
	}))
}
