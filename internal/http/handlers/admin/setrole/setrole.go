// Package setrole реализует HTTP-обработчик смены роли пользователя:
// одобрение заявки (scribe), отклонение (rejected) или ручное назначение.
package setrole

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
)

// Request — входные данные для смены роли.
type Request struct {
	Role string `json:"role" validate:"required"`
}

// Service описывает интерфейс смены роли.
type Service interface {
	SetRole(ctx context.Context, targetUID, newRole string) error
}

// Handler обрабатывает HTTP-запросы на смену роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setrole"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetUID := chi.URLParam(r, "uid")
	if targetUID == "" {
		log.Error("target uid missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user uid is required"))
		return
	}

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

	if err := h.service.SetRole(r.Context(), targetUID, req.Role); err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			log.Error("unknown role", slog.String("role", req.Role))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown role"))
		case errors.Is(err, apperr.ErrNotFound):
			log.Error("profile not found", slog.String("user_uid", targetUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to update role", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update role"))
		}
		return
	}

	log.Info("role updated", slog.String("user_uid", targetUID), slog.String("role", req.Role))
	render.JSON(w, r, response.OK())
}
