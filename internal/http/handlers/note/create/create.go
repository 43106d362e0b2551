// Package create реализует HTTP-обработчик фиксации метаданных конспекта
// после успешной загрузки файла по подписанной ссылке.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/CSES-Open-Source/tritonscript/internal/http/middlewarectx"
	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// Service описывает интерфейс фиксации конспекта.
type Service interface {
	Create(ctx context.Context, userUID string, req models.DummyNote) (*models.Note, error)
}

// Handler обрабатывает HTTP-запросы на создание записи конспекта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP фиксирует метаданные загруженного конспекта.
//
// @Summary Создание записи конспекта
// @Description Сохраняет метаданные конспекта после загрузки файла по подписанной ссылке
// @Security BearerAuth
// @Tags notes
// @Accept json
// @Produce json
// @Param request body models.DummyNote true "Метаданные конспекта"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response "Ключ принадлежит другому пользователю"
// @Failure 409 {object} response.Response "Ключ уже зафиксирован"
// @Failure 500 {object} response.Response
// @Router /api/v1/notes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyNote
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

	note, err := h.service.Create(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrForbidden):
			log.Error("storage key owned by another user", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("storage key does not belong to user"))
		case errors.Is(err, apperr.ErrConflict):
			log.Error("storage key already committed", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("note already exists for this storage key"))
		case errors.Is(err, apperr.ErrValidation):
			log.Error("invalid note metadata", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid note metadata"))
		default:
			log.Error("failed to create note", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to create note"))
		}
		return
	}

	log.Info("note created", slog.Int("id", note.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(note))
}
