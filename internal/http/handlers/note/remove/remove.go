// Package remove реализует HTTP-обработчик удаления конспекта.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/CSES-Open-Source/tritonscript/internal/http/middlewarectx"
	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
)

// Service описывает интерфейс удаления конспекта.
type Service interface {
	Remove(ctx context.Context, userUID, role string, id int) error
}

// Handler обрабатывает HTTP-запросы на удаление конспекта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP удаляет конспект: сначала объект из хранилища, затем метаданные.
//
// @Summary Удаление конспекта
// @Description Удаляет файл из объектного хранилища и запись метаданных; при сбое хранилища метаданные сохраняются
// @Security BearerAuth
// @Tags notes
// @Produce json
// @Param id path int true "ID конспекта"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response "Сбой удаления из хранилища, можно повторить"
// @Router /api/v1/notes/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.remove"

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
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid note id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid note id"))
		return
	}

	if err := h.service.Remove(r.Context(), userUID, role, id); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			log.Error("note not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("note not found"))
		case errors.Is(err, apperr.ErrForbidden):
			log.Error("access to foreign note denied", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		case errors.Is(err, apperr.ErrStorageDelete):
			log.Error("failed to delete object from storage", slog.Int("id", id), sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to delete file from storage, try again"))
		default:
			log.Error("failed to delete note", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to delete note"))
		}
		return
	}

	log.Info("note deleted", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
