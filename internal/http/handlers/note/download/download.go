// Package download реализует HTTP-обработчик выдачи подписанной ссылки
// на скачивание конспекта. Ссылка короткоживущая и генерируется заново
// на каждый запрос.
package download

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

// Service описывает интерфейс выдачи ссылки на скачивание.
type Service interface {
	GetDownloadURL(ctx context.Context, userUID, role string, id int) (string, string, error)
}

// Handler обрабатывает HTTP-запросы на выдачу ссылки скачивания.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.download"

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

	url, fileName, err := h.service.GetDownloadURL(r.Context(), userUID, role, id)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			log.Error("note not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("note not found"))
		case errors.Is(err, apperr.ErrForbidden):
			log.Error("access to foreign note denied", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to issue download url", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to issue download url"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"download_url": url,
		"file_name":    fileName,
	}))
}
