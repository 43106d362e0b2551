// Package search реализует HTTP-обработчик поиска конспектов по подстроке
// внутри курсов пользователя.
package search

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/CSES-Open-Source/tritonscript/internal/http/middlewarectx"
	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// Service описывает интерфейс поиска конспектов.
type Service interface {
	Search(ctx context.Context, courses []string, query string) ([]*models.Note, error)
}

// ProfileProvider описывает интерфейс получения профиля с курсами пользователя.
type ProfileProvider interface {
	Me(ctx context.Context, userUID string) (*models.Profile, error)
}

// Handler обрабатывает HTTP-запросы на поиск конспектов.
type Handler struct {
	log      *slog.Logger
	service  Service
	profiles ProfileProvider
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, profiles ProfileProvider) *Handler {
	return &Handler{log: log, service: service, profiles: profiles}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.search"

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

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		log.Error("empty search query")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("query parameter q is required"))
		return
	}

	profile, err := h.profiles.Me(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to search notes"))
		return
	}

	if len(profile.SelectedCourses) == 0 {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"count": 0,
			"notes": []*models.Note{},
		}))
		return
	}

	notes, err := h.service.Search(r.Context(), profile.SelectedCourses, query)
	if err != nil {
		log.Error("failed to search notes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to search notes"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(notes),
		"notes": notes,
	}))
}
