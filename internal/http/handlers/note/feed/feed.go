// Package feed реализует HTTP-обработчик ленты конспектов: свежие записи
// по курсам, на которые подписан пользователь.
package feed

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/CSES-Open-Source/tritonscript/internal/http/middlewarectx"
	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// Service описывает интерфейс ленты конспектов.
type Service interface {
	Feed(ctx context.Context, courses []string) ([]*models.Note, error)
}

// ProfileProvider описывает интерфейс получения профиля с курсами пользователя.
type ProfileProvider interface {
	Me(ctx context.Context, userUID string) (*models.Profile, error)
}

// Handler обрабатывает HTTP-запросы на просмотр ленты.
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
	const op = "handlers.note.feed"

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

	profile, err := h.profiles.Me(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load feed"))
		return
	}

	if len(profile.SelectedCourses) == 0 {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"count": 0,
			"notes": []*models.Note{},
		}))
		return
	}

	notes, err := h.service.Feed(r.Context(), profile.SelectedCourses)
	if err != nil {
		log.Error("failed to load feed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load feed"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(notes),
		"notes": notes,
	}))
}
