// Package me реализует HTTP-обработчик просмотра собственного профиля.
package me

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

// Service описывает интерфейс получения профиля пользователя.
type Service interface {
	Me(ctx context.Context, userUID string) (*models.Profile, error)
}

// UserProvider описывает интерфейс получения данных аккаунта.
type UserProvider interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы на просмотр профиля.
type Handler struct {
	log     *slog.Logger
	service Service
	users   UserProvider
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, users UserProvider) *Handler {
	return &Handler{log: log, service: service, users: users}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

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

	user, err := h.users.GetUser(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get profile"))
		return
	}

	profile, err := h.service.Me(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get profile"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":             user.Public(),
		"role":             profile.Role,
		"selected_courses": profile.SelectedCourses,
	}))
}
