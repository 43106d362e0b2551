// Package logout реализует HTTP-обработчик выхода пользователя.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/CSES-Open-Source/tritonscript/internal/http/cookie"
	"github.com/CSES-Open-Source/tritonscript/internal/http/middlewarectx"
	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
)

// Service описывает интерфейс выхода пользователя.
type Service interface {
	Logout(ctx context.Context, userUID string) error
}

// Handler обрабатывает HTTP-запросы на выход.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

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

	if err := h.service.Logout(r.Context(), userUID); err != nil {
		log.Error("failed to logout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to logout"))
		return
	}

	cookie.ClearRefreshToken(w)

	log.Info("user logged out", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OK())
}
