// Package pending реализует HTTP-обработчик списка заявок на одобрение.
// Доступен только роли admin, проверка выполняется middleware.
package pending

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// Service описывает интерфейс получения списка ожидающих профилей.
type Service interface {
	ListPending(ctx context.Context) ([]*models.Profile, error)
}

// Handler обрабатывает HTTP-запросы на листинг заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.pending"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	profiles, err := h.service.ListPending(r.Context())
	if err != nil {
		log.Error("failed to list pending profiles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list pending users"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(profiles),
		"users": profiles,
	}))
}
