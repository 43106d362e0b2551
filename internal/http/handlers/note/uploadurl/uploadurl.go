// Package uploadurl реализует HTTP-обработчик выдачи подписанной ссылки
// на загрузку PDF-файла. Метаданные конспекта в этот момент еще не
// сохраняются: фиксация происходит отдельным запросом после загрузки байтов.
package uploadurl

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
	noteservice "github.com/CSES-Open-Source/tritonscript/internal/services/note"
)

// Request — входные данные для выдачи ссылки на загрузку. Метаданные
// требуются заранее, чтобы не выдавать ссылки под незаполненные конспекты.
type Request struct {
	FileName       string `json:"file_name" validate:"required"`
	Title          string `json:"title" validate:"required"`
	ClassName      string `json:"class_name" validate:"required"`
	ClassNumber    string `json:"class_number" validate:"required,alphanum"`
	InstructorName string `json:"instructor_name"`
	Quarter        string `json:"quarter" validate:"required"`
}

// Service описывает интерфейс выдачи ссылки на загрузку.
type Service interface {
	GetUploadURL(ctx context.Context, userUID, fileName, quarter string) (*noteservice.UploadGrant, error)
}

// Handler обрабатывает HTTP-запросы на выдачу ссылки загрузки.
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
	const op = "handlers.note.uploadurl"

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

	grant, err := h.service.GetUploadURL(r.Context(), userUID, req.FileName, req.Quarter)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			log.Error("rejected upload request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("only PDF files are allowed"))
			return
		}
		log.Error("failed to issue upload url", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to issue upload url"))
		return
	}

	render.JSON(w, r, response.OKWithData(grant))
}
