// Package tritonscript предоставляет маршруты для основного приложения.
package tritonscript

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/CSES-Open-Source/tritonscript/internal/config"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/admin/pending"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/admin/setrole"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/auth/login"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/auth/logout"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/auth/me"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/auth/refresh"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/auth/register"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/health"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/note/create"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/note/download"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/note/feed"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/note/list"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/note/read"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/note/remove"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/note/search"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/note/uploadurl"
	"github.com/CSES-Open-Source/tritonscript/internal/http/handlers/profile/courses"
	"github.com/CSES-Open-Source/tritonscript/internal/http/middlewarectx"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
	authservice "github.com/CSES-Open-Source/tritonscript/internal/services/auth"
	noteservice "github.com/CSES-Open-Source/tritonscript/internal/services/note"
	profileservice "github.com/CSES-Open-Source/tritonscript/internal/services/profile"
	"github.com/CSES-Open-Source/tritonscript/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, db *repository.Storage,
	authService *authservice.AuthService, noteService *noteservice.NoteService, profileService *profileservice.ProfileService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	refreshTTL := cfg.JWTToken.RefreshTokenTTL

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService, refreshTTL).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService, refreshTTL).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(logger, authService, refreshTTL).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/auth/logout", logout.New(logger, authService).ServeHTTP)
			r.Get("/auth/me", me.New(logger, profileService, db).ServeHTTP)

			r.Put("/profile/courses", courses.New(logger, profileService).ServeHTTP)

			r.Get("/notes", list.New(logger, noteService).ServeHTTP)
			r.Get("/notes/feed", feed.New(logger, noteService, profileService).ServeHTTP)
			r.Get("/notes/search", search.New(logger, noteService, profileService).ServeHTTP)
			r.Get("/notes/{id}", read.New(logger, noteService).ServeHTTP)
			r.Get("/notes/{id}/download", download.New(logger, noteService).ServeHTTP)
			r.Delete("/notes/{id}", remove.New(logger, noteService).ServeHTTP)

			// Загрузка открыта только одобренным авторам
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleScribe, models.RoleAdmin))
				r.Post("/notes/get-upload-url", uploadurl.New(logger, noteService).ServeHTTP)
				r.Post("/notes", create.New(logger, noteService).ServeHTTP)
			})

			// Администрирование заявок
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleAdmin))
				r.Get("/admin/pending", pending.New(logger, profileService).ServeHTTP)
				r.Put("/admin/users/{uid}/role", setrole.New(logger, profileService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
