// Package tritonscript собирает приложение обмена конспектами: базу данных,
// миграции, кеш, объектное хранилище, брокер событий, сервисы и HTTP-сервер.
package tritonscript

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/CSES-Open-Source/tritonscript/internal/cache"
	"github.com/CSES-Open-Source/tritonscript/internal/config"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/jwt"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/rabbitmq"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	"github.com/CSES-Open-Source/tritonscript/internal/migrations"
	"github.com/CSES-Open-Source/tritonscript/internal/objectstore"
	authservice "github.com/CSES-Open-Source/tritonscript/internal/services/auth"
	noteservice "github.com/CSES-Open-Source/tritonscript/internal/services/note"
	profileservice "github.com/CSES-Open-Source/tritonscript/internal/services/profile"
	"github.com/CSES-Open-Source/tritonscript/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и ресурсы приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New инициализирует все зависимости приложения и возвращает готовый App.
// Брокер событий необязателен: при недоступном RabbitMQ приложение стартует
// без публикации событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	store, err := objectstore.New(ctx, cfg.S3Storage)
	if err != nil {
		return nil, err
	}

	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitURL, 5, 2*time.Second)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", sl.Err(err))
		} else {
			ch, err := rabbitmq.SetupChannel(conn, []rabbitmq.QueueConfig{
				{QueueName: "note_events", RoutingKey: "note.created"},
				{QueueName: "note_events", RoutingKey: "note.deleted"},
				{QueueName: "role_events", RoutingKey: "user.role_changed"},
			})
			if err != nil {
				logger.Warn("rabbitmq channel setup failed, events disabled", sl.Err(err))
			} else {
				publisher = rabbitmq.NewPublisher(ch)
			}
		}
	}

	jwtMaker := jwt.NewJWTMaker(
		cfg.JWTToken.AccessSecretKey,
		cfg.JWTToken.RefreshSecretKey,
		cfg.JWTToken.AccessTokenTTL,
		cfg.JWTToken.RefreshTokenTTL,
	)

	authService := authservice.NewAuthService(db, jwtMaker, cfg.AllowedEmailDomain)
	noteService := noteservice.NewNoteService(db, store, cacheRedis, publisher, logger)
	profileService := profileservice.NewProfileService(db, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db, authService, noteService, profileService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
