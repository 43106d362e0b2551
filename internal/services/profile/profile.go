// Package services содержит бизнес-логику профилей: подписки на курсы
// и workflow одобрения ролей (pending -> scribe/rejected).
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// ProfileRepository определяет методы для работы с профилями в хранилище.
type ProfileRepository interface {
	// EnsureProfile возвращает профиль, создавая его с ролью pending при отсутствии.
	EnsureProfile(ctx context.Context, userUID string) (*models.Profile, error)
	// GetProfile возвращает профиль или apperr.ErrNotFound.
	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
	// UpdateSelectedCourses заменяет список курсов пользователя.
	UpdateSelectedCourses(ctx context.Context, userUID string, courses []string) (int, error)
	// UpdateRole перезаписывает роль пользователя.
	UpdateRole(ctx context.Context, userUID, role string) (int, error)
	// ListProfilesByRole возвращает профили с заданной ролью.
	ListProfilesByRole(ctx context.Context, role string) ([]*models.Profile, error)
}

// EventPublisher публикует доменные события в брокер.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// ProfileService реализует операции над профилями и ролями.
type ProfileService struct {
	repo   ProfileRepository
	events EventPublisher
	log    *slog.Logger
}

// NewProfileService создает новый экземпляр ProfileService.
func NewProfileService(repo ProfileRepository, events EventPublisher, log *slog.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// Me возвращает профиль пользователя, лениво создавая его с ролью pending
// при первом обращении.
func (s *ProfileService) Me(ctx context.Context, userUID string) (*models.Profile, error) {
	return s.repo.EnsureProfile(ctx, userUID)
}

// SelectCourses заменяет список курсов пользователя. Коды нормализуются
// (верхний регистр, без пробелов) и дедуплицируются с сохранением порядка.
func (s *ProfileService) SelectCourses(ctx context.Context, userUID string, courses []string) (*models.Profile, error) {
	const op = "profile.SelectCourses"

	normalized := make([]string, 0, len(courses))
	seen := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		code := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(c), " ", ""))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		normalized = append(normalized, code)
	}

	rowsAffected, err := s.repo.UpdateSelectedCourses(ctx, userUID, normalized)
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return s.repo.GetProfile(ctx, userUID)
}

// ListPending возвращает профили, ожидающие одобрения админом.
func (s *ProfileService) ListPending(ctx context.Context) ([]*models.Profile, error) {
	return s.repo.ListProfilesByRole(ctx, models.RolePending)
}

// SetRole перезаписывает роль пользователя. Идемпотентна: повторное
// назначение той же роли — не ошибка. Право вызова (только admin)
// проверяется middleware до обращения к сервису.
func (s *ProfileService) SetRole(ctx context.Context, targetUID, newRole string) error {
	const op = "profile.SetRole"

	if !models.ValidRole(newRole) {
		return fmt.Errorf("%s: unknown role %q: %w", op, newRole, apperr.ErrValidation)
	}

	rowsAffected, err := s.repo.UpdateRole(ctx, targetUID, newRole)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}

	if err := s.events.Publish("user.role_changed", map[string]any{"user_uid": targetUID, "role": newRole}); err != nil {
		s.log.Warn("failed to publish user.role_changed", sl.Err(err))
	}

	s.log.Info("role updated", slog.String("user_uid", targetUID), slog.String("role", newRole))
	return nil
}
