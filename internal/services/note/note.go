// Package services содержит бизнес-логику жизненного цикла конспекта:
// выдача ссылки на загрузку, фиксация метаданных, листинг, скачивание
// и удаление с согласованным состоянием двух хранилищ.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/sl"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/storagekey"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// maxPageSize ограничивает размер любой выборки конспектов.
const maxPageSize = 100

// NoteRepository определяет методы для работы с метаданными конспектов в хранилище.
type NoteRepository interface {
	// CreateNote добавляет запись конспекта; занятый storage key дает apperr.ErrConflict.
	CreateNote(ctx context.Context, note models.Note) (int, error)
	// ReadNote возвращает конспект по ID или apperr.ErrNotFound.
	ReadNote(ctx context.Context, id int) (*models.Note, error)
	// ListNotesByOwner возвращает конспекты владельца, новые первыми.
	ListNotesByOwner(ctx context.Context, ownerUID string, limit int) ([]*models.Note, error)
	// ListNotesByCourses возвращает конспекты по кодам курсов, новые первыми.
	ListNotesByCourses(ctx context.Context, courses []string, limit int) ([]*models.Note, error)
	// SearchNotes ищет по подстроке в search_index внутри выбранных курсов.
	SearchNotes(ctx context.Context, courses []string, substring string, limit int) ([]*models.Note, error)
	// RemoveNote удаляет запись и возвращает количество удалённых строк.
	RemoveNote(ctx context.Context, id int) (int, error)
}

// ObjectStore описывает шлюз объектного хранилища: подписанные URL и удаление.
type ObjectStore interface {
	Bucket() string
	PresignUpload(ctx context.Context, key string) (string, error)
	PresignDownload(ctx context.Context, bucket, key string) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// EventPublisher публикует доменные события в брокер.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// UploadGrant — результат запроса ссылки на загрузку: подписанный URL,
// зарезервированный за пользователем ключ и срок действия ссылки.
// До фиксации метаданных в базе ничего не сохраняется.
type UploadGrant struct {
	UploadURL  string `json:"upload_url"`
	StorageKey string `json:"storage_key"`
	ExpiresIn  int    `json:"expires_in"`
}

// NoteService реализует операции жизненного цикла конспекта.
type NoteService struct {
	repo   NoteRepository
	store  ObjectStore
	cache  Cache
	events EventPublisher
	log    *slog.Logger
}

// NewNoteService создает новый экземпляр NoteService.
func NewNoteService(repo NoteRepository, store ObjectStore, cache Cache, events EventPublisher, log *slog.Logger) *NoteService {
	return &NoteService{
		repo:   repo,
		store:  store,
		cache:  cache,
		events: events,
		log:    log,
	}
}

// GetUploadURL проверяет расширение файла и выдает подписанный PUT-URL
// под ключом в пространстве имен пользователя. Брошенная ссылка просто
// истекает: ни в базе, ни в хранилище следов не остается.
func (s *NoteService) GetUploadURL(ctx context.Context, userUID, fileName, quarter string) (*UploadGrant, error) {
	const op = "note.GetUploadURL"

	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return nil, fmt.Errorf("%s: only PDF files are allowed: %w", op, apperr.ErrValidation)
	}

	key := storagekey.New(userUID, quarter)
	url, err := s.store.PresignUpload(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("issued upload grant", slog.String("user_uid", userUID), slog.String("storage_key", key))
	return &UploadGrant{
		UploadURL:  url,
		StorageKey: key,
		ExpiresIn:  int((15 * time.Minute).Seconds()),
	}, nil
}

// Create фиксирует метаданные конспекта после того, как клиент загрузил байты.
// Ключ обязан лежать в пространстве имен вызывающего — присвоить чужой объект
// нельзя. Повторная фиксация ключа возвращает apperr.ErrConflict.
func (s *NoteService) Create(ctx context.Context, userUID string, req models.DummyNote) (*models.Note, error) {
	const op = "note.Create"

	if !storagekey.OwnedBy(req.StorageKey, userUID) {
		return nil, fmt.Errorf("%s: storage key does not belong to user: %w", op, apperr.ErrForbidden)
	}

	note := models.Note{
		Title:          req.Title,
		ClassName:      req.ClassName,
		ClassNumber:    req.ClassNumber,
		InstructorName: req.InstructorName,
		Quarter:        req.Quarter,
		CourseCode:     models.BuildCourseCode(req.ClassName, req.ClassNumber),
		OwnerUID:       userUID,
		Bucket:         s.store.Bucket(),
		StorageKey:     req.StorageKey,
		FileSize:       req.FileSize,
		SearchIndex:    models.BuildSearchIndex(req.Title, req.ClassName, req.ClassNumber, req.InstructorName, req.Quarter),
	}

	id, err := s.repo.CreateNote(ctx, note)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.ReadNote(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("created new note", slog.Int("id", id), slog.String("course_code", created.CourseCode))

	cacheKey := fmt.Sprintf("note:%d", id)
	if err := s.cache.Set(cacheKey, created, time.Hour); err != nil {
		s.log.Warn("failed to cache note", slog.String("key", cacheKey), sl.Err(err))
	}

	if err := s.events.Publish("note.created", created); err != nil {
		s.log.Warn("failed to publish note.created", sl.Err(err))
	}

	return created, nil
}

// List возвращает конспекты, принадлежащие пользователю, новые первыми.
// Пустой результат — не ошибка.
func (s *NoteService) List(ctx context.Context, userUID string) ([]*models.Note, error) {
	return s.repo.ListNotesByOwner(ctx, userUID, maxPageSize)
}

// Feed возвращает ленту: конспекты по курсам, на которые подписан пользователь,
// новые первыми, не более maxPageSize. Без подписок лента пуста.
func (s *NoteService) Feed(ctx context.Context, courses []string) ([]*models.Note, error) {
	return s.repo.ListNotesByCourses(ctx, courses, maxPageSize)
}

// Search ищет конспекты по подстроке внутри курсов пользователя.
// Запрос приводится к нижнему регистру, как и сохраненный search_index.
func (s *NoteService) Search(ctx context.Context, courses []string, query string) ([]*models.Note, error) {
	return s.repo.SearchNotes(ctx, courses, strings.ToLower(strings.TrimSpace(query)), maxPageSize)
}

// Read возвращает конспект по ID. Чужой конспект доступен только роли admin.
func (s *NoteService) Read(ctx context.Context, userUID, role string, id int) (*models.Note, error) {
	const op = "note.Read"

	cacheKey := fmt.Sprintf("note:%d", id)
	var cached models.Note
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read note from cache", slog.String("key", cacheKey), sl.Err(err))
	}

	var note *models.Note
	if found {
		note = &cached
	} else {
		note, err = s.repo.ReadNote(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if note.OwnerUID != userUID && role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}
	return note, nil
}

// GetDownloadURL выдает свежий подписанный GET-URL для скачивания конспекта.
// Проверка владения такая же, как в Read; состояние не меняется.
func (s *NoteService) GetDownloadURL(ctx context.Context, userUID, role string, id int) (string, string, error) {
	const op = "note.GetDownloadURL"

	note, err := s.Read(ctx, userUID, role, id)
	if err != nil {
		return "", "", err
	}

	url, err := s.store.PresignDownload(ctx, note.Bucket, note.StorageKey)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return url, note.FileName(), nil
}

// Remove удаляет конспект: сначала объект из хранилища, затем метаданные.
// Если объект удалить не удалось, метаданные остаются нетронутыми и операция
// возвращает apperr.ErrStorageDelete — клиент может повторить попытку.
// Висячая запись с существующим объектом лучше записи, указывающей в пустоту.
func (s *NoteService) Remove(ctx context.Context, userUID, role string, id int) error {
	const op = "note.Remove"

	note, err := s.repo.ReadNote(ctx, id)
	if err != nil {
		return err
	}
	if note.OwnerUID != userUID && role != models.RoleAdmin {
		return fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	if err := s.store.DeleteObject(ctx, note.Bucket, note.StorageKey); err != nil {
		s.log.Error("failed to delete object from storage", slog.Int("id", id), sl.Err(err))
		return fmt.Errorf("%s: %w", op, apperr.ErrStorageDelete)
	}

	if _, err := s.repo.RemoveNote(ctx, id); err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("note:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove note from cache", slog.String("key", cacheKey), sl.Err(err))
	}

	if err := s.events.Publish("note.deleted", map[string]any{"id": id, "owner_uid": note.OwnerUID}); err != nil {
		s.log.Warn("failed to publish note.deleted", sl.Err(err))
	}

	s.log.Info("note deleted", slog.Int("id", id))
	return nil
}
