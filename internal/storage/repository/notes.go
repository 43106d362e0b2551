package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

const noteColumns = `id, title, class_name, class_number, instructor_name, quarter,
			      course_code, owner_uid, bucket, storage_key, file_size, search_index,
			      created_at, updated_at`

// CreateNote вставляет новую запись конспекта и возвращает её ID.
// Повторная фиксация того же storage key возвращает apperr.ErrConflict.
func (s *Storage) CreateNote(ctx context.Context, note models.Note) (int, error) {
	const op = "storage.CreateNote"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notes (title, class_name, class_number, instructor_name, quarter,
			      course_code, owner_uid, bucket, storage_key, file_size, search_index)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		note.Title, note.ClassName, note.ClassNumber, note.InstructorName, note.Quarter,
		note.CourseCode, note.OwnerUID, note.Bucket, note.StorageKey, note.FileSize,
		note.SearchIndex).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, apperr.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadNote возвращает данные конспекта по его ID.
func (s *Storage) ReadNote(ctx context.Context, id int) (*models.Note, error) {
	const op = "storage.ReadNote"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + noteColumns + `
			  FROM notes WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Note
	if err := row.Scan(&result.ID, &result.Title, &result.ClassName, &result.ClassNumber,
		&result.InstructorName, &result.Quarter, &result.CourseCode, &result.OwnerUID,
		&result.Bucket, &result.StorageKey, &result.FileSize, &result.SearchIndex,
		&result.CreatedAt, &result.UpdatedAt); err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &result, nil
}

// ListNotesByOwner возвращает конспекты пользователя, новые первыми.
func (s *Storage) ListNotesByOwner(ctx context.Context, ownerUID string, limit int) ([]*models.Note, error) {
	const op = "storage.ListNotesByOwner"
	query := `SELECT ` + noteColumns + `
			  FROM notes
			  WHERE owner_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2`
	return s.queryNotes(ctx, op, query, ownerUID, limit)
}

// ListNotesByCourses возвращает конспекты по списку кодов курсов, новые первыми.
// Пустой список курсов дает пустой результат без обращения к базе.
func (s *Storage) ListNotesByCourses(ctx context.Context, courses []string, limit int) ([]*models.Note, error) {
	const op = "storage.ListNotesByCourses"
	if len(courses) == 0 {
		return nil, nil
	}
	query := `SELECT ` + noteColumns + `
			  FROM notes
			  WHERE course_code = ANY(string_to_array($1, ','))
			  ORDER BY created_at DESC
			  LIMIT $2`
	return s.queryNotes(ctx, op, query, strings.Join(courses, ","), limit)
}

// SearchNotes ищет конспекты по подстроке в search_index внутри выбранных курсов.
// Поисковый запрос приводится к нижнему регистру на уровне сервиса.
// strpos вместо LIKE, чтобы символы % и _ в запросе искались буквально.
func (s *Storage) SearchNotes(ctx context.Context, courses []string, substring string, limit int) ([]*models.Note, error) {
	const op = "storage.SearchNotes"
	if len(courses) == 0 {
		return nil, nil
	}
	query := `SELECT ` + noteColumns + `
			  FROM notes
			  WHERE course_code = ANY(string_to_array($1, ','))
			      AND strpos(search_index, $2) > 0
			  ORDER BY created_at DESC
			  LIMIT $3`
	return s.queryNotes(ctx, op, query, strings.Join(courses, ","), substring, limit)
}

func (s *Storage) queryNotes(ctx context.Context, op, query string, args ...any) ([]*models.Note, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Note
	for rows.Next() {
		var item models.Note
		if err := rows.Scan(&item.ID, &item.Title, &item.ClassName, &item.ClassNumber,
			&item.InstructorName, &item.Quarter, &item.CourseCode, &item.OwnerUID,
			&item.Bucket, &item.StorageKey, &item.FileSize, &item.SearchIndex,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveNote удаляет запись конспекта по ID и возвращает количество удалённых строк.
// Вызывается только после успешного удаления объекта из хранилища.
func (s *Storage) RemoveNote(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveNote"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM notes WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
