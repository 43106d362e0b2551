package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// Списки курсов хранятся в колонке TEXT[]; через database/sql они ходят как
// строка с разделителем-запятой (string_to_array / array_to_string). Коды
// курсов алфавитно-цифровые, запятая в них невозможна.

// EnsureProfile возвращает профиль пользователя, создавая его с ролью
// models.RolePending, если профиля еще нет. ON CONFLICT делает ленивое
// создание безопасным при параллельных первых запросах одной сессии.
func (s *Storage) EnsureProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.EnsureProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	insert := `INSERT INTO profiles (user_uid, role)
			   VALUES ($1, $2)
			   ON CONFLICT (user_uid) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, insert, userUID, models.RolePending); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetProfile(ctx, userUID)
}

// GetProfile возвращает профиль пользователя по UID.
func (s *Storage) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, role, array_to_string(selected_courses, ',')
			  FROM profiles
			  WHERE user_uid = $1`
	p := &models.Profile{}
	var courses string
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&p.UserUID, &p.Role, &courses); err != nil {
		return nil, wrapNotFound(op, err)
	}
	p.SelectedCourses = splitCourses(courses)
	return p, nil
}

// UpdateSelectedCourses заменяет список курсов, на которые подписан пользователь.
func (s *Storage) UpdateSelectedCourses(ctx context.Context, userUID string, courses []string) (int, error) {
	const op = "storage.UpdateSelectedCourses"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET selected_courses = string_to_array($2, ',')
			  WHERE user_uid = $1`
	result, err := s.DB.ExecContext(ctx, query, userUID, strings.Join(courses, ","))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateRole перезаписывает роль пользователя. Идемпотентна.
func (s *Storage) UpdateRole(ctx context.Context, userUID, role string) (int, error) {
	const op = "storage.UpdateRole"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles SET role = $2 WHERE user_uid = $1`
	result, err := s.DB.ExecContext(ctx, query, userUID, role)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListProfilesByRole возвращает профили с заданной ролью
// (используется админкой для списка ожидающих одобрения).
func (s *Storage) ListProfilesByRole(ctx context.Context, role string) ([]*models.Profile, error) {
	const op = "storage.ListProfilesByRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, role, array_to_string(selected_courses, ',')
			  FROM profiles
			  WHERE role = $1
			  ORDER BY user_uid`
	rows, err := s.DB.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Profile
	for rows.Next() {
		var p models.Profile
		var courses string
		if err := rows.Scan(&p.UserUID, &p.Role, &courses); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.SelectedCourses = splitCourses(courses)
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func splitCourses(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}
