package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
// При занятой почте возвращает apperr.ErrConflict.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, first_name, last_name, password_hash)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordHash).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, apperr.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по его почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, first_name, last_name, password_hash, refresh_token,
			      login_attempts, lock_until, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, first_name, last_name, password_hash, refresh_token,
			      login_attempts, lock_until, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var refreshToken sql.NullString
	var lockUntil sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&refreshToken, &u.LoginAttempts, &lockUntil, &u.CreatedAt); err != nil {
		return nil, wrapNotFound(op, err)
	}

	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	if lockUntil.Valid {
		u.LockUntil = &lockUntil.Time
	}
	return u, nil
}

// IncrementLoginAttempts атомарно увеличивает счетчик неудачных входов и,
// если достигнут порог maxAttempts, выставляет время блокировки.
// Истекшая блокировка сбрасывает счетчик: первая неудачная попытка после
// неё считается как одна, и пользователь снова получает полное окно.
// Один UPDATE без предварительного чтения, чтобы два параллельных
// неудачных входа не потеряли инкремент друг друга.
func (s *Storage) IncrementLoginAttempts(ctx context.Context, userUID string, maxAttempts int, lockFor time.Duration) (int, error) {
	const op = "storage.IncrementLoginAttempts"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET login_attempts = CASE WHEN lock_until IS NOT NULL AND lock_until < now()
			                            THEN 1
			                            ELSE login_attempts + 1 END,
			      lock_until = CASE WHEN lock_until IS NOT NULL AND lock_until < now()
			                        THEN NULL
			                        WHEN login_attempts + 1 >= $2
			                        THEN now() + $3::interval
			                        ELSE lock_until END
			  WHERE uid = $1
			  RETURNING login_attempts`
	var attempts int
	if err := s.DB.QueryRowContext(ctx, query, userUID, maxAttempts,
		fmt.Sprintf("%d seconds", int(lockFor.Seconds()))).Scan(&attempts); err != nil {
		return 0, wrapNotFound(op, err)
	}
	return attempts, nil
}

// ResetLoginAttempts сбрасывает счетчик попыток и снимает блокировку
// после успешного входа.
func (s *Storage) ResetLoginAttempts(ctx context.Context, userUID string) error {
	const op = "storage.ResetLoginAttempts"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET login_attempts = 0, lock_until = NULL
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetRefreshToken сохраняет новый refresh-токен пользователя,
// перекрывая предыдущую сессию (одна активная сессия на аккаунт).
func (s *Storage) SetRefreshToken(ctx context.Context, userUID, token string) error {
	const op = "storage.SetRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET refresh_token = $2 WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RotateRefreshToken заменяет refresh-токен по схеме compare-and-swap:
// запись меняется только если предъявленный токен совпадает с текущим.
// Возвращает false, если предъявлен устаревший токен — из двух
// параллельных ротаций выиграет ровно одна.
func (s *Storage) RotateRefreshToken(ctx context.Context, userUID, oldToken, newToken string) (bool, error) {
	const op = "storage.RotateRefreshToken"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET refresh_token = $3
			  WHERE uid = $1 AND refresh_token = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, oldToken, newToken)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// ClearRefreshToken удаляет сохраненный refresh-токен пользователя. Идемпотентна.
func (s *Storage) ClearRefreshToken(ctx context.Context, userUID string) error {
	const op = "storage.ClearRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET refresh_token = NULL WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
