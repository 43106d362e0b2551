// Package models содержит доменные модели пользователя, профиля и конспекта,
// используемые в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// Поля PasswordHash и RefreshToken никогда не сериализуются в ответы API.
type User struct {
	UID           string     // Уникальный идентификатор пользователя
	Email         string     // Университетская почта (уникальная, в нижнем регистре)
	FirstName     string     // Имя
	LastName      string     // Фамилия
	PasswordHash  string     // Хэш пароля пользователя
	RefreshToken  *string    // Текущий refresh-токен (одна активная сессия на аккаунт)
	LoginAttempts int        // Счетчик неудачных попыток входа
	LockUntil     *time.Time // Время окончания блокировки аккаунта, nil — не заблокирован
	CreatedAt     time.Time  // Дата регистрации
}

// PublicUser содержит только те поля пользователя, которые можно отдавать наружу.
type PublicUser struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Public возвращает представление пользователя без секретных полей.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:       u.UID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// IsLocked сообщает, заблокирован ли аккаунт в данный момент.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}
