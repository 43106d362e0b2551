// Package apperr содержит общие сентинельные ошибки доменного уровня.
// Сервисы возвращают их обёрнутыми через fmt.Errorf("%s: %w", op, err),
// а HTTP-обработчики сопоставляют с кодами ответов через errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound — запись не найдена в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrConflict — нарушение уникальности (почта или storage key уже заняты).
	ErrConflict = errors.New("already exists")
	// ErrForbidden — попытка доступа к чужому ресурсу или операции без нужной роли.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation — некорректные или неполные входные данные.
	ErrValidation = errors.New("validation error")

	// ErrInvalidCredentials — неверная пара почта/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked — аккаунт заблокирован после серии неудачных входов.
	ErrAccountLocked = errors.New("account is locked")
	// ErrInvalidToken — токен не прошел проверку подписи или уже отозван.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истек.
	ErrTokenExpired = errors.New("token expired")

	// ErrStorageDelete — объект не удалось удалить из объектного хранилища,
	// метаданные при этом сохраняются для повторной попытки.
	ErrStorageDelete = errors.New("storage delete failed")
)
