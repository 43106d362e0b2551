// Package storagekey отвечает за формирование и проверку ключей объектного
// хранилища. Ключ всегда лежит в пространстве имен владельца:
// notes/{uid}/{квартал}/{uuid}.pdf — поэтому по ключу можно проверить,
// что объект был загружен именно тем пользователем, который фиксирует метаданные.
package storagekey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefix возвращает префикс пространства имен пользователя в бакете.
func Prefix(userUID string) string {
	return fmt.Sprintf("notes/%s/", userUID)
}

// New генерирует уникальный ключ для нового конспекта пользователя.
// Пробелы в названии квартала заменяются на дефисы: "Fall 2025" -> "Fall-2025".
func New(userUID, quarter string) string {
	sanitizedQuarter := strings.Join(strings.Fields(quarter), "-")
	return fmt.Sprintf("%s%s/%s.pdf", Prefix(userUID), sanitizedQuarter, uuid.New())
}

// OwnedBy проверяет, что ключ принадлежит пространству имен пользователя.
// Фиксация метаданных с чужим ключом отклоняется до любых записей в базу.
func OwnedBy(key, userUID string) bool {
	return strings.HasPrefix(key, Prefix(userUID))
}
