package models

import (
	"fmt"
	"strings"
	"time"
)

// Note представляет метаданные одного загруженного конспекта.
// Сами байты файла лежат в объектном хранилище под StorageKey,
// метаданные фиксируются только после подтверждения загрузки клиентом.
type Note struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	ClassName      string    `json:"class_name"`
	ClassNumber    string    `json:"class_number"`
	InstructorName string    `json:"instructor_name,omitempty"`
	Quarter        string    `json:"quarter"`
	CourseCode     string    `json:"course_code"`
	OwnerUID       string    `json:"owner_uid"`
	Bucket         string    `json:"-"`
	StorageKey     string    `json:"-"`
	FileSize       int64     `json:"file_size"`
	SearchIndex    string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DummyNote используется для приёма данных из JSON-запроса на фиксацию
// конспекта, прежде чем конвертировать их в Note.
type DummyNote struct {
	Title          string `json:"title" validate:"required"`
	ClassName      string `json:"class_name" validate:"required"`
	ClassNumber    string `json:"class_number" validate:"required,alphanum"`
	InstructorName string `json:"instructor_name"`
	Quarter        string `json:"quarter" validate:"required"`
	StorageKey     string `json:"storage_key" validate:"required"`
	FileSize       int64  `json:"file_size" validate:"required,gt=0"`
}

// BuildCourseCode собирает код курса из названия и номера, например
// ("CSE", "101") -> "CSE101". Пробелы убираются, буквы приводятся к верхнему регистру.
func BuildCourseCode(className, classNumber string) string {
	name := strings.ToUpper(strings.ReplaceAll(className, " ", ""))
	number := strings.ToUpper(strings.ReplaceAll(classNumber, " ", ""))
	return name + number
}

// BuildSearchIndex собирает строку для поиска по подстроке:
// все человекочитаемые поля конспекта в нижнем регистре через пробел.
func BuildSearchIndex(title, className, classNumber, instructorName, quarter string) string {
	return strings.ToLower(strings.Join([]string{
		title, className, classNumber, instructorName, quarter,
	}, " "))
}

// FileName возвращает имя файла для скачивания на основе заголовка конспекта.
func (n *Note) FileName() string {
	return fmt.Sprintf("%s.pdf", n.Title)
}
