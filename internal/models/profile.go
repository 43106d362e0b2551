package models

// Роли пользователя. Новый профиль всегда создается с ролью RolePending;
// загружать конспекты могут только RoleScribe и RoleAdmin.
const (
	RolePending  = "pending"
	RoleViewer   = "viewer"
	RoleScribe   = "scribe"
	RoleAdmin    = "admin"
	RoleRejected = "rejected"
)

// ValidRole проверяет, что строка является известной ролью.
func ValidRole(role string) bool {
	switch role {
	case RolePending, RoleViewer, RoleScribe, RoleAdmin, RoleRejected:
		return true
	}
	return false
}

// Profile хранит роль пользователя и список курсов, на которые он подписан.
// Профиль создается лениво при первом обращении к /auth/me.
type Profile struct {
	UserUID         string   `json:"user_uid"`
	Role            string   `json:"role"`
	SelectedCourses []string `json:"selected_courses"`
}
