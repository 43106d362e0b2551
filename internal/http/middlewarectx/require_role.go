package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/CSES-Open-Source/tritonscript/internal/http/response"
)

// RequireRoles создает middleware, пропускающий только пользователей с одной
// из перечисленных ролей. Загрузка конспектов открыта ролям scribe и admin:
// пользователь с ролью pending уже аутентифицирован, но еще не одобрен.
func RequireRoles(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role == "" {
				log.Error("user role missing in context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			if _, ok := allowed[role]; !ok {
				log.Error("access denied for role", slog.String("role", role))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
