package middleware

import (
	"net/http"

	"pos-till/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin middleware ensures the user has admin role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin, logger)
}

// RequireRole lets through users ranked at or above min in the
// admin > manager > cashier hierarchy.
func RequireRole(min domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !role.AtLeast(min) {
				logger.Warn("User role not authorized",
					zap.String("role", string(role)),
					zap.String("required", string(min)),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
