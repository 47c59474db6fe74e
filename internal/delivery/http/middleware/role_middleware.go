package middleware

import (
	"net/http"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/pkg/response"
)

// RequireRole gates a route on the caller's role. It must run after
// AuthMiddleware.Authenticate; a missing identity is treated as unauthenticated.
func RequireRole(access entity.Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}

			if !access.Allows(role) {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.AccessAdmin)(next)
}

// RequirePatient is a convenience middleware for patient-only endpoints
func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.AccessPatient)(next)
}

// RequireStaffOrAdmin is a convenience middleware for clinic personnel endpoints
func RequireStaffOrAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.AccessStaffOrAdmin)(next)
}
