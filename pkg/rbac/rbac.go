// Package rbac guards routes by role. It must run after
// middleware.Authenticate.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/kashvi-shop/pkg/middleware"
	"github.com/shashiranjanraj/kashvi-shop/pkg/response"
)

// RoleAdmin is the role every admin and API route requires.
const RoleAdmin = "ROLE_ADMIN"

// HasRole lets the request through when the caller holds any of roles.
// An unauthenticated request gets 401, a caller without the role 403.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := middleware.PrincipalFrom(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}
			for _, role := range roles {
				if p.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "Access denied")
		})
	}
}
