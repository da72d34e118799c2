package middleware

import (
	"net/http"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/auth"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
	"github.com/fbo-launchpad/fuel-ops/internal/transport"
)

// RequirePermission guards a route group behind a single permission check.
// Services still perform their own checks; the guard exists so obviously
// unauthorized requests are rejected before any handler logic runs, and the
// lookup result lands in the request cache for the service-level check.
func RequirePermission(resolver *rbac.Resolver, perm rbac.PermissionName) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(nil)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				base.HandleServiceError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
				return
			}

			if err := resolver.Require(r.Context(), user.Principal(), perm); err != nil {
				base.HandleServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
