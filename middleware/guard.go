// middleware/guard.go
package middleware

import (
	"net/http"

	"assetmgt/models"
	"assetmgt/policy"
)

// RequireAdmin guards admin-only route groups. A non-ADMIN user who
// navigates here is redirected to the default route rather than shown an
// error page; an unauthenticated request falls through to AuthMiddleware's
// 401.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if ok && user.Role != models.RoleAdmin {
			http.Redirect(w, r, policy.DefaultRoute, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireResource guards a route group with a policy table lookup, for
// groups that managers may enter but staff may not.
func RequireResource(resource policy.Resource, action policy.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if ok && !policy.CanAccess(user.Role, resource, action) {
				http.Redirect(w, r, policy.DefaultRoute, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
