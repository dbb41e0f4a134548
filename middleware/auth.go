// middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"assetmgt/models"
	"assetmgt/store"
	"assetmgt/utils"
)

type contextKey string

const userKey contextKey = "currentUser"

var (
	users  store.UserRepository
	logger = zap.NewNop()
)

// Init wires the user repository and logger used by the auth middleware.
func Init(u store.UserRepository, l *zap.Logger) {
	users = u
	if l != nil {
		logger = l
	}
}

// UserFrom returns the authenticated user attached by AuthMiddleware.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// WithUser attaches a user to the context. Exported for handler tests.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket upgrades authenticate via query token in the handler.
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			logger.Debug("JWT validation failed", zap.Error(err))
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
			return
		}
		if !user.IsActive {
			utils.RespondWithError(w, http.StatusUnauthorized, "Account is deactivated")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), *user)))
	})
}
