package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmgt/config"
	"assetmgt/models"
	"assetmgt/policy"
	"assetmgt/store"
	"assetmgt/utils"
)

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func requestAs(user *models.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	if user != nil {
		req = req.WithContext(WithUser(req.Context(), *user))
	}
	return req
}

func TestRequireAdmin(t *testing.T) {
	next, called := okHandler()
	guard := RequireAdmin(next)

	rr := httptest.NewRecorder()
	guard.ServeHTTP(rr, requestAs(&models.User{ID: "u1", Role: models.RoleAdmin}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, *called)

	for _, role := range []models.UserRole{models.RoleManager, models.RoleStaff} {
		*called = false
		rr = httptest.NewRecorder()
		guard.ServeHTTP(rr, requestAs(&models.User{ID: "u2", Role: role}))
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, policy.DefaultRoute, rr.Header().Get("Location"))
		assert.False(t, *called)
	}
}

func TestRequireResource(t *testing.T) {
	next, called := okHandler()
	guard := RequireResource(policy.ResourceReports, policy.ActionExport)(next)

	rr := httptest.NewRecorder()
	guard.ServeHTTP(rr, requestAs(&models.User{Role: models.RoleManager}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, *called)

	*called = false
	rr = httptest.NewRecorder()
	guard.ServeHTTP(rr, requestAs(&models.User{Role: models.RoleStaff}))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.False(t, *called)
}

func TestCorsMiddleware(t *testing.T) {
	next, called := okHandler()
	handler := CorsMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, *called)

	// Preflight stops at the middleware.
	*called = false
	req = httptest.NewRequest(http.MethodOptions, "/api/assets", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, *called)

	// Websocket upgrades pass through untouched.
	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.True(t, *called)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthMiddleware(t *testing.T) {
	config.LoadConfig()

	s := store.NewMemory()
	user := models.User{Name: "Alice", Email: "alice@example.com", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, s.Users.Insert(context.Background(), &user))
	Init(s.Users, nil)

	var seen models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := AuthMiddleware(next)

	token, err := utils.GenerateJWT(user.ID, user.Name, string(user.Role))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, user.ID, seen.ID)

	// Missing and malformed headers are rejected.
	for _, header := range []string{"", "Token abc", "Bearer bogus"} {
		req = httptest.NewRequest(http.MethodGet, "/api/assets", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr = httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}
}

func TestAuthMiddlewareRejectsDeactivatedUser(t *testing.T) {
	config.LoadConfig()

	s := store.NewMemory()
	user := models.User{Name: "Ivan", Email: "ivan@example.com", Role: models.RoleStaff, IsActive: false}
	require.NoError(t, s.Users.Insert(context.Background(), &user))
	Init(s.Users, nil)

	next, called := okHandler()
	protected := AuthMiddleware(next)

	token, err := utils.GenerateJWT(user.ID, user.Name, string(user.Role))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, *called)
}
