package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"assetmgt/config"
	"assetmgt/handlers"
	"assetmgt/lifecycle"
	"assetmgt/middleware"
	"assetmgt/models"
	"assetmgt/routes"
	"assetmgt/store"
	"assetmgt/utils"
)

type testEnv struct {
	router  *mux.Router
	store   *store.Store
	admin   models.User
	manager models.User
	staff   models.User
	dept    models.Department
	laptop  models.AssetType
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	config.LoadConfig()

	ctx := context.Background()
	s := store.NewMemory()

	dept := models.Department{Name: "Engineering", IsActive: true}
	require.NoError(t, s.Departments.Insert(ctx, &dept))
	laptop := models.AssetType{Name: "Laptop", Description: "Portable computers", IsActive: true}
	require.NoError(t, s.AssetTypes.Insert(ctx, &laptop))

	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: string(hash), Role: models.RoleAdmin, IsActive: true, CreatedAt: time.Now()}
	require.NoError(t, s.Users.Insert(ctx, &admin))
	manager := models.User{Name: "Minh", Email: "minh@example.com", PasswordHash: string(hash), Role: models.RoleManager, DepartmentID: dept.ID, IsActive: true, CreatedAt: time.Now()}
	require.NoError(t, s.Users.Insert(ctx, &manager))
	staff := models.User{Name: "Sam", Email: "sam@example.com", PasswordHash: string(hash), Role: models.RoleStaff, DepartmentID: dept.ID, IsActive: true, CreatedAt: time.Now()}
	require.NoError(t, s.Users.Insert(ctx, &staff))

	engine := lifecycle.NewEngine(s, nil)
	middleware.Init(s.Users, nil)
	handlers.Init(s, engine, nil)

	router := mux.NewRouter()
	routes.RegisterRoutes(router)

	return &testEnv{router: router, store: s, admin: admin, manager: manager, staff: staff, dept: dept, laptop: laptop}
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Name, string(user.Role))
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, rr, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, env.admin.ID, resp.User.ID)
	assert.NotContains(t, rr.Body.String(), "passwordHash")

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.store.Users.FindByID(context.Background(), env.staff.ID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, env.store.Users.Update(context.Background(), user))

	rr := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/assets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/assets", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/user/me", env.token(t, env.staff), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me models.User
	decode(t, rr, &me)
	assert.Equal(t, env.staff.ID, me.ID)
}

func TestAdminRoutesRedirectOtherRoles(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]interface{}{
		"name": "New person", "email": "new@example.com",
		"password": "password1", "role": "STAFF", "departmentId": env.dept.ID,
	}

	for _, user := range []models.User{env.manager, env.staff} {
		rr := env.do(t, http.MethodPost, "/api/admin/users", env.token(t, user), payload)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
	}

	rr := env.do(t, http.MethodPost, "/api/admin/users", env.token(t, env.admin), payload)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestAssetLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, env.admin)

	rr := env.do(t, http.MethodPost, "/api/assets", adminToken, map[string]interface{}{
		"code":         "LT-001",
		"name":         "MacBook",
		"typeId":       env.laptop.ID,
		"departmentId": env.dept.ID,
		"purchaseDate": "2024-03-01T00:00:00Z",
		"value":        2000,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created models.Asset
	decode(t, rr, &created)
	assert.Equal(t, models.StatusInStock, created.Status)

	// Manager cannot create.
	rr = env.do(t, http.MethodPost, "/api/assets", env.token(t, env.manager), map[string]interface{}{
		"code": "LT-002", "name": "Other", "typeId": env.laptop.ID,
		"purchaseDate": "2024-03-01T00:00:00Z", "value": 100,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	assignPath := fmt.Sprintf("/api/assets/%s/assign", created.ID)
	rr = env.do(t, http.MethodPost, assignPath, adminToken, map[string]interface{}{
		"departmentId": env.dept.ID,
		"userId":       env.staff.ID,
		"assignDate":   "2024-03-02T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var assigned models.Asset
	decode(t, rr, &assigned)
	assert.Equal(t, models.StatusInUse, assigned.Status)
	assert.Equal(t, env.staff.ID, assigned.AssignedTo)

	// A second assign conflicts with the current state.
	rr = env.do(t, http.MethodPost, assignPath, adminToken, map[string]interface{}{
		"departmentId": env.dept.ID,
		"userId":       env.staff.ID,
		"assignDate":   "2024-03-02T00:00:00Z",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, fmt.Sprintf("/api/assets/%s/evaluate", created.ID), adminToken, map[string]interface{}{
		"condition": "NEEDS_REPAIR",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, fmt.Sprintf("/api/assets/%s/evaluate", created.ID), adminToken, map[string]interface{}{
		"condition": "NEEDS_REPAIR", "notes": "screen flickers",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, fmt.Sprintf("/api/assets/%s/reclaim", created.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var reclaimed models.Asset
	decode(t, rr, &reclaimed)
	assert.Equal(t, models.StatusInStock, reclaimed.Status)
	assert.Empty(t, reclaimed.AssignedTo)

	rr = env.do(t, http.MethodGet, fmt.Sprintf("/api/assets/%s/history", created.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []models.AssetHistory
	decode(t, rr, &history)
	require.Len(t, history, 4)
	assert.Equal(t, models.ActionReclaimed, history[0].ActionType)
	assert.Equal(t, models.ActionCreated, history[len(history)-1].ActionType)
}

func TestStaffSeesOnlyOwnAssets(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, env.admin)

	for i, code := range []string{"LT-001", "LT-002", "LT-003"} {
		rr := env.do(t, http.MethodPost, "/api/assets", adminToken, map[string]interface{}{
			"code": code, "name": fmt.Sprintf("Laptop %d", i+1), "typeId": env.laptop.ID,
			"departmentId": env.dept.ID, "purchaseDate": "2024-03-01T00:00:00Z", "value": 1000,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		if i == 0 {
			var a models.Asset
			decode(t, rr, &a)
			rr = env.do(t, http.MethodPost, fmt.Sprintf("/api/assets/%s/assign", a.ID), adminToken, map[string]interface{}{
				"departmentId": env.dept.ID, "userId": env.staff.ID, "assignDate": "2024-03-02T00:00:00Z",
			})
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		}
	}

	rr := env.do(t, http.MethodGet, "/api/assets", env.token(t, env.staff), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var page struct {
		Items      []models.Asset `json:"items"`
		TotalItems int            `json:"totalItems"`
	}
	decode(t, rr, &page)
	require.Equal(t, 1, page.TotalItems)
	assert.Equal(t, "LT-001", page.Items[0].Code)

	rr = env.do(t, http.MethodGet, "/api/assets", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &page)
	assert.Equal(t, 3, page.TotalItems)
}

func TestListAssetsPipelineParams(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, env.admin)

	for i := 1; i <= 13; i++ {
		rr := env.do(t, http.MethodPost, "/api/assets", adminToken, map[string]interface{}{
			"code": fmt.Sprintf("LT-%03d", i), "name": fmt.Sprintf("Laptop %02d", i), "typeId": env.laptop.ID,
			"departmentId": env.dept.ID, "purchaseDate": "2024-03-01T00:00:00Z", "value": i * 100,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	// An unchanged search keeps its page.
	rr := env.do(t, http.MethodGet, "/api/assets?search=LT&prevSearch=LT&page=2", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var page struct {
		Items      []models.Asset `json:"items"`
		Page       int            `json:"page"`
		TotalPages int            `json:"totalPages"`
		TotalItems int            `json:"totalItems"`
		HasPrev    bool           `json:"hasPrev"`
		HasNext    bool           `json:"hasNext"`
	}
	decode(t, rr, &page)
	assert.Equal(t, 13, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)

	// Descending sort by value puts the most expensive first.
	rr = env.do(t, http.MethodGet, "/api/assets?sort=value&dir=desc", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &page)
	require.NotEmpty(t, page.Items)
	assert.Equal(t, "LT-013", page.Items[0].Code)

	// Filtering by status.
	rr = env.do(t, http.MethodGet, "/api/assets?status=IN_USE", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &page)
	assert.Zero(t, page.TotalItems)
}

func TestListPageResetsWhenInputsChange(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, env.admin)

	for i := 1; i <= 13; i++ {
		rr := env.do(t, http.MethodPost, "/api/assets", adminToken, map[string]interface{}{
			"code": fmt.Sprintf("LT-%03d", i), "name": fmt.Sprintf("Laptop %02d", i), "typeId": env.laptop.ID,
			"departmentId": env.dept.ID, "purchaseDate": "2024-03-01T00:00:00Z", "value": i * 100,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	var page struct {
		Page int `json:"page"`
	}

	// A fresh search drops the page back to 1.
	rr := env.do(t, http.MethodGet, "/api/assets?search=LT&page=2", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &page)
	assert.Equal(t, 1, page.Page)

	// So does a sort change, even with the search unchanged.
	rr = env.do(t, http.MethodGet, "/api/assets?search=LT&prevSearch=LT&sort=value&prevSort=name&page=2", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &page)
	assert.Equal(t, 1, page.Page)

	// Echoing every input keeps the page.
	rr = env.do(t, http.MethodGet, "/api/assets?search=LT&prevSearch=LT&sort=value&prevSort=value&page=2", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &page)
	assert.Equal(t, 2, page.Page)
}

func TestInitReusesBroadcastLoop(t *testing.T) {
	env := newTestEnv(t)
	before := runtime.NumGoroutine()

	for i := 0; i < 8; i++ {
		handlers.Init(env.store, lifecycle.NewEngine(env.store, nil), nil)
	}

	assert.Less(t, runtime.NumGoroutine()-before, 8)
}

func TestReportScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, env.admin)

	other := models.Department{Name: "Sales", IsActive: true}
	require.NoError(t, env.store.Departments.Insert(context.Background(), &other))

	for _, tc := range []struct {
		code string
		dept string
	}{
		{"LT-001", env.dept.ID},
		{"LT-002", env.dept.ID},
		{"PR-001", other.ID},
	} {
		rr := env.do(t, http.MethodPost, "/api/assets", adminToken, map[string]interface{}{
			"code": tc.code, "name": "Asset " + tc.code, "typeId": env.laptop.ID,
			"departmentId": tc.dept, "purchaseDate": "2024-03-01T00:00:00Z", "value": 500,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	var report struct {
		TotalAssets int            `json:"totalAssets"`
		StatusStats map[string]int `json:"statusStats"`
	}

	rr := env.do(t, http.MethodGet, "/api/reports", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decode(t, rr, &report)
	assert.Equal(t, 3, report.TotalAssets)
	assert.Equal(t, 3, report.StatusStats["IN_STOCK"])

	rr = env.do(t, http.MethodGet, "/api/reports", env.token(t, env.manager), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &report)
	assert.Equal(t, 2, report.TotalAssets)
}

func TestNotificationsFlow(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, env.admin)

	rr := env.do(t, http.MethodPost, "/api/assets", adminToken, map[string]interface{}{
		"code": "LT-001", "name": "Laptop", "typeId": env.laptop.ID,
		"departmentId": env.dept.ID, "purchaseDate": "2024-03-01T00:00:00Z", "value": 1000,
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var asset models.Asset
	decode(t, rr, &asset)

	rr = env.do(t, http.MethodPost, fmt.Sprintf("/api/assets/%s/assign", asset.ID), adminToken, map[string]interface{}{
		"departmentId": env.dept.ID, "userId": env.staff.ID, "assignDate": "2024-03-02T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	staffToken := env.token(t, env.staff)
	rr = env.do(t, http.MethodGet, "/api/notifications", staffToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unreadCount"`
	}
	decode(t, rr, &list)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, 1, list.UnreadCount)

	rr = env.do(t, http.MethodPost, "/api/notifications/read-all", staffToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/notifications", staffToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &list)
	assert.Zero(t, list.UnreadCount)
}

func TestDefaultAdminRoleImmutable(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, env.admin)

	rr := env.do(t, http.MethodDelete, "/api/admin/roles/role-admin", adminToken, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/admin/roles/role-admin", adminToken, map[string]interface{}{
		"name": "Renamed", "permissions": []string{"p1"},
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Creating and deleting a custom role works.
	rr = env.do(t, http.MethodPost, "/api/admin/roles", adminToken, map[string]interface{}{
		"name": "Auditor", "description": "Read only", "permissions": []string{"p5", "p14"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var role models.Role
	decode(t, rr, &role)

	rr = env.do(t, http.MethodDelete, "/api/admin/roles/"+role.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDepartmentDeactivationBlockedWithActiveEmployees(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.token(t, env.admin)

	rr := env.do(t, http.MethodPut, "/api/admin/departments/"+env.dept.ID, adminToken, map[string]interface{}{
		"name": env.dept.Name, "isActive": false,
	})
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "healthy")
}
