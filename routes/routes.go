package routes

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetmgt/handlers"
	"assetmgt/middleware"
	"assetmgt/policy"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

// Route grouping constants
const (
	PathAPI     = "/api"
	PathHealth  = "/health"
	PathMetrics = "/metrics"
	PathWS      = "/ws"
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// PUBLIC ROUTES
	// ====================
	r.HandleFunc(PathHealth, handlers.HealthCheck).Methods(MethodsGetOnly...)
	r.Handle(PathMetrics, promhttp.Handler()).Methods(MethodsGetOnly...)
	r.HandleFunc(PathWS, handlers.HandleWebSocket)

	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/logout", handlers.Logout).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/validate", handlers.ValidateToken).Methods(MethodsGetOnly...)

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	apiRouter := r.PathPrefix(PathAPI).Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	// ====================
	// CURRENT USER
	// ====================
	apiRouter.HandleFunc("/user/me", handlers.GetCurrentUser).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/user/change-password", handlers.ChangePassword).Methods(MethodsPostOnly...)

	// ====================
	// ASSETS
	// ====================
	apiRouter.HandleFunc("/assets", handlers.ListAssets).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets", handlers.CreateAsset).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}", handlers.GetAsset).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets/{id}", handlers.UpdateAsset).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/assets/{id}", handlers.DeleteAsset).Methods(MethodsDeleteOnly...)
	apiRouter.HandleFunc("/assets/{id}/assign", handlers.AssignAsset).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}/evaluate", handlers.EvaluateAsset).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}/reclaim", handlers.ReclaimAsset).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}/history", handlers.GetAssetHistory).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets/{id}/image", handlers.UploadAssetImage).Methods(MethodsPostOnly...)

	// ====================
	// ASSET TYPES (reads for everyone, writes admin only)
	// ====================
	apiRouter.HandleFunc("/asset-types", handlers.ListAssetTypes).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/asset-types/{id}", handlers.GetAssetType).Methods(MethodsGetOnly...)

	// ====================
	// DEPARTMENTS (reads scoped in handlers, writes admin only)
	// ====================
	apiRouter.HandleFunc("/departments", handlers.ListDepartments).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/departments/{id}", handlers.GetDepartment).Methods(MethodsGetOnly...)

	// ====================
	// USERS (visibility scoped in handlers)
	// ====================
	apiRouter.HandleFunc("/users", handlers.ListUsers).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users/{id}", handlers.GetUser).Methods(MethodsGetOnly...)

	// ====================
	// REPORTS AND ACTIVITY
	// ====================
	reportRouter := apiRouter.PathPrefix("/reports").Subrouter()
	reportRouter.Use(middleware.RequireResource(policy.ResourceReports, policy.ActionView))
	reportRouter.HandleFunc("", handlers.GetReport).Methods(MethodsGetOnly...)

	// ====================
	// NOTIFICATIONS
	// ====================
	apiRouter.HandleFunc("/notifications", handlers.ListNotifications).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/notifications/read-all", handlers.MarkAllNotificationsRead).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/notifications/{id}/read", handlers.MarkNotificationRead).Methods(MethodsPostOnly...)

	// ====================
	// ADMIN ROUTES (RequireAdmin redirects other roles home)
	// ====================
	adminRouter := apiRouter.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.RequireAdmin)

	adminRouter.HandleFunc("/users", handlers.CreateUser).Methods(MethodsPostOnly...)
	adminRouter.HandleFunc("/users/{id}", handlers.UpdateUser).Methods(MethodsPutOnly...)
	adminRouter.HandleFunc("/users/{id}", handlers.DeleteUser).Methods(MethodsDeleteOnly...)

	adminRouter.HandleFunc("/asset-types", handlers.CreateAssetType).Methods(MethodsPostOnly...)
	adminRouter.HandleFunc("/asset-types/{id}", handlers.UpdateAssetType).Methods(MethodsPutOnly...)
	adminRouter.HandleFunc("/asset-types/{id}", handlers.DeleteAssetType).Methods(MethodsDeleteOnly...)

	adminRouter.HandleFunc("/departments", handlers.CreateDepartment).Methods(MethodsPostOnly...)
	adminRouter.HandleFunc("/departments/{id}", handlers.UpdateDepartment).Methods(MethodsPutOnly...)
	adminRouter.HandleFunc("/departments/{id}", handlers.DeleteDepartment).Methods(MethodsDeleteOnly...)

	adminRouter.HandleFunc("/roles", handlers.ListRoles).Methods(MethodsGetOnly...)
	adminRouter.HandleFunc("/roles", handlers.CreateRole).Methods(MethodsPostOnly...)
	adminRouter.HandleFunc("/roles/permissions", handlers.ListPermissions).Methods(MethodsGetOnly...)
	adminRouter.HandleFunc("/roles/{id}", handlers.GetRole).Methods(MethodsGetOnly...)
	adminRouter.HandleFunc("/roles/{id}", handlers.UpdateRole).Methods(MethodsPutOnly...)
	adminRouter.HandleFunc("/roles/{id}", handlers.DeleteRole).Methods(MethodsDeleteOnly...)

	adminRouter.HandleFunc("/history", handlers.ListRecentHistory).Methods(MethodsGetOnly...)
}
