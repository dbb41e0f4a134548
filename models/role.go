// models/role.go
package models

import "time"

type PermissionCategory string

const (
	CategoryUsers       PermissionCategory = "USERS"
	CategoryAssets      PermissionCategory = "ASSETS"
	CategoryDepartments PermissionCategory = "DEPARTMENTS"
	CategoryReports     PermissionCategory = "REPORTS"
	CategorySettings    PermissionCategory = "SETTINGS"
)

type Permission struct {
	ID          string             `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code"`
	Name        string             `bson:"name" json:"name"`
	Category    PermissionCategory `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
}

type Role struct {
	ID          string   `bson:"_id,omitempty" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Permissions []string `bson:"permissions" json:"permissions"`
	IsActive    bool     `bson:"isActive" json:"isActive"`
	// IsDefault marks the built-in Admin role: it cannot be renamed, disabled,
	// deleted, or have its permission set changed.
	IsDefault bool      `bson:"isDefault" json:"isDefault"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// PermissionCatalog is the fixed set of grantable permissions.
func PermissionCatalog() []Permission {
	return []Permission{
		{ID: "p1", Code: "users.view", Name: "View users", Category: CategoryUsers, Description: "View the user list"},
		{ID: "p2", Code: "users.create", Name: "Create users", Category: CategoryUsers, Description: "Create new users"},
		{ID: "p3", Code: "users.edit", Name: "Edit users", Category: CategoryUsers, Description: "Edit user details"},
		{ID: "p4", Code: "users.deactivate", Name: "Deactivate users", Category: CategoryUsers, Description: "Deactivate user accounts"},
		{ID: "p5", Code: "assets.view", Name: "View assets", Category: CategoryAssets, Description: "View the asset list"},
		{ID: "p6", Code: "assets.create", Name: "Create assets", Category: CategoryAssets, Description: "Add new assets"},
		{ID: "p7", Code: "assets.edit", Name: "Edit assets", Category: CategoryAssets, Description: "Edit asset details"},
		{ID: "p8", Code: "assets.assign", Name: "Assign assets", Category: CategoryAssets, Description: "Assign assets to employees"},
		{ID: "p9", Code: "assets.reclaim", Name: "Reclaim assets", Category: CategoryAssets, Description: "Reclaim assets from employees"},
		{ID: "p10", Code: "assets.evaluate", Name: "Evaluate assets", Category: CategoryAssets, Description: "Evaluate asset condition"},
		{ID: "p11", Code: "departments.view", Name: "View departments", Category: CategoryDepartments, Description: "View the department list"},
		{ID: "p12", Code: "departments.create", Name: "Create departments", Category: CategoryDepartments, Description: "Create new departments"},
		{ID: "p13", Code: "departments.edit", Name: "Edit departments", Category: CategoryDepartments, Description: "Edit department details"},
		{ID: "p14", Code: "reports.view", Name: "View reports", Category: CategoryReports, Description: "View statistics reports"},
		{ID: "p15", Code: "reports.export", Name: "Export reports", Category: CategoryReports, Description: "Export reports"},
		{ID: "p16", Code: "settings.manage", Name: "Manage settings", Category: CategorySettings, Description: "Manage system settings"},
		{ID: "p17", Code: "roles.manage", Name: "Manage roles", Category: CategorySettings, Description: "Manage roles and permissions"},
	}
}

// DefaultAdminRole returns the immutable built-in Admin role holding every
// permission in the catalog.
func DefaultAdminRole() Role {
	perms := PermissionCatalog()
	ids := make([]string, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return Role{
		ID:          "role-admin",
		Name:        "Admin",
		Description: "Full access to every module",
		Permissions: ids,
		IsActive:    true,
		IsDefault:   true,
	}
}
