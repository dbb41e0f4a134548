// policy/policy.go
//
// Every role check in the service goes through this package. Handlers and the
// lifecycle engine consult the same tables, so a rule changed here changes
// everywhere at once.
package policy

import "assetmgt/models"

type Resource string

const (
	ResourceUsers       Resource = "users"
	ResourceAssets      Resource = "assets"
	ResourceDepartments Resource = "departments"
	ResourceAssetTypes  Resource = "asset_types"
	ResourceRoles       Resource = "roles"
	ResourceReports     Resource = "reports"
	ResourceSettings    Resource = "settings"
	ResourceProfile     Resource = "profile"
)

type Action string

const (
	ActionView     Action = "view"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionAssign   Action = "assign"
	ActionReclaim  Action = "reclaim"
	ActionEvaluate Action = "evaluate"
	ActionExport   Action = "export"
	ActionManage   Action = "manage"
)

// managerAllowed lists what a MANAGER may do beyond their own profile. Asset
// actions are additionally scoped to the manager's department by the engine.
var managerAllowed = map[Resource]map[Action]bool{
	ResourceAssets: {
		ActionView: true, ActionEdit: true, ActionDelete: true,
		ActionAssign: true, ActionReclaim: true, ActionEvaluate: true,
	},
	ResourceDepartments: {ActionView: true},
	ResourceReports:     {ActionView: true, ActionExport: true},
	ResourceProfile:     {ActionView: true, ActionEdit: true},
}

// staffAllowed is read-only: own assets, own reports, own profile.
var staffAllowed = map[Resource]map[Action]bool{
	ResourceAssets:  {ActionView: true},
	ResourceReports: {ActionView: true},
	ResourceProfile: {ActionView: true, ActionEdit: true},
}

// CanAccess reports whether a role may perform an action on a resource.
// ADMIN passes everything; the caller still applies scope (department for
// MANAGER, own assignments for STAFF) where it matters.
func CanAccess(role models.UserRole, resource Resource, action Action) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return managerAllowed[resource][action]
	case models.RoleStaff:
		return staffAllowed[resource][action]
	}
	return false
}

// CanCreateAssets: creation is an ADMIN operation; managers work within an
// existing pool.
func CanCreateAssets(role models.UserRole) bool {
	return role == models.RoleAdmin
}

// VisibleAssets returns the subset of assets the user is allowed to see:
// everything for ADMIN, the user's department for MANAGER, and only assets
// assigned to the user for STAFF.
func VisibleAssets(user models.User, assets []models.Asset) []models.Asset {
	switch user.Role {
	case models.RoleAdmin:
		return assets
	case models.RoleManager:
		out := make([]models.Asset, 0, len(assets))
		for _, a := range assets {
			if a.DepartmentID == user.DepartmentID {
				out = append(out, a)
			}
		}
		return out
	case models.RoleStaff:
		out := make([]models.Asset, 0, len(assets))
		for _, a := range assets {
			if a.AssignedTo == user.ID {
				out = append(out, a)
			}
		}
		return out
	}
	return []models.Asset{}
}

// VisibleUsers: ADMIN sees everyone, MANAGER sees their department, STAFF
// sees only themselves.
func VisibleUsers(viewer models.User, users []models.User) []models.User {
	switch viewer.Role {
	case models.RoleAdmin:
		return users
	case models.RoleManager:
		out := make([]models.User, 0, len(users))
		for _, u := range users {
			if u.DepartmentID == viewer.DepartmentID {
				out = append(out, u)
			}
		}
		return out
	case models.RoleStaff:
		for _, u := range users {
			if u.ID == viewer.ID {
				return []models.User{u}
			}
		}
	}
	return []models.User{}
}

// CanAssignWithin reports whether the actor may assign assets into the given
// department: ADMIN anywhere, MANAGER only their own department.
func CanAssignWithin(actor models.User, departmentID string) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return actor.DepartmentID == departmentID
	}
	return false
}

// DefaultRoute is where the route guard sends an authenticated user who
// navigates somewhere their role cannot go. It is a redirect, never an error
// page.
const DefaultRoute = "/"
