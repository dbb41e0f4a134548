// handlers/role_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"assetmgt/models"
	"assetmgt/store"
	"assetmgt/utils"
	"assetmgt/validators"
	"assetmgt/views"
)

func ListRoles(w http.ResponseWriter, r *http.Request) {
	all, err := st.Roles.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	q := parseListQuery(r)
	roles := views.Search(all, q.Search, func(role models.Role) []string {
		return []string{role.Name, role.Description}
	})
	roles = views.SortByKey(roles, func(role models.Role) string { return role.Name }, q.Dir)

	utils.RespondWithJSON(w, http.StatusOK, views.Paginate(roles, q.Page))
}

// ListPermissions returns the fixed permission catalog for the role form.
func ListPermissions(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, models.PermissionCatalog())
}

type roleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

func CreateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validators.RoleInput(req.Name, req.Permissions); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	role := &models.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := st.Roles.Insert(r.Context(), role); err != nil {
		if err == store.ErrDuplicate {
			utils.RespondWithError(w, http.StatusConflict, "role name must be unique")
			return
		}
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, role)
}

func GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := st.Roles.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, role)
}

func UpdateRole(w http.ResponseWriter, r *http.Request) {
	role, err := st.Roles.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	var req roleRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validators.RoleInput(req.Name, req.Permissions); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	// The built-in Admin role keeps its name and permission set. Only the
	// description may change.
	if role.IsDefault {
		if req.Name != role.Name || !samePermissions(req.Permissions, role.Permissions) {
			utils.RespondWithError(w, http.StatusConflict, "the default Admin role cannot be modified")
			return
		}
		if req.IsActive != nil && !*req.IsActive {
			utils.RespondWithError(w, http.StatusConflict, "the default Admin role cannot be disabled")
			return
		}
	}

	role.Name = req.Name
	role.Description = req.Description
	role.Permissions = req.Permissions
	if req.IsActive != nil {
		role.IsActive = *req.IsActive
	}

	if err := st.Roles.Update(r.Context(), role); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, role)
}

func DeleteRole(w http.ResponseWriter, r *http.Request) {
	role, err := st.Roles.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if role.IsDefault {
		utils.RespondWithError(w, http.StatusConflict, "the default Admin role cannot be deleted")
		return
	}

	if err := st.Roles.Delete(r.Context(), role.ID); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}

func samePermissions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if !seen[id] {
			return false
		}
	}
	return true
}
