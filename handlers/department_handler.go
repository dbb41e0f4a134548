// handlers/department_handler.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"assetmgt/middleware"
	"assetmgt/models"
	"assetmgt/utils"
	"assetmgt/validators"
	"assetmgt/views"
)

// ListDepartments is available to every role; managers see it read-only.
func ListDepartments(w http.ResponseWriter, r *http.Request) {
	all, err := st.Departments.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	q := parseListQuery(r, "active")
	depts := views.Search(all, q.Search, func(d models.Department) []string {
		return []string{d.Name, d.Description}
	})
	if active := q.Filters["active"]; active != "" {
		want := active == "true"
		depts = views.Filter(depts, func(d models.Department) bool { return d.IsActive == want })
	}
	depts = views.SortByKey(depts, func(d models.Department) string { return d.Name }, q.Dir)

	utils.RespondWithJSON(w, http.StatusOK, views.Paginate(depts, q.Page))
}

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   string `json:"managerId,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

func CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validators.DepartmentInput(req.Name); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if req.ManagerID != "" {
		if _, err := st.Users.FindByID(r.Context(), req.ManagerID); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "manager not found")
			return
		}
	}

	dept := &models.Department{
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
		IsActive:    true,
	}
	if err := st.Departments.Insert(r.Context(), dept); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	logger.Info("department created", zap.String("departmentId", dept.ID))
	utils.RespondWithJSON(w, http.StatusCreated, dept)
}

func GetDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	dept, err := st.Departments.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	// Managers may only view their own department in detail.
	if actor.Role == models.RoleManager && dept.ID != actor.DepartmentID {
		utils.RespondWithError(w, http.StatusForbidden, "access denied to this department")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dept)
}

func UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := st.Departments.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	var req departmentRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validators.DepartmentInput(req.Name); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	// A department with active employees cannot be deactivated. Hard rule,
	// not a warning: members must be moved or deactivated first.
	if req.IsActive != nil && !*req.IsActive && dept.IsActive {
		n, err := st.Users.CountActiveByDepartment(r.Context(), dept.ID)
		if err != nil {
			utils.RespondWithDomainError(w, err)
			return
		}
		if n > 0 {
			utils.RespondWithError(w, http.StatusConflict, "department has active employees and cannot be deactivated")
			return
		}
	}

	dept.Name = req.Name
	dept.Description = req.Description
	dept.ManagerID = req.ManagerID
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}

	if err := st.Departments.Update(r.Context(), dept); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dept)
}

func DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := st.Departments.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	employees, err := st.Users.CountActiveByDepartment(r.Context(), dept.ID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if employees > 0 {
		utils.RespondWithError(w, http.StatusConflict, "department has active employees and cannot be deleted")
		return
	}
	assets, err := st.Assets.CountInUseByDepartment(r.Context(), dept.ID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if assets > 0 {
		utils.RespondWithError(w, http.StatusConflict, "department has assets in use and cannot be deleted")
		return
	}

	if err := st.Departments.Delete(r.Context(), dept.ID); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	logger.Info("department deleted", zap.String("departmentId", dept.ID))
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "department deleted"})
}
