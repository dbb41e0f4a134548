// handlers/user_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"assetmgt/middleware"
	"assetmgt/models"
	"assetmgt/policy"
	"assetmgt/store"
	"assetmgt/utils"
	"assetmgt/validators"
	"assetmgt/views"
)

// ListUsers returns the users visible to the actor: everyone for ADMIN, own
// department for MANAGER, self for STAFF. Search covers name and email.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	all, err := st.Users.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	q := parseListQuery(r, "role", "department", "active")
	users := policy.VisibleUsers(actor, all)
	users = views.Search(users, q.Search, func(u models.User) []string {
		return []string{u.Name, u.Email}
	})
	if role := q.Filters["role"]; role != "" {
		users = views.Filter(users, func(u models.User) bool { return string(u.Role) == role })
	}
	if dept := q.Filters["department"]; dept != "" {
		users = views.Filter(users, func(u models.User) bool { return u.DepartmentID == dept })
	}
	if active := q.Filters["active"]; active != "" {
		want := active == "true"
		users = views.Filter(users, func(u models.User) bool { return u.IsActive == want })
	}

	switch q.Sort {
	case "email":
		users = views.SortByKey(users, func(u models.User) string { return u.Email }, q.Dir)
	case "createdAt":
		users = views.SortByLess(users, func(a, b models.User) bool { return a.CreatedAt.Before(b.CreatedAt) }, q.Dir)
	default:
		users = views.SortByKey(users, func(u models.User) string { return u.Name }, q.Dir)
	}

	utils.RespondWithJSON(w, http.StatusOK, views.Paginate(users, q.Page))
}

type createUserRequest struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Password     string          `json:"password"`
	Role         models.UserRole `json:"role"`
	DepartmentID string          `json:"departmentId"`
}

// CreateUser applies the two form steps in order: identity first, then role
// and department. Choosing ADMIN clears any department.
func CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := validators.UserStep1(req.Name, req.Email); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	deptID, err := validators.UserStep2(req.Role, req.DepartmentID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "password is required")
		return
	}
	if len(req.Password) < validators.MinPasswordLength {
		utils.RespondWithError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	if deptID != "" {
		dept, err := st.Departments.FindByID(r.Context(), deptID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "department not found")
			return
		}
		if !dept.IsActive {
			utils.RespondWithError(w, http.StatusBadRequest, "department is inactive")
			return
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		DepartmentID: deptID,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.Users.Insert(r.Context(), user); err != nil {
		if err == store.ErrDuplicate {
			utils.RespondWithError(w, http.StatusConflict, "email already in use")
			return
		}
		utils.RespondWithDomainError(w, err)
		return
	}

	refreshEmployeeCount(r, deptID)
	logger.Info("user created", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	utils.RespondWithJSON(w, http.StatusCreated, user)
}

func GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := st.Users.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	DepartmentID string          `json:"departmentId"`
	IsActive     *bool           `json:"isActive,omitempty"`
}

func UpdateUser(w http.ResponseWriter, r *http.Request) {
	user, err := st.Users.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	var req updateUserRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := validators.UserStep1(req.Name, req.Email); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	deptID, err := validators.UserStep2(req.Role, req.DepartmentID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if deptID != "" && deptID != user.DepartmentID {
		dept, err := st.Departments.FindByID(r.Context(), deptID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "department not found")
			return
		}
		if !dept.IsActive {
			utils.RespondWithError(w, http.StatusBadRequest, "department is inactive")
			return
		}
	}

	// Deactivation is refused while the user still holds assets.
	if req.IsActive != nil && !*req.IsActive && user.IsActive {
		n, err := st.Assets.CountInUseByUser(r.Context(), user.ID)
		if err != nil {
			utils.RespondWithDomainError(w, err)
			return
		}
		if n > 0 {
			utils.RespondWithError(w, http.StatusConflict, "user still holds assigned assets, reclaim them first")
			return
		}
	}

	prevDept := user.DepartmentID
	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.DepartmentID = deptID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := st.Users.Update(r.Context(), user); err != nil {
		if err == store.ErrDuplicate {
			utils.RespondWithError(w, http.StatusConflict, "email already in use")
			return
		}
		utils.RespondWithDomainError(w, err)
		return
	}

	if prevDept != user.DepartmentID {
		refreshEmployeeCount(r, prevDept)
		refreshEmployeeCount(r, user.DepartmentID)
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

func DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := st.Users.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	n, err := st.Assets.CountInUseByUser(r.Context(), user.ID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if n > 0 {
		utils.RespondWithError(w, http.StatusConflict, "user still holds assigned assets, reclaim them first")
		return
	}

	if err := st.Users.Delete(r.Context(), user.ID); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	refreshEmployeeCount(r, user.DepartmentID)
	logger.Info("user deleted", zap.String("userId", user.ID))
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// refreshEmployeeCount recomputes the cached active-employee count of a
// department after membership changes.
func refreshEmployeeCount(r *http.Request, departmentID string) {
	if departmentID == "" {
		return
	}
	dept, err := st.Departments.FindByID(r.Context(), departmentID)
	if err != nil {
		return
	}
	n, err := st.Users.CountActiveByDepartment(r.Context(), departmentID)
	if err != nil {
		return
	}
	dept.EmployeeCount = int(n)
	if err := st.Departments.Update(r.Context(), dept); err != nil {
		logger.Warn("employee count refresh failed", zap.String("departmentId", departmentID), zap.Error(err))
	}
}
