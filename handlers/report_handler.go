// handlers/report_handler.go
package handlers

import (
	"net/http"

	"assetmgt/middleware"
	"assetmgt/models"
	"assetmgt/policy"
	"assetmgt/utils"
)

type departmentStat struct {
	DepartmentID   string  `json:"departmentId"`
	DepartmentName string  `json:"departmentName"`
	Total          int     `json:"total"`
	InUse          int     `json:"inUse"`
	InStock        int     `json:"inStock"`
	TotalValue     float64 `json:"totalValue"`
}

type reportData struct {
	TotalAssets     int                    `json:"totalAssets"`
	TotalValue      float64                `json:"totalValue"`
	StatusStats     map[string]int         `json:"statusStats"`
	ConditionStats  map[string]int         `json:"conditionStats"`
	TypeStats       map[string]int         `json:"typeStats"`
	DepartmentStats []departmentStat       `json:"departmentStats"`
	RecentActivity  []models.AssetHistory  `json:"recentActivity"`
}

// GetReport aggregates dashboard statistics over the assets the caller is
// allowed to see, so a manager's numbers cover only their department and a
// staff member's only their own assignments.
func GetReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !policy.CanAccess(user.Role, policy.ResourceReports, policy.ActionView) {
		utils.RespondWithError(w, http.StatusForbidden, "reports access denied")
		return
	}

	all, err := st.Assets.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	assets := policy.VisibleAssets(user, all)

	types, err := st.AssetTypes.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	typeNames := make(map[string]string, len(types))
	for _, t := range types {
		typeNames[t.ID] = t.Name
	}

	departments, err := st.Departments.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	deptNames := make(map[string]string, len(departments))
	for _, d := range departments {
		deptNames[d.ID] = d.Name
	}

	report := reportData{
		StatusStats:    make(map[string]int),
		ConditionStats: make(map[string]int),
		TypeStats:      make(map[string]int),
	}
	byDept := make(map[string]*departmentStat)

	for _, a := range assets {
		report.TotalAssets++
		report.TotalValue += a.Value
		report.StatusStats[string(a.Status)]++
		if a.Condition != "" {
			report.ConditionStats[string(a.Condition)]++
		}

		typeName := typeNames[a.TypeID]
		if typeName == "" {
			typeName = a.TypeID
		}
		report.TypeStats[typeName]++

		if a.DepartmentID == "" {
			continue
		}
		ds, ok := byDept[a.DepartmentID]
		if !ok {
			name := deptNames[a.DepartmentID]
			if name == "" {
				name = a.DepartmentID
			}
			ds = &departmentStat{DepartmentID: a.DepartmentID, DepartmentName: name}
			byDept[a.DepartmentID] = ds
		}
		ds.Total++
		ds.TotalValue += a.Value
		switch a.Status {
		case models.StatusInUse:
			ds.InUse++
		case models.StatusInStock:
			ds.InStock++
		}
	}

	report.DepartmentStats = make([]departmentStat, 0, len(byDept))
	for _, d := range departments {
		if ds, ok := byDept[d.ID]; ok {
			report.DepartmentStats = append(report.DepartmentStats, *ds)
		}
	}

	// Recent activity is limited to assets the caller can see.
	visible := make(map[string]bool, len(assets))
	for _, a := range assets {
		visible[a.ID] = true
	}
	recent, err := st.History.List(r.Context(), 100)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	report.RecentActivity = make([]models.AssetHistory, 0, 20)
	for _, entry := range recent {
		if !visible[entry.AssetID] {
			continue
		}
		report.RecentActivity = append(report.RecentActivity, entry)
		if len(report.RecentActivity) == 20 {
			break
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}
