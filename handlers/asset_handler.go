// handlers/asset_handler.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"assetmgt/lifecycle"
	"assetmgt/metrics"
	"assetmgt/middleware"
	"assetmgt/models"
	"assetmgt/policy"
	"assetmgt/utils"
	"assetmgt/validators"
	"assetmgt/views"
)

// ListAssets returns the actor's visible assets run through the list
// pipeline: search on name and code, categorical filters on status,
// department and type, locale-aware sort, pages of 10.
func ListAssets(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	all, err := st.Assets.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	q := parseListQuery(r, "status", "department", "type")
	assets := policy.VisibleAssets(actor, all)
	assets = views.Search(assets, q.Search, func(a models.Asset) []string {
		return []string{a.Name, a.Code}
	})
	if status := q.Filters["status"]; status != "" {
		assets = views.Filter(assets, func(a models.Asset) bool { return string(a.Status) == status })
	}
	if dept := q.Filters["department"]; dept != "" {
		assets = views.Filter(assets, func(a models.Asset) bool { return a.DepartmentID == dept })
	}
	if typeID := q.Filters["type"]; typeID != "" {
		assets = views.Filter(assets, func(a models.Asset) bool { return a.TypeID == typeID })
	}

	switch q.Sort {
	case "code":
		assets = views.SortByKey(assets, func(a models.Asset) string { return a.Code }, q.Dir)
	case "value":
		assets = views.SortByLess(assets, func(a, b models.Asset) bool { return a.Value < b.Value }, q.Dir)
	case "purchaseDate":
		assets = views.SortByLess(assets, func(a, b models.Asset) bool { return a.PurchaseDate.Before(b.PurchaseDate) }, q.Dir)
	default:
		assets = views.SortByKey(assets, func(a models.Asset) string { return a.Name }, q.Dir)
	}

	utils.RespondWithJSON(w, http.StatusOK, views.Paginate(assets, q.Page))
}

func CreateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var cmd lifecycle.CreateCommand
	if err := utils.ParseJSON(r, &cmd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	asset, err := engine.Create(r.Context(), actor, cmd)
	metrics.ObserveTransition("create", err)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, asset)
}

func GetAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	asset, err := st.Assets.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if !canViewAsset(actor, asset) {
		utils.RespondWithError(w, http.StatusForbidden, "access denied to this asset")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func UpdateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var cmd lifecycle.EditCommand
	if err := utils.ParseJSON(r, &cmd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	cmd.AssetID = mux.Vars(r)["id"]

	asset, err := engine.Edit(r.Context(), actor, cmd)
	metrics.ObserveTransition("edit", err)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func DeleteAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	err := engine.Delete(r.Context(), actor, mux.Vars(r)["id"])
	metrics.ObserveTransition("delete", err)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}

func AssignAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var cmd lifecycle.AssignCommand
	if err := utils.ParseJSON(r, &cmd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	cmd.AssetID = mux.Vars(r)["id"]

	asset, err := engine.Assign(r.Context(), actor, cmd)
	metrics.ObserveTransition("assign", err)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	updateInUseGauge(r)
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func EvaluateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var cmd lifecycle.EvaluateCommand
	if err := utils.ParseJSON(r, &cmd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	cmd.AssetID = mux.Vars(r)["id"]

	asset, err := engine.Evaluate(r.Context(), actor, cmd)
	metrics.ObserveTransition("evaluate", err)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func ReclaimAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	asset, err := engine.Reclaim(r.Context(), actor, mux.Vars(r)["id"])
	metrics.ObserveTransition("reclaim", err)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	updateInUseGauge(r)
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

// GetAssetHistory returns the audit trail for one asset, newest first.
func GetAssetHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	assetID := mux.Vars(r)["id"]
	asset, err := st.Assets.FindByID(r.Context(), assetID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if !canViewAsset(actor, asset) {
		utils.RespondWithError(w, http.StatusForbidden, "access denied to this asset")
		return
	}

	entries, err := st.History.ListByAsset(r.Context(), assetID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, entries)
}

// UploadAssetImage accepts an optional photo for an asset via multipart
// form. The file must be an image and at most 5MB.
func UploadAssetImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !policy.CanAccess(actor.Role, policy.ResourceAssets, policy.ActionEdit) {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	asset, err := st.Assets.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	if err := r.ParseMultipartForm(validators.MaxImageSize + 1024); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if err := validators.AssetImage(header.Header.Get("Content-Type"), header.Size); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	// Only the reference is stored; binary storage is outside this service.
	asset.Image = header.Filename
	if err := st.Assets.Update(r.Context(), asset, nil); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func canViewAsset(actor models.User, asset *models.Asset) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return asset.DepartmentID == actor.DepartmentID
	case models.RoleStaff:
		return asset.AssignedTo == actor.ID
	}
	return false
}

func updateInUseGauge(r *http.Request) {
	all, err := st.Assets.List(r.Context())
	if err != nil {
		return
	}
	var n int64
	for _, a := range all {
		if a.Status == models.StatusInUse {
			n++
		}
	}
	metrics.SetAssetsInUse(n)
}
