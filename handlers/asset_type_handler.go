// handlers/asset_type_handler.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"assetmgt/models"
	"assetmgt/store"
	"assetmgt/utils"
	"assetmgt/validators"
	"assetmgt/views"
)

func ListAssetTypes(w http.ResponseWriter, r *http.Request) {
	all, err := st.AssetTypes.List(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	q := parseListQuery(r, "active")
	types := views.Search(all, q.Search, func(t models.AssetType) []string {
		return []string{t.Name, t.Description}
	})
	if active := q.Filters["active"]; active != "" {
		want := active == "true"
		types = views.Filter(types, func(t models.AssetType) bool { return t.IsActive == want })
	}
	types = views.SortByKey(types, func(t models.AssetType) string { return t.Name }, q.Dir)

	utils.RespondWithJSON(w, http.StatusOK, views.Paginate(types, q.Page))
}

type assetTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

func CreateAssetType(w http.ResponseWriter, r *http.Request) {
	var req assetTypeRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validators.AssetTypeInput(req.Name, req.Description); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	t := &models.AssetType{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := st.AssetTypes.Insert(r.Context(), t); err != nil {
		if err == store.ErrDuplicate {
			utils.RespondWithError(w, http.StatusConflict, "asset type name must be unique")
			return
		}
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, t)
}

func GetAssetType(w http.ResponseWriter, r *http.Request) {
	t, err := st.AssetTypes.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

func UpdateAssetType(w http.ResponseWriter, r *http.Request) {
	t, err := st.AssetTypes.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	var req assetTypeRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validators.AssetTypeInput(req.Name, req.Description); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	t.Name = req.Name
	t.Description = req.Description
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := st.AssetTypes.Update(r.Context(), t); err != nil {
		if err == store.ErrDuplicate {
			utils.RespondWithError(w, http.StatusConflict, "asset type name must be unique")
			return
		}
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

func DeleteAssetType(w http.ResponseWriter, r *http.Request) {
	t, err := st.AssetTypes.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	n, err := st.Assets.CountByType(r.Context(), t.ID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if n > 0 {
		utils.RespondWithError(w, http.StatusConflict, "asset type is referenced by existing assets")
		return
	}

	if err := st.AssetTypes.Delete(r.Context(), t.ID); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "asset type deleted"})
}
