// utils/utils.go
package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"assetmgt/models"
	"assetmgt/store"
)

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithDomainError maps the error taxonomy onto HTTP statuses:
// validation 400, state conflict 409, policy 403, missing resource 404.
// Anything else is reported as a 500 without leaking internals.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	var stateErr *models.StateError
	var policyErr *models.PolicyError
	switch {
	case errors.As(err, &validationErr):
		RespondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &stateErr):
		RespondWithError(w, http.StatusConflict, stateErr.Error())
	case errors.As(err, &policyErr):
		RespondWithError(w, http.StatusForbidden, policyErr.Error())
	case errors.Is(err, store.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, store.ErrDuplicate):
		RespondWithError(w, http.StatusConflict, "resource already exists")
	default:
		RespondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
