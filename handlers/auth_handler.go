// handlers/auth_handler.go
package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"assetmgt/middleware"
	"assetmgt/utils"
	"assetmgt/validators"
)

// Login handles user authentication
func Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.ParseJSON(r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || !strings.Contains(creds.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "Valid email required")
		return
	}
	if len(creds.Password) < validators.MinPasswordLength {
		utils.RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	user, err := st.Users.FindByEmail(r.Context(), creds.Email)
	if err != nil {
		// Burn a hash comparison so missing accounts take as long as wrong
		// passwords.
		_ = utils.CheckPasswordHash("dummy_password", "$2a$10$dummyhashfordummycomparison")
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.IsActive {
		utils.RespondWithError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Name, string(user.Role))
	if err != nil {
		logger.Error("JWT generation failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	logger.Info("login", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Logout is stateless on the server; the client discards its token.
func Logout(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ValidateToken confirms the Authorization header carries a live token.
func ValidateToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}
	claims, err := utils.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"userId": claims.UserID,
		"name":   claims.Name,
		"role":   claims.Role,
	})
}

// GetCurrentUser returns the authenticated user's own record.
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// ChangePassword lets any authenticated user rotate their own password.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if err := validators.PasswordChange(req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, actor.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}
	actor.PasswordHash = hash
	if err := st.Users.Update(r.Context(), &actor); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	logger.Info("password changed", zap.String("userId", actor.ID))
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
