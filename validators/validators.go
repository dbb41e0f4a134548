// validators/validators.go
//
// Form-level validation rules. Every function checks rules in order and
// returns the first violation as a models.ValidationError, never an
// aggregate. A nil return means the input may be submitted.
package validators

import (
	"regexp"
	"strings"
	"time"

	"assetmgt/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	// MaxImageSize caps asset photos at 5MB.
	MaxImageSize = 5 * 1024 * 1024

	MinPasswordLength = 6
)

// AssetInput validates the fields shared by asset create and edit forms.
func AssetInput(code, name, typeID string, purchaseDate time.Time, value float64) error {
	if code == "" {
		return models.NewValidationError("code", "asset code is required")
	}
	if !models.CodePattern.MatchString(code) {
		return models.NewValidationError("code", "asset code may only contain uppercase letters, digits and dashes")
	}
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("name", "asset name is required")
	}
	if typeID == "" {
		return models.NewValidationError("typeId", "asset type is required")
	}
	if purchaseDate.IsZero() {
		return models.NewValidationError("purchaseDate", "purchase date is required")
	}
	if value <= 0 {
		return models.NewValidationError("value", "asset value must be greater than 0")
	}
	return nil
}

// AssetImage validates an optional asset photo upload.
func AssetImage(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return models.NewValidationError("image", "file must be an image")
	}
	if size > MaxImageSize {
		return models.NewValidationError("image", "image must not exceed 5MB")
	}
	return nil
}

// EvaluationNotes enforces that any condition other than GOOD carries a
// non-empty note.
func EvaluationNotes(condition models.AssetCondition, notes string) error {
	if condition != models.ConditionGood && strings.TrimSpace(notes) == "" {
		return models.NewValidationError("notes", "notes are required when the condition is not GOOD")
	}
	return nil
}

// AssetTypeInput requires trimmed name and description.
func AssetTypeInput(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(description) == "" {
		return models.NewValidationError("description", "description is required")
	}
	return nil
}

// DepartmentInput requires a name.
func DepartmentInput(name string) error {
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("name", "department name is required")
	}
	return nil
}

// UserStep1 validates the first step of the user form: identity.
func UserStep1(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(email) == "" {
		return models.NewValidationError("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return models.NewValidationError("email", "email is not valid")
	}
	return nil
}

// UserStep2 validates the second step: role and department. Admins carry no
// department; the returned department id is cleared when the role is ADMIN,
// even if one was previously chosen.
func UserStep2(role models.UserRole, departmentID string) (string, error) {
	if role == "" {
		return "", models.NewValidationError("role", "role is required")
	}
	if !role.Valid() {
		return "", models.NewValidationError("role", "unknown role")
	}
	if role == models.RoleAdmin {
		return "", nil
	}
	if departmentID == "" {
		return "", models.NewValidationError("departmentId", "department is required")
	}
	return departmentID, nil
}

// RoleInput validates a custom role: a name and at least one permission.
func RoleInput(name string, permissions []string) error {
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("name", "role name is required")
	}
	if len(permissions) == 0 {
		return models.NewValidationError("permissions", "select at least one permission")
	}
	known := make(map[string]bool)
	for _, p := range models.PermissionCatalog() {
		known[p.ID] = true
	}
	for _, id := range permissions {
		if !known[id] {
			return models.NewValidationError("permissions", "unknown permission: "+id)
		}
	}
	return nil
}

// PasswordChange validates the change-password form.
func PasswordChange(current, newPassword, confirm string) error {
	if current == "" {
		return models.NewValidationError("currentPassword", "current password is required")
	}
	if newPassword == "" {
		return models.NewValidationError("newPassword", "new password is required")
	}
	if confirm == "" {
		return models.NewValidationError("confirmPassword", "password confirmation is required")
	}
	if newPassword != confirm {
		return models.NewValidationError("confirmPassword", "passwords do not match")
	}
	if len(newPassword) < MinPasswordLength {
		return models.NewValidationError("newPassword", "password must be at least 6 characters")
	}
	return nil
}
