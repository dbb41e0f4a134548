package validators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmgt/models"
)

func field(t *testing.T, err error) string {
	t.Helper()
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Field
}

func TestAssetInput(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, AssetInput("LT-001", "Laptop", "type-1", date, 1500))
	assert.NoError(t, AssetInput("MONITOR-27", "Monitor", "type-1", date, 200))

	assert.Equal(t, "code", field(t, AssetInput("", "Laptop", "type-1", date, 1500)))
	assert.Equal(t, "code", field(t, AssetInput("lt-001", "Laptop", "type-1", date, 1500)))
	assert.Equal(t, "code", field(t, AssetInput("LT 001", "Laptop", "type-1", date, 1500)))
	assert.Equal(t, "code", field(t, AssetInput("LT_001", "Laptop", "type-1", date, 1500)))
	assert.Equal(t, "name", field(t, AssetInput("LT-001", "   ", "type-1", date, 1500)))
	assert.Equal(t, "typeId", field(t, AssetInput("LT-001", "Laptop", "", date, 1500)))
	assert.Equal(t, "purchaseDate", field(t, AssetInput("LT-001", "Laptop", "type-1", time.Time{}, 1500)))
	assert.Equal(t, "value", field(t, AssetInput("LT-001", "Laptop", "type-1", date, 0)))
	assert.Equal(t, "value", field(t, AssetInput("LT-001", "Laptop", "type-1", date, -10)))
}

func TestAssetInputStopsAtFirstViolation(t *testing.T) {
	// Everything is wrong; only the code violation is reported.
	err := AssetInput("bad code", "", "", time.Time{}, -1)
	assert.Equal(t, "code", field(t, err))
}

func TestAssetImage(t *testing.T) {
	assert.NoError(t, AssetImage("image/png", 1024))
	assert.NoError(t, AssetImage("image/jpeg", MaxImageSize))
	assert.Equal(t, "image", field(t, AssetImage("application/pdf", 1024)))
	assert.Equal(t, "image", field(t, AssetImage("image/png", MaxImageSize+1)))
}

func TestEvaluationNotes(t *testing.T) {
	assert.NoError(t, EvaluationNotes(models.ConditionGood, ""))
	assert.NoError(t, EvaluationNotes(models.ConditionNeedsRepair, "battery swollen"))
	assert.Equal(t, "notes", field(t, EvaluationNotes(models.ConditionNeedsRepair, "")))
	assert.Equal(t, "notes", field(t, EvaluationNotes(models.ConditionObsolete, "  \t ")))
}

func TestUserStep1(t *testing.T) {
	assert.NoError(t, UserStep1("Alice", "alice@example.com"))
	assert.Equal(t, "name", field(t, UserStep1("  ", "alice@example.com")))
	assert.Equal(t, "email", field(t, UserStep1("Alice", "")))
	assert.Equal(t, "email", field(t, UserStep1("Alice", "not-an-email")))
	assert.Equal(t, "email", field(t, UserStep1("Alice", "a b@example.com")))
	assert.Equal(t, "email", field(t, UserStep1("Alice", "alice@example")))
}

func TestUserStep2(t *testing.T) {
	dept, err := UserStep2(models.RoleStaff, "dept-1")
	require.NoError(t, err)
	assert.Equal(t, "dept-1", dept)

	// Admin never carries a department, even when one was chosen.
	dept, err = UserStep2(models.RoleAdmin, "dept-1")
	require.NoError(t, err)
	assert.Empty(t, dept)

	_, err = UserStep2("", "dept-1")
	assert.Equal(t, "role", field(t, err))

	_, err = UserStep2("SUPERVISOR", "dept-1")
	assert.Equal(t, "role", field(t, err))

	_, err = UserStep2(models.RoleManager, "")
	assert.Equal(t, "departmentId", field(t, err))
}

func TestRoleInput(t *testing.T) {
	assert.NoError(t, RoleInput("Auditor", []string{"p5", "p14"}))
	assert.Equal(t, "name", field(t, RoleInput("  ", []string{"p5"})))
	assert.Equal(t, "permissions", field(t, RoleInput("Auditor", nil)))
	assert.Equal(t, "permissions", field(t, RoleInput("Auditor", []string{"p5", "p99"})))
}

func TestPasswordChange(t *testing.T) {
	assert.NoError(t, PasswordChange("oldpass", "newpass1", "newpass1"))
	assert.Equal(t, "currentPassword", field(t, PasswordChange("", "newpass1", "newpass1")))
	assert.Equal(t, "newPassword", field(t, PasswordChange("oldpass", "", "newpass1")))
	assert.Equal(t, "confirmPassword", field(t, PasswordChange("oldpass", "newpass1", "")))
	assert.Equal(t, "confirmPassword", field(t, PasswordChange("oldpass", "newpass1", "other")))
	assert.Equal(t, "newPassword", field(t, PasswordChange("oldpass", "abc", "abc")))
}

func TestAssetTypeAndDepartmentInput(t *testing.T) {
	assert.NoError(t, AssetTypeInput("Laptop", "Portable computers"))
	assert.Equal(t, "name", field(t, AssetTypeInput("", "desc")))
	assert.Equal(t, "description", field(t, AssetTypeInput("Laptop", " ")))

	assert.NoError(t, DepartmentInput("Engineering"))
	assert.Equal(t, "name", field(t, DepartmentInput("  ")))
}
