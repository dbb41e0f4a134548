package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmgt/config"
	"assetmgt/models"
	"assetmgt/store"
)

func TestRespondWithDomainError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", models.NewValidationError("code", "bad code"), http.StatusBadRequest},
		{"state", models.NewStateError("asset is in use"), http.StatusConflict},
		{"policy", models.NewPolicyError("no access"), http.StatusForbidden},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondWithDomainError(rr, tc.err)
			assert.Equal(t, tc.code, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondWithDomainError(rr, errors.New("dial tcp 10.0.0.5: connection refused"))
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}

func TestJWTRoundTrip(t *testing.T) {
	config.LoadConfig()

	token, err := GenerateJWT("u-1", "Alice", "ADMIN")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "ADMIN", claims.Role)

	_, err = ValidateJWT(token + "tampered")
	assert.Error(t, err)

	_, err = ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("s3cret-pass", "not-a-hash"))
}
