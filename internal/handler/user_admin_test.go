package handler_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutes_ForbiddenForCitizens(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "plain", "plain@example.com")

	rec := f.doJSON(t, http.MethodGet, "/api/users/all", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", responseCode(t, rec))

	rec = f.doJSON(t, http.MethodPut, "/api/users/99/status", token, echo.Map{"isActive": false})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.doJSON(t, http.MethodDelete, "/api/users/99", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminUserManagement(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.register(t, "boss", "boss@example.com")
	f.promoteToAdmin(t, "boss@example.com")
	citizen := f.register(t, "member", "member@example.com")
	citizenID := f.userID(t, "member@example.com")

	// Listing shows both accounts.
	rec := f.doJSON(t, http.MethodGet, "/api/users/all", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "boss@example.com")
	assert.Contains(t, rec.Body.String(), "member@example.com")

	// Search narrows the listing.
	rec = f.doJSON(t, http.MethodGet, "/api/users/all?search=member", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boss@example.com")
	assert.Contains(t, rec.Body.String(), "member@example.com")

	// Deactivation also sweeps the citizen's sessions.
	rec = f.doJSON(t, http.MethodPut, "/api/users/"+jsonNumber(citizenID)+"/status", admin, echo.Map{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.doJSON(t, http.MethodGet, "/api/auth/me", citizen, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", responseCode(t, rec))

	// Reactivation with verification; the old session stays dead.
	rec = f.doJSON(t, http.MethodPut, "/api/users/"+jsonNumber(citizenID)+"/status", admin, echo.Map{
		"isActive":   true,
		"isVerified": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.doJSON(t, http.MethodGet, "/api/auth/me", citizen, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// isActive is mandatory.
	rec = f.doJSON(t, http.MethodPut, "/api/users/"+jsonNumber(citizenID)+"/status", admin, echo.Map{"isVerified": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", responseCode(t, rec))
}

func TestAdminUserManagement_SelfGuards(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.register(t, "selfadmin", "selfadmin@example.com")
	f.promoteToAdmin(t, "selfadmin@example.com")
	adminID := f.userID(t, "selfadmin@example.com")

	rec := f.doJSON(t, http.MethodPut, "/api/users/"+jsonNumber(adminID)+"/status", admin, echo.Map{"isActive": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CANNOT_MODIFY_SELF", responseCode(t, rec))

	rec = f.doJSON(t, http.MethodDelete, "/api/users/"+jsonNumber(adminID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CANNOT_DELETE_SELF", responseCode(t, rec))
}

func TestAdminDeleteUser_Cascades(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.register(t, "sweeper", "sweeper@example.com")
	f.promoteToAdmin(t, "sweeper@example.com")
	leaver := f.register(t, "leaving", "leaving@example.com")
	leaverID := f.userID(t, "leaving@example.com")
	createAlert(t, f, leaver)

	rec := f.doJSON(t, http.MethodDelete, "/api/users/"+jsonNumber(leaverID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Sessions went with the user row, so the token is dead.
	rec = f.doJSON(t, http.MethodGet, "/api/auth/me", leaver, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.doJSON(t, http.MethodDelete, "/api/users/"+jsonNumber(leaverID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", responseCode(t, rec))
}
