package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/database"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
	"github.com/nyayamitra/nyaya-mitra/internal/utils"
)

const testSecret = "test-secret"

type authFixture struct {
	app      *echo.Echo
	users    *repository.UserRepo
	sessions *repository.SessionRepo
	userID   uint64
	token    string
}

// newAuthFixture builds an Echo app with one protected route plus a user
// holding a valid session.
func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	ctx := context.Background()

	uid, err := users.Create(ctx, "authuser", "auth@example.com", "password123", "Auth User", nil, model.RoleCitizen, 4)
	require.NoError(t, err)

	access, err := utils.NewAccessToken(testSecret, uid, model.RoleCitizen, time.Hour)
	require.NoError(t, err)
	_, err = sessions.Create(ctx, model.Session{
		UserID:       uid,
		SessionToken: access.Token,
		RefreshToken: "refresh-" + access.Token[:16],
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	app := echo.New()
	app.HTTPErrorHandler = apperror.HTTPErrorHandler("test")
	app.GET("/protected", func(c echo.Context) error {
		u := CurrentUser(c)
		return c.JSON(http.StatusOK, echo.Map{"userId": u.ID, "role": u.UserType})
	}, Auth(testSecret, sessions))
	app.GET("/optional", func(c echo.Context) error {
		anonymous := CurrentUser(c) == nil
		return c.JSON(http.StatusOK, echo.Map{"anonymous": anonymous})
	}, OptionalAuth(testSecret, sessions))

	return authFixture{app: app, users: users, sessions: sessions, userID: uid, token: access.Token}
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestAuth_NoToken(t *testing.T) {
	f := newAuthFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_TOKEN", errCode(t, rec))
}

func TestAuth_MalformedToken(t *testing.T) {
	f := newAuthFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "JWT_INVALID", errCode(t, rec))
}

func TestAuth_ValidJWTWithoutSession(t *testing.T) {
	f := newAuthFixture(t)
	// Signed correctly but never stored as a session. The lifetime differs
	// from the fixture token's so the two JWT strings cannot coincide.
	orphan, err := utils.NewAccessToken(testSecret, f.userID, model.RoleCitizen, 2*time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, f.token, orphan.Token)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+orphan.Token)
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errCode(t, rec))
}

func TestAuth_Success_HeaderCookieAndQuery(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct {
		name  string
		build func() *http.Request
	}{
		{"authorization header", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+f.token)
			return req
		}},
		{"token cookie", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.AddCookie(&http.Cookie{Name: "token", Value: f.token})
			return req
		}},
		{"token query param", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/protected?token="+f.token, nil)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.app.ServeHTTP(rec, tc.build())
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"role":"citizen"`)
		})
	}
}

func TestAuth_DeactivatedAccount(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.users.DB.Exec("UPDATE users SET is_active=0 WHERE id=?", f.userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", errCode(t, rec))
}

func TestOptionalAuth(t *testing.T) {
	f := newAuthFixture(t)

	// Anonymous request passes through.
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"anonymous":true`)

	// Credentials attach the identity when present.
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec = httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"anonymous":false`)
}

func TestRequireRole(t *testing.T) {
	f := newAuthFixture(t)
	f.app.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Auth(testSecret, f.sessions), AdminOnly())
	f.app.GET("/counsel", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Auth(testSecret, f.sessions), LawyerOrAdmin())

	// A citizen fails both gates.
	for _, path := range []string{"/admin", "/counsel"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+f.token)
		rec := httptest.NewRecorder()
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "INSUFFICIENT_PERMISSIONS", errCode(t, rec))
	}

	// Promoted to lawyer, the counsel gate opens but the admin one stays
	// shut. The role is read from the user row on each request.
	_, err := f.users.DB.Exec("UPDATE users SET user_type='lawyer' WHERE id=?", f.userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/counsel", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec = httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
