package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/nyayamitra/nyaya-mitra/internal/analysis"
	"github.com/nyayamitra/nyaya-mitra/internal/config"
	"github.com/nyayamitra/nyaya-mitra/internal/database"
	"github.com/nyayamitra/nyaya-mitra/internal/handler"
	"github.com/nyayamitra/nyaya-mitra/internal/queue"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
	"github.com/nyayamitra/nyaya-mitra/internal/router"
)

// apiFixture spins up the full route tree against an in-memory database.
// Redis is absent so rate limiting and caching are pass-throughs, and the
// broker publisher is stubbed out. The analyzer pool is not started: jobs
// stay queued and uploaded documents remain in processing, which keeps the
// handler tests deterministic.
type apiFixture struct {
	app *echo.Echo
	cfg config.Config

	// publishAlert receives the SOS broker events; tests reassign it to
	// capture what would have gone to RabbitMQ.
	publishAlert func(context.Context, queue.SOSAlertEvent) error

	repo struct {
		users         *repository.UserRepo
		sessions      *repository.SessionRepo
		docs          *repository.DocumentRepo
		notifications *repository.NotificationRepo
	}
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := config.Config{
		Env:              "test",
		Port:             "0",
		DBPath:           ":memory:",
		JWTSecret:        "handler-test-secret",
		JWTRefreshSecret: "handler-test-refresh-secret",
		AccessTTLMin:     15,
		RefreshTTLDays:   7,
		BcryptCost:       4,
		ClientOrigin:     "http://localhost:3000",
		UploadDir:        t.TempDir(),
		AnalysisWorkers:  0,
		AnalysisDelay:    time.Millisecond,
	}

	f := &apiFixture{cfg: cfg}
	f.publishAlert = func(context.Context, queue.SOSAlertEvent) error { return nil }
	f.repo.users = repository.NewUserRepo(db)
	f.repo.sessions = repository.NewSessionRepo(db)
	f.repo.docs = repository.NewDocumentRepo(db)
	f.repo.notifications = repository.NewNotificationRepo(db)
	cases := repository.NewCaseRepo(db)
	alerts := repository.NewSOSRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	reports := repository.NewWhistleblowerRepo(db)
	consultations := repository.NewConsultationRepo(db)

	analyzer := analysis.NewAnalyzer(f.repo.docs, f.repo.notifications, cfg.AnalysisDelay)

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, f.repo.users, f.repo.sessions, f.repo.notifications),
		Users:     handler.NewUserHandler(f.repo.users, f.repo.sessions),
		Documents: handler.NewDocumentHandler(cfg, f.repo.docs, cases, analyzer),
		Cases:     handler.NewCaseHandler(cases, f.repo.notifications),
		SOS: handler.NewSOSHandler(alerts, f.repo.notifications,
			func(ctx context.Context, ev queue.SOSAlertEvent) error { return f.publishAlert(ctx, ev) }),
		Feedback:      handler.NewFeedbackHandler(feedback),
		Whistleblower: handler.NewWhistleblowerHandler(reports),
		Consultations: handler.NewConsultationHandler(consultations, f.repo.notifications),
		Notifications: handler.NewNotificationHandler(f.repo.notifications),
	}
	f.app = router.New(cfg, f.repo.sessions, nil, h)
	return f
}

// doJSON performs a request with an optional JSON body and bearer token.
func (f *apiFixture) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its access token.
func (f *apiFixture) register(t *testing.T, username, email string) string {
	t.Helper()
	rec := f.doJSON(t, http.MethodPost, "/api/auth/register", "", echo.Map{
		"username": username,
		"email":    email,
		"password": "password123",
		"fullName": "Test " + username,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return jsonField(t, rec, "token").(string)
}

// userID looks up the account created by register.
func (f *apiFixture) userID(t *testing.T, email string) uint64 {
	t.Helper()
	u, err := f.repo.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.ID
}

// promoteToAdmin flips an account's role directly in the database; the
// authenticator reads the role from the user row, not the token.
func (f *apiFixture) promoteToAdmin(t *testing.T, email string) {
	t.Helper()
	_, err := f.repo.users.DB.Exec("UPDATE users SET user_type='admin' WHERE email=?", email)
	require.NoError(t, err)
}

// jsonField digs one top-level field out of a response body.
func jsonField(t *testing.T, rec *httptest.ResponseRecorder, key string) any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	v, ok := body[key]
	require.True(t, ok, "missing %q in %s", key, rec.Body.String())
	return v
}

func jsonNumber(n uint64) string { return strconv.FormatUint(n, 10) }

func responseCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}
