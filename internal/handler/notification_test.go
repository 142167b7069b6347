package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationReadFlow(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "reader", "reader@example.com")

	// Registration already produced the welcome notification.
	rec := f.doJSON(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Notifications []struct {
			ID     uint64 `json:"id"`
			Title  string `json:"title"`
			IsRead bool   `json:"isRead"`
		} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "Welcome to Nyaya Mitra", list.Notifications[0].Title)
	assert.False(t, list.Notifications[0].IsRead)

	rec = f.doJSON(t, http.MethodPut, "/api/notifications/"+jsonNumber(list.Notifications[0].ID)+"/read", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.doJSON(t, http.MethodGet, "/api/notifications?unread=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"notifications":[]`)
}

func TestNotificationMarkAllRead(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "bulk", "bulk@example.com")

	u, err := f.repo.users.GetByEmail(context.Background(), "bulk@example.com")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.repo.notifications.Create(context.Background(), u.ID,
			"Hearing Reminder", "Your hearing is coming up.", "info", "cases", "normal"))
	}

	rec := f.doJSON(t, http.MethodPost, "/api/notifications/mark-all-read", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// Welcome notification plus the three reminders.
	assert.Contains(t, rec.Body.String(), `"updated":4`)
}

func TestNotificationMarkRead_NotOwn(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "owner2", "owner2@example.com")
	intruder := f.register(t, "intruder", "intruder@example.com")

	rec := f.doJSON(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Notifications []struct {
			ID uint64 `json:"id"`
		} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotEmpty(t, list.Notifications)

	rec = f.doJSON(t, http.MethodPut, "/api/notifications/"+jsonNumber(list.Notifications[0].ID)+"/read", intruder, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOTIFICATION_NOT_FOUND", responseCode(t, rec))
}

func TestConsultationBookingFlow(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "client", "client@example.com")

	scheduled := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	rec := f.doJSON(t, http.MethodPost, "/api/consultations/book", token, echo.Map{
		"consultationType": "video",
		"scheduledAt":      scheduled,
		"durationMinutes":  45,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"requested"`)

	rec = f.doJSON(t, http.MethodGet, "/api/consultations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"consultationType":"video"`)
	assert.Contains(t, rec.Body.String(), `"durationMinutes":45`)
}

func TestConsultationBooking_PastDateRejected(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "late", "late@example.com")

	rec := f.doJSON(t, http.MethodPost, "/api/consultations/book", token, echo.Map{
		"consultationType": "chat",
		"scheduledAt":      time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", responseCode(t, rec))
}

func TestUnknownAPIRoute(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.doJSON(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", responseCode(t, rec))
}
