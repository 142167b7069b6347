package handler_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedback_AnonymousSubmission(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.doJSON(t, http.MethodPost, "/api/feedback", "", echo.Map{
		"category":    "infrastructure",
		"subject":     "Broken street light",
		"description": "The light at sector 12 has been out for a month.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tracking := jsonField(t, rec, "trackingId").(string)
	assert.Regexp(t, `^CF-\d{6}$`, tracking)
}

func TestFeedback_AuthenticatedList(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "civic", "civic@example.com")

	rec := f.doJSON(t, http.MethodPost, "/api/feedback", token, echo.Map{
		"category":    "sanitation",
		"subject":     "Garbage pileup",
		"description": "Waste has not been collected this week.",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.doJSON(t, http.MethodGet, "/api/feedback", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Garbage pileup")
	assert.Contains(t, rec.Body.String(), `"priority":"high"`)
}

func TestFeedback_Validation(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.doJSON(t, http.MethodPost, "/api/feedback", "", echo.Map{"category": "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", responseCode(t, rec))
}

func TestWhistleblowerReportAndStatus(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.doJSON(t, http.MethodPost, "/api/whistleblower/report", "", echo.Map{
		"title":       "Procurement irregularities",
		"description": "Contracts awarded without tender.",
		"category":    "corruption",
		"severity":    "high",
		"isAnonymous": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reportID := jsonField(t, rec, "reportId").(string)
	assert.Regexp(t, `^WB-[0-9A-F]{8}$`, reportID)

	// Status lookup needs no authentication.
	rec = f.doJSON(t, http.MethodGet, "/api/whistleblower/status/"+reportID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), reportID)
	assert.Contains(t, rec.Body.String(), `"status":"submitted"`)
}

func TestWhistleblowerStatus_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.doJSON(t, http.MethodGet, "/api/whistleblower/status/WB-DEADBEEF", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "REPORT_NOT_FOUND", responseCode(t, rec))
}
