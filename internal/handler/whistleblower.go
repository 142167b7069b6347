package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

// WhistleblowerHandler serves protected disclosure submission and the
// public status lookup.
type WhistleblowerHandler struct {
	Reports *repository.WhistleblowerRepo
}

func NewWhistleblowerHandler(r *repository.WhistleblowerRepo) *WhistleblowerHandler {
	return &WhistleblowerHandler{Reports: r}
}

type createReportReq struct {
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Category             string  `json:"category"`
	Severity             string  `json:"severity"`
	OrganizationInvolved *string `json:"organizationInvolved"`
	EstimatedImpact      *string `json:"estimatedImpact"`
	IsAnonymous          bool    `json:"isAnonymous"`
}

// Create files a report. Anonymous submissions never record the reporter;
// the returned report ID is the only handle to follow up with.
func (h *WhistleblowerHandler) Create(c echo.Context) error {
	var req createReportReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)

	fields := map[string]string{}
	if req.Title == "" {
		fields["title"] = "Title is required"
	}
	if req.Description == "" {
		fields["description"] = "Description is required"
	}
	if req.Category == "" {
		fields["category"] = "Category is required"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}

	severity := strings.ToLower(req.Severity)
	switch severity {
	case "low", "medium", "high", "critical":
	default:
		severity = "medium"
	}

	report := model.WhistleblowerReport{
		ReportID:             newReportID(),
		Title:                req.Title,
		Description:          req.Description,
		Category:             req.Category,
		Severity:             severity,
		OrganizationInvolved: req.OrganizationInvolved,
		EstimatedImpact:      req.EstimatedImpact,
		IsAnonymous:          req.IsAnonymous,
	}
	if au := middleware.CurrentUser(c); au != nil && !req.IsAnonymous {
		report.ReporterID = &au.ID
	} else {
		report.IsAnonymous = true
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Reports.Create(ctx, report); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Report submitted successfully. Keep your report ID safe to track the status.",
		"reportId": report.ReportID,
		"report": echo.Map{
			"title":       report.Title,
			"category":    report.Category,
			"severity":    report.Severity,
			"status":      "submitted",
			"isAnonymous": report.IsAnonymous,
		},
	})
}

// Status is the public lookup by report ID. Only non-identifying fields are
// returned.
func (h *WhistleblowerHandler) Status(c echo.Context) error {
	reportID := strings.TrimSpace(c.Param("reportId"))
	if reportID == "" {
		return badRequest("Report ID is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	report, err := h.Reports.GetByReportID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "REPORT_NOT_FOUND", "Report not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"report": echo.Map{
			"reportId":  report.ReportID,
			"title":     report.Title,
			"status":    report.Status,
			"createdAt": report.CreatedAt.Format(time.RFC3339),
			"updatedAt": report.UpdatedAt.Format(time.RFC3339),
		},
	})
}

// newReportID builds the public tracking identifier, e.g. WB-1A2B3C4D.
func newReportID() string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "WB-" + frag
}
