package handler

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

// CaseHandler serves the legal case endpoints.
type CaseHandler struct {
	Cases         *repository.CaseRepo
	Notifications *repository.NotificationRepo
}

func NewCaseHandler(cs *repository.CaseRepo, n *repository.NotificationRepo) *CaseHandler {
	return &CaseHandler{Cases: cs, Notifications: n}
}

type caseResp struct {
	ID              uint64     `json:"id"`
	CaseNumber      string     `json:"caseNumber"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CaseType        string     `json:"caseType"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	CourtName       *string    `json:"courtName,omitempty"`
	JudgeName       *string    `json:"judgeName,omitempty"`
	NextHearingDate *time.Time `json:"nextHearingDate,omitempty"`
	LawyerName      *string    `json:"assignedLawyer,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func newCaseResp(lc model.LegalCase) caseResp {
	return caseResp{
		ID:              lc.ID,
		CaseNumber:      lc.CaseNumber,
		Title:           lc.Title,
		Description:     lc.Description,
		CaseType:        lc.CaseType,
		Status:          lc.Status,
		Priority:        lc.Priority,
		CourtName:       lc.CourtName,
		JudgeName:       lc.JudgeName,
		NextHearingDate: lc.NextHearingDate,
		LawyerName:      lc.LawyerName,
		CreatedAt:       lc.CreatedAt,
		UpdatedAt:       lc.UpdatedAt,
	}
}

// List returns the caller's cases with optional status and caseType
// filters.
func (h *CaseHandler) List(c echo.Context) error {
	au := middleware.CurrentUser(c)
	p := parsePagination(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	cases, total, err := h.Cases.ListByUser(ctx, au.ID, c.QueryParam("status"), c.QueryParam("caseType"), p.Limit, p.Offset)
	if err != nil {
		return err
	}

	out := make([]caseResp, 0, len(cases))
	for _, lc := range cases {
		out = append(out, newCaseResp(lc))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cases":      out,
		"pagination": newPageMeta(p, total),
	})
}

type createCaseReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CaseType    string `json:"caseType"`
	Priority    string `json:"priority"`
}

// Create registers a new case under a generated case number.
func (h *CaseHandler) Create(c echo.Context) error {
	au := middleware.CurrentUser(c)

	var req createCaseReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.CaseType = strings.TrimSpace(req.CaseType)

	fields := map[string]string{}
	if req.Title == "" {
		fields["title"] = "Title is required"
	}
	if req.Description == "" {
		fields["description"] = "Description is required"
	}
	if req.CaseType == "" {
		fields["caseType"] = "Case type is required"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}
	priority := strings.ToLower(req.Priority)
	switch priority {
	case "low", "medium", "high", "urgent":
	default:
		priority = "medium"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Case numbers carry a random suffix; only a collision on the UNIQUE
	// constraint warrants a retry with a fresh one.
	var (
		id         uint64
		caseNumber string
		err        error
	)
	for attempt := 0; attempt < 3; attempt++ {
		caseNumber = newCaseNumber()
		id, err = h.Cases.Create(ctx, au.ID, caseNumber, req.Title, req.Description, req.CaseType, priority)
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return err
	}

	_ = h.Notifications.Create(ctx, au.ID,
		"New Case Created",
		fmt.Sprintf("Your case %s \"%s\" has been registered.", caseNumber, req.Title),
		"info", "cases", "normal")

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Case created successfully",
		"case": echo.Map{
			"id":         id,
			"caseNumber": caseNumber,
			"title":      req.Title,
			"caseType":   req.CaseType,
			"status":     "pending",
			"priority":   priority,
		},
	})
}

func newCaseNumber() string {
	return fmt.Sprintf("NYM-%d-%04d", time.Now().Year(), rand.Intn(10000))
}
