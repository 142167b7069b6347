package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

// FeedbackHandler serves civic feedback submission and retrieval.
type FeedbackHandler struct {
	Feedback *repository.FeedbackRepo
}

func NewFeedbackHandler(f *repository.FeedbackRepo) *FeedbackHandler {
	return &FeedbackHandler{Feedback: f}
}

type createFeedbackReq struct {
	Category    string  `json:"category"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Location    *string `json:"location"`
	Priority    string  `json:"priority"`
	IsAnonymous bool    `json:"isAnonymous"`
}

// Create accepts civic feedback from authenticated or anonymous callers.
// Anonymous submissions (no session, or isAnonymous set) are stored without
// a user reference.
func (h *FeedbackHandler) Create(c echo.Context) error {
	var req createFeedbackReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	req.Category = strings.TrimSpace(req.Category)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Description = strings.TrimSpace(req.Description)

	fields := map[string]string{}
	if req.Category == "" {
		fields["category"] = "Category is required"
	}
	if req.Subject == "" {
		fields["subject"] = "Subject is required"
	}
	if req.Description == "" {
		fields["description"] = "Description is required"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}

	priority := strings.ToLower(req.Priority)
	switch priority {
	case "low", "medium", "high":
	default:
		priority = "medium"
	}

	fb := model.CivicFeedback{
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
		Location:    req.Location,
		Priority:    priority,
		IsAnonymous: req.IsAnonymous,
	}
	if au := middleware.CurrentUser(c); au != nil && !req.IsAnonymous {
		fb.UserID = &au.ID
	} else {
		fb.IsAnonymous = true
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Feedback.Create(ctx, fb)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Feedback submitted successfully",
		"trackingId": fmt.Sprintf("CF-%06d", id),
		"feedback": echo.Map{
			"id":       id,
			"category": fb.Category,
			"subject":  fb.Subject,
			"priority": fb.Priority,
			"status":   "submitted",
		},
	})
}

type feedbackResp struct {
	ID          uint64    `json:"id"`
	TrackingID  string    `json:"trackingId"`
	Category    string    `json:"category"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Location    *string   `json:"location,omitempty"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListMine returns the caller's feedback history.
func (h *FeedbackHandler) ListMine(c echo.Context) error {
	au := middleware.CurrentUser(c)
	p := parsePagination(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Feedback.ListByUser(ctx, au.ID, p.Limit, p.Offset)
	if err != nil {
		return err
	}

	out := make([]feedbackResp, 0, len(items))
	for _, f := range items {
		out = append(out, feedbackResp{
			ID:          f.ID,
			TrackingID:  fmt.Sprintf("CF-%06d", f.ID),
			Category:    f.Category,
			Subject:     f.Subject,
			Description: f.Description,
			Location:    f.Location,
			Priority:    f.Priority,
			Status:      f.Status,
			CreatedAt:   f.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"feedback":   out,
		"pagination": newPageMeta(p, total),
	})
}
