package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

// ConsultationHandler serves consultation booking and listing.
type ConsultationHandler struct {
	Consultations *repository.ConsultationRepo
	Notifications *repository.NotificationRepo
}

func NewConsultationHandler(cr *repository.ConsultationRepo, n *repository.NotificationRepo) *ConsultationHandler {
	return &ConsultationHandler{Consultations: cr, Notifications: n}
}

type consultationResp struct {
	ID               uint64    `json:"id"`
	ConsultationType string    `json:"consultationType"`
	ScheduledAt      time.Time `json:"scheduledAt"`
	DurationMinutes  int       `json:"durationMinutes"`
	Status           string    `json:"status"`
	Notes            *string   `json:"notes,omitempty"`
	LawyerName       *string   `json:"lawyerName,omitempty"`
	ClientName       *string   `json:"clientName,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newConsultationResp(con model.Consultation) consultationResp {
	return consultationResp{
		ID:               con.ID,
		ConsultationType: con.ConsultationType,
		ScheduledAt:      con.ScheduledAt,
		DurationMinutes:  con.DurationMinutes,
		Status:           con.Status,
		Notes:            con.Notes,
		LawyerName:       con.LawyerName,
		ClientName:       con.ClientName,
		CreatedAt:        con.CreatedAt,
	}
}

// List returns the consultations the caller participates in, as client or
// lawyer.
func (h *ConsultationHandler) List(c echo.Context) error {
	au := middleware.CurrentUser(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Consultations.ListForUser(ctx, au.ID)
	if err != nil {
		return err
	}

	out := make([]consultationResp, 0, len(items))
	for _, con := range items {
		out = append(out, newConsultationResp(con))
	}
	return c.JSON(http.StatusOK, echo.Map{"consultations": out})
}

type bookConsultationReq struct {
	ConsultationType string  `json:"consultationType"`
	ScheduledAt      string  `json:"scheduledAt"` // RFC 3339
	DurationMinutes  int     `json:"durationMinutes"`
	Notes            *string `json:"notes"`
}

// Book schedules a consultation request. A lawyer is assigned later.
func (h *ConsultationHandler) Book(c echo.Context) error {
	au := middleware.CurrentUser(c)

	var req bookConsultationReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	req.ConsultationType = strings.TrimSpace(req.ConsultationType)

	fields := map[string]string{}
	switch req.ConsultationType {
	case "chat", "video", "phone", "in_person":
	case "":
		fields["consultationType"] = "Consultation type is required"
	default:
		fields["consultationType"] = "Consultation type must be one of chat, video, phone, in_person"
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		fields["scheduledAt"] = "A valid RFC 3339 timestamp is required"
	} else if scheduledAt.Before(time.Now()) {
		fields["scheduledAt"] = "Scheduled time must be in the future"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 30
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Consultations.Book(ctx, au.ID, req.ConsultationType, scheduledAt, req.DurationMinutes, req.Notes)
	if err != nil {
		return err
	}

	_ = h.Notifications.Create(ctx, au.ID,
		"Consultation Booked",
		"Your consultation request has been received. A lawyer will be assigned shortly.",
		"info", "consultations", "normal")

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Consultation booked successfully",
		"consultation": echo.Map{
			"id":               id,
			"consultationType": req.ConsultationType,
			"scheduledAt":      scheduledAt.UTC().Format(time.RFC3339),
			"durationMinutes":  req.DurationMinutes,
			"status":           "requested",
		},
	})
}
