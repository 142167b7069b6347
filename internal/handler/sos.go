package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/queue"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
	queue_publisher "github.com/nyayamitra/nyaya-mitra/internal/service"
)

// emergencyNumbers is the national helpline directory returned by the
// public endpoint and echoed with every raised alert.
var emergencyNumbers = []echo.Map{
	{"name": "Police", "number": "100", "category": "police"},
	{"name": "Fire Brigade", "number": "101", "category": "fire"},
	{"name": "Ambulance", "number": "102", "category": "medical"},
	{"name": "Women Helpline", "number": "1091", "category": "women"},
	{"name": "Child Helpline", "number": "1098", "category": "child"},
	{"name": "Cyber Crime Helpline", "number": "1930", "category": "cyber"},
	{"name": "National Legal Aid Helpline", "number": "15100", "category": "legal"},
}

// SOSHandler serves the emergency alert endpoints.
type SOSHandler struct {
	Alerts        *repository.SOSRepo
	Notifications *repository.NotificationRepo
	publishAlert  func(context.Context, queue.SOSAlertEvent) error
}

// NewSOSHandler builds the handler. publish may be nil, in which case
// raised alerts are announced on the RabbitMQ event queue; tests inject a
// capture function instead.
func NewSOSHandler(a *repository.SOSRepo, n *repository.NotificationRepo, publish func(context.Context, queue.SOSAlertEvent) error) *SOSHandler {
	if publish == nil {
		publish = queue_publisher.PublishSOSAlert
	}
	return &SOSHandler{Alerts: a, Notifications: n, publishAlert: publish}
}

type sosLocation struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type createAlertReq struct {
	AlertType         string      `json:"alertType"`
	Description       string      `json:"description"`
	Location          sosLocation `json:"location"`
	Address           *string     `json:"address"`
	EmergencyContacts []string    `json:"emergencyContacts"`
	Severity          string      `json:"severity"`
	IsTestAlert       bool        `json:"isTestAlert"`
}

type sosResp struct {
	ID                uint64     `json:"id"`
	AlertType         string     `json:"alertType"`
	Description       string     `json:"description"`
	LocationLat       *float64   `json:"locationLat,omitempty"`
	LocationLng       *float64   `json:"locationLng,omitempty"`
	Address           *string    `json:"address,omitempty"`
	EmergencyContacts any        `json:"emergencyContacts,omitempty"`
	Severity          string     `json:"severity"`
	Status            string     `json:"status"`
	IsTestAlert       bool       `json:"isTestAlert"`
	ResponseNotes     *string    `json:"responseNotes,omitempty"`
	ResponseTime      *time.Time `json:"responseTime,omitempty"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
	ResponderName     *string    `json:"responderName,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func newSOSResp(a model.SOSAlert) sosResp {
	return sosResp{
		ID:                a.ID,
		AlertType:         a.AlertType,
		Description:       a.Description,
		LocationLat:       a.LocationLat,
		LocationLng:       a.LocationLng,
		Address:           a.Address,
		EmergencyContacts: parseJSONField(a.EmergencyContacts),
		Severity:          a.Severity,
		Status:            a.Status,
		IsTestAlert:       a.IsTestAlert,
		ResponseNotes:     a.ResponseNotes,
		ResponseTime:      a.ResponseTime,
		ResolvedAt:        a.ResolvedAt,
		ResponderName:     a.ResponderName,
		CreatedAt:         a.CreatedAt,
	}
}

// CreateAlert raises a new emergency alert. The alert is stored first; the
// notification and broker event follow and never block the response.
func (h *SOSHandler) CreateAlert(c echo.Context) error {
	au := middleware.CurrentUser(c)

	var req createAlertReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	req.AlertType = strings.TrimSpace(req.AlertType)
	req.Description = strings.TrimSpace(req.Description)

	fields := map[string]string{}
	switch req.AlertType {
	case "police", "medical", "legal", "fire", "general":
	case "":
		fields["alertType"] = "Alert type is required"
	default:
		fields["alertType"] = "Alert type must be one of police, medical, legal, fire, general"
	}
	if req.Description == "" {
		fields["description"] = "Description is required"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}

	severity := strings.ToLower(req.Severity)
	switch severity {
	case "low", "medium", "high", "critical":
	default:
		severity = "high"
	}

	alert := model.SOSAlert{
		UserID:      au.ID,
		AlertType:   req.AlertType,
		Description: req.Description,
		LocationLat: req.Location.Lat,
		LocationLng: req.Location.Lng,
		Address:     req.Address,
		Severity:    severity,
		IsTestAlert: req.IsTestAlert,
	}
	if len(req.EmergencyContacts) > 0 {
		raw, err := json.Marshal(req.EmergencyContacts)
		if err != nil {
			return badRequest("Invalid emergencyContacts")
		}
		alert.EmergencyContacts = strPtr(string(raw))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Alerts.Create(ctx, alert)
	if err != nil {
		return err
	}

	_ = h.Notifications.Create(ctx, au.ID,
		"SOS Alert Activated",
		fmt.Sprintf("Your %s alert has been raised. Responders have been notified.", req.AlertType),
		"warning", "sos", "high")

	ev := queue.SOSAlertEvent{
		AlertID:   id,
		UserID:    au.ID,
		AlertType: req.AlertType,
		Severity:  severity,
		Latitude:  req.Location.Lat,
		Longitude: req.Location.Lng,
		Address:   req.Address,
		RaisedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	// Broker dial must not delay the emergency response.
	go func() { _ = h.publishAlert(context.Background(), ev) }()

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "SOS alert created successfully",
		"alert": echo.Map{
			"id":          id,
			"alertType":   req.AlertType,
			"severity":    severity,
			"status":      model.SOSActive,
			"isTestAlert": req.IsTestAlert,
		},
		"emergencyNumbers": emergencyNumbers,
	})
}

// ListAlerts returns the caller's alerts with optional status and type
// filters.
func (h *SOSHandler) ListAlerts(c echo.Context) error {
	au := middleware.CurrentUser(c)
	p := parsePagination(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	alerts, total, err := h.Alerts.ListByUser(ctx, au.ID, c.QueryParam("status"), c.QueryParam("alertType"), p.Limit, p.Offset)
	if err != nil {
		return err
	}

	out := make([]sosResp, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, newSOSResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"alerts":     out,
		"pagination": newPageMeta(p, total),
	})
}

type updateAlertReq struct {
	Status        *string `json:"status"`
	ResponseNotes *string `json:"responseNotes"`
}

// UpdateAlert changes the status or response notes of an alert. Owners
// manage their own alerts; admins can manage any.
func (h *SOSHandler) UpdateAlert(c echo.Context) error {
	au := middleware.CurrentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateAlertReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.Status == nil && req.ResponseNotes == nil {
		return apperror.New(http.StatusBadRequest, "NO_UPDATE_FIELDS", "No fields to update")
	}
	if req.Status != nil {
		switch *req.Status {
		case model.SOSActive, model.SOSResponded, model.SOSResolved, model.SOSCancelled:
		default:
			return validationError(map[string]string{"status": "Invalid status value"})
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	prev, err := h.fetchAlert(ctx, id, au)
	if err != nil {
		return err
	}

	up := repository.SOSUpdate{Status: req.Status, ResponseNotes: req.ResponseNotes}
	if err := h.Alerts.Update(ctx, id, up, prev); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "ALERT_NOT_FOUND", "SOS alert not found")
		}
		return err
	}

	if req.Status != nil && *req.Status != prev.Status {
		_ = h.Notifications.Create(ctx, prev.UserID,
			"SOS Alert Updated",
			fmt.Sprintf("Your %s alert is now %s.", prev.AlertType, *req.Status),
			"info", "sos", "normal")
	}

	updated, err := h.Alerts.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "SOS alert updated successfully",
		"alert":   newSOSResp(updated),
	})
}

// DeleteAlert removes a finished alert. Active or responded alerts cannot
// be deleted so the incident trail survives until resolution.
func (h *SOSHandler) DeleteAlert(c echo.Context) error {
	au := middleware.CurrentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	alert, err := h.fetchAlert(ctx, id, au)
	if err != nil {
		return err
	}
	if alert.Status != model.SOSResolved && alert.Status != model.SOSCancelled {
		return apperror.New(http.StatusBadRequest, "CANNOT_DELETE_ACTIVE_ALERT",
			"Only resolved or cancelled alerts can be deleted")
	}
	if err := h.Alerts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "ALERT_NOT_FOUND", "SOS alert not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "SOS alert deleted successfully"})
}

// EmergencyContacts returns the public helpline directory.
func (h *SOSHandler) EmergencyContacts(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"contacts": emergencyNumbers})
}

// Stats summarizes the caller's alerts.
func (h *SOSHandler) Stats(c echo.Context) error {
	au := middleware.CurrentUser(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Alerts.Stats(ctx, au.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

func (h *SOSHandler) fetchAlert(ctx context.Context, id uint64, au *model.AuthUser) (model.SOSAlert, error) {
	var (
		alert model.SOSAlert
		err   error
	)
	if au.UserType == model.RoleAdmin {
		alert, err = h.Alerts.Get(ctx, id)
	} else {
		alert, err = h.Alerts.GetForUser(ctx, id, au.ID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return model.SOSAlert{}, apperror.New(http.StatusNotFound, "ALERT_NOT_FOUND", "SOS alert not found")
	}
	return alert, err
}
