package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

type notificationResp struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	Category  string     `json:"category"`
	Priority  string     `json:"priority"`
	IsRead    bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func newNotificationResp(n model.Notification) notificationResp {
	return notificationResp{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Category:  n.Category,
		Priority:  n.Priority,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// List returns the caller's notifications, optionally only unread ones
// (?unread=true).
func (h *NotificationHandler) List(c echo.Context) error {
	au := middleware.CurrentUser(c)
	p := parsePagination(c)
	unreadOnly := c.QueryParam("unread") == "true"

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Notifications.ListByUser(ctx, au.ID, unreadOnly, p.Limit, p.Offset)
	if err != nil {
		return err
	}

	out := make([]notificationResp, 0, len(items))
	for _, n := range items {
		out = append(out, newNotificationResp(n))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": out,
		"pagination":    newPageMeta(p, total),
	})
}

// MarkRead flips one notification to read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	au := middleware.CurrentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, au.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// MarkAllRead flips every unread notification of the caller.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	au := middleware.CurrentUser(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, au.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "All notifications marked as read",
		"updated": n,
	})
}
