package repository

import (
	"context"
	"database/sql"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// NotificationRepo persists rows of the 'notifications' table. Create is
// the Notification Emitter of the system: a single fire-and-forget insert
// with no retry; callers do not check the error before responding.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create appends a notification for the user.
func (r *NotificationRepo) Create(ctx context.Context, userID uint64, title, message, typ, category, priority string) error {
	if priority == "" {
		priority = "normal"
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, title, message, type, category, priority) VALUES (?,?,?,?,?,?)",
		userID, title, message, typ, category, priority)
	return err
}

// ListByUser returns the user's notifications newest-first, optionally
// restricted to unread ones, plus the unpaginated total.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, unreadOnly bool, limit, offset int) ([]model.Notification, int, error) {
	cond := "user_id=?"
	if unreadOnly {
		cond += " AND is_read=0"
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, title, message, type, category, priority, is_read, read_at, created_at
		 FROM notifications WHERE `+cond+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []model.Notification{}
	for rows.Next() {
		var (
			n      model.Notification
			readAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Category,
			&n.Priority, &n.IsRead, &readAt, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		n.ReadAt = nullTime(readAt)
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE "+cond, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkRead flips the read flag of one notification owned by userID.
// Returns ErrNotFound when no row matched.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1, read_at=CURRENT_TIMESTAMP WHERE id=? AND user_id=?",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification of the user and returns how
// many rows changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1, read_at=CURRENT_TIMESTAMP WHERE user_id=? AND is_read=0",
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
