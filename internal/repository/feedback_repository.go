package repository

import (
	"context"
	"database/sql"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// FeedbackRepo persists rows of the 'civic_feedback' table.
type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

// Create inserts a feedback row. UserID is nil for anonymous submissions.
func (r *FeedbackRepo) Create(ctx context.Context, f model.CivicFeedback) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO civic_feedback (user_id, category, subject, description, location, priority, is_anonymous)
		 VALUES (?,?,?,?,?,?,?)`,
		f.UserID, f.Category, f.Subject, f.Description, f.Location, f.Priority, f.IsAnonymous)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns the user's feedback newest-first plus the total.
func (r *FeedbackRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.CivicFeedback, int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, category, subject, description, location, priority, status, is_anonymous, created_at
		 FROM civic_feedback WHERE user_id=? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []model.CivicFeedback{}
	for rows.Next() {
		var (
			f        model.CivicFeedback
			uid      sql.NullInt64
			location sql.NullString
		)
		if err := rows.Scan(&f.ID, &uid, &f.Category, &f.Subject, &f.Description,
			&location, &f.Priority, &f.Status, &f.IsAnonymous, &f.CreatedAt); err != nil {
			return nil, 0, err
		}
		f.UserID = nullID(uid)
		f.Location = nullStr(location)
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM civic_feedback WHERE user_id=?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
