package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// SOSRepo persists rows of the 'sos_alerts' table.
type SOSRepo struct{ DB *sql.DB }

func NewSOSRepo(db *sql.DB) *SOSRepo { return &SOSRepo{DB: db} }

// SOSUpdate carries the caller-mutable alert fields. Nil means unchanged.
type SOSUpdate struct {
	Status        *string
	ResponseNotes *string
}

// SOSStats summarizes a user's alerts for the dashboard.
type SOSStats struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Resolved int            `json:"resolved"`
	ByType   map[string]int `json:"byType"`
}

// Create inserts an alert and returns its ID.
func (r *SOSRepo) Create(ctx context.Context, a model.SOSAlert) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO sos_alerts
		 (user_id, alert_type, description, location_lat, location_lng, address,
		  emergency_contacts, severity, is_test_alert)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		a.UserID, a.AlertType, a.Description, a.LocationLat, a.LocationLng, a.Address,
		a.EmergencyContacts, a.Severity, a.IsTestAlert)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetForUser fetches one alert owned by userID, with the responder's name
// joined in.
func (r *SOSRepo) GetForUser(ctx context.Context, id, userID uint64) (model.SOSAlert, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		sosSelect+" WHERE a.id=? AND a.user_id=? LIMIT 1", id, userID))
}

// Get fetches one alert by id regardless of owner.
func (r *SOSRepo) Get(ctx context.Context, id uint64) (model.SOSAlert, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, sosSelect+" WHERE a.id=? LIMIT 1", id))
}

// ListByUser returns the user's alerts newest-first with optional status
// and type filters, plus the unpaginated total.
func (r *SOSRepo) ListByUser(ctx context.Context, userID uint64, status, alertType string, limit, offset int) ([]model.SOSAlert, int, error) {
	where := []string{"a.user_id=?"}
	args := []any{userID}
	if status != "" {
		where = append(where, "a.status=?")
		args = append(args, status)
	}
	if alertType != "" {
		where = append(where, "a.alert_type=?")
		args = append(args, alertType)
	}
	cond := strings.Join(where, " AND ")

	rows, err := r.DB.QueryContext(ctx,
		sosSelect+" WHERE "+cond+" ORDER BY a.created_at DESC LIMIT ? OFFSET ?",
		append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	alerts := []model.SOSAlert{}
	for rows.Next() {
		a, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sos_alerts a WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// Update applies the provided fields. Status transitions to responded and
// resolved stamp response_time and resolved_at the first time they happen.
func (r *SOSRepo) Update(ctx context.Context, id uint64, up SOSUpdate, prev model.SOSAlert) error {
	sets := []string{}
	args := []any{}
	if up.Status != nil {
		sets = append(sets, "status=?")
		args = append(args, *up.Status)
		if *up.Status == model.SOSResponded && prev.ResponseTime == nil {
			sets = append(sets, "response_time=CURRENT_TIMESTAMP")
		}
		if *up.Status == model.SOSResolved && prev.ResolvedAt == nil {
			sets = append(sets, "resolved_at=CURRENT_TIMESTAMP")
		}
	}
	if up.ResponseNotes != nil {
		sets = append(sets, "response_notes=?")
		args = append(args, *up.ResponseNotes)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sos_alerts SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row. Returns ErrNotFound when nothing was deleted.
func (r *SOSRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sos_alerts WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the user's alerts for the dashboard.
func (r *SOSRepo) Stats(ctx context.Context, userID uint64) (SOSStats, error) {
	stats := SOSStats{ByType: map[string]int{}}
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status='active' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status='resolved' THEN 1 ELSE 0 END), 0)
		 FROM sos_alerts WHERE user_id=?`, userID).
		Scan(&stats.Total, &stats.Active, &stats.Resolved)
	if err != nil {
		return SOSStats{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT alert_type, COUNT(*) FROM sos_alerts WHERE user_id=? GROUP BY alert_type", userID)
	if err != nil {
		return SOSStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return SOSStats{}, err
		}
		stats.ByType[typ] = n
	}
	return stats, rows.Err()
}

const sosSelect = `
SELECT a.id, a.user_id, a.responder_id, a.alert_type, a.description,
       a.location_lat, a.location_lng, a.address, a.emergency_contacts,
       a.severity, a.status, a.is_test_alert, a.response_notes,
       a.response_time, a.resolved_at, u.full_name, a.created_at
FROM sos_alerts a
LEFT JOIN users u ON u.id = a.responder_id`

func (r *SOSRepo) scanOne(row *sql.Row) (model.SOSAlert, error) {
	a, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SOSAlert{}, ErrNotFound
	}
	return a, err
}

func (r *SOSRepo) scanRow(row rowScanner) (model.SOSAlert, error) {
	var (
		a             model.SOSAlert
		responderID   sql.NullInt64
		lat, lng      sql.NullFloat64
		address       sql.NullString
		contacts      sql.NullString
		notes         sql.NullString
		responseTime  sql.NullTime
		resolvedAt    sql.NullTime
		responderName sql.NullString
	)
	err := row.Scan(&a.ID, &a.UserID, &responderID, &a.AlertType, &a.Description,
		&lat, &lng, &address, &contacts,
		&a.Severity, &a.Status, &a.IsTestAlert, &notes,
		&responseTime, &resolvedAt, &responderName, &a.CreatedAt)
	if err != nil {
		return model.SOSAlert{}, err
	}
	a.ResponderID = nullID(responderID)
	a.LocationLat = nullFloat(lat)
	a.LocationLng = nullFloat(lng)
	a.Address = nullStr(address)
	a.EmergencyContacts = nullStr(contacts)
	a.ResponseNotes = nullStr(notes)
	a.ResponseTime = nullTime(responseTime)
	a.ResolvedAt = nullTime(resolvedAt)
	a.ResponderName = nullStr(responderName)
	return a, nil
}
