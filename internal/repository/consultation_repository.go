package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// ConsultationRepo persists rows of the 'legal_consultations' table.
type ConsultationRepo struct{ DB *sql.DB }

func NewConsultationRepo(db *sql.DB) *ConsultationRepo { return &ConsultationRepo{DB: db} }

// Book inserts a consultation request for a client and returns its ID.
func (r *ConsultationRepo) Book(ctx context.Context, clientID uint64, consultationType string, scheduledAt time.Time, durationMinutes int, notes *string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO legal_consultations (client_id, consultation_type, scheduled_at, duration_minutes, notes)
		 VALUES (?,?,?,?,?)`,
		clientID, consultationType, scheduledAt.UTC(), durationMinutes, notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListForUser returns consultations where the user participates as client
// or as lawyer, most recent schedule first.
func (r *ConsultationRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Consultation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT lc.id, lc.client_id, lc.lawyer_id, lc.consultation_type, lc.scheduled_at,
		        lc.duration_minutes, lc.status, lc.notes, l.full_name, c.full_name, lc.created_at
		 FROM legal_consultations lc
		 LEFT JOIN users l ON l.id = lc.lawyer_id
		 JOIN users c ON c.id = lc.client_id
		 WHERE lc.client_id=? OR lc.lawyer_id=?
		 ORDER BY lc.scheduled_at DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Consultation{}
	for rows.Next() {
		var (
			con        model.Consultation
			lawyerID   sql.NullInt64
			notes      sql.NullString
			lawyerName sql.NullString
			clientName string
		)
		if err := rows.Scan(&con.ID, &con.ClientID, &lawyerID, &con.ConsultationType, &con.ScheduledAt,
			&con.DurationMinutes, &con.Status, &notes, &lawyerName, &clientName, &con.CreatedAt); err != nil {
			return nil, err
		}
		con.LawyerID = nullID(lawyerID)
		con.Notes = nullStr(notes)
		con.LawyerName = nullStr(lawyerName)
		con.ClientName = &clientName
		items = append(items, con)
	}
	return items, rows.Err()
}
