package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// CaseRepo persists rows of the 'legal_cases' table.
type CaseRepo struct{ DB *sql.DB }

func NewCaseRepo(db *sql.DB) *CaseRepo { return &CaseRepo{DB: db} }

// Create inserts a case and returns its ID. Case numbers are generated by
// the handler; a colliding number maps to ErrDuplicate so the caller can
// retry with a fresh one.
func (r *CaseRepo) Create(ctx context.Context, userID uint64, caseNumber, title, description, caseType, priority string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO legal_cases (user_id, case_number, title, description, case_type, priority)
		 VALUES (?,?,?,?,?,?)`,
		userID, caseNumber, title, description, caseType, priority)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// OwnedBy reports whether the case exists and belongs to userID.
func (r *CaseRepo) OwnedBy(ctx context.Context, caseID, userID uint64) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM legal_cases WHERE id=? AND user_id=? LIMIT 1", caseID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns the owner's cases newest-first with optional status
// and type filters, plus the unpaginated total.
func (r *CaseRepo) ListByUser(ctx context.Context, userID uint64, status, caseType string, limit, offset int) ([]model.LegalCase, int, error) {
	where := []string{"c.user_id=?"}
	args := []any{userID}
	if status != "" {
		where = append(where, "c.status=?")
		args = append(args, status)
	}
	if caseType != "" {
		where = append(where, "c.case_type=?")
		args = append(args, caseType)
	}
	cond := strings.Join(where, " AND ")

	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.assigned_lawyer_id, c.case_number, c.title, c.description,
		        c.case_type, c.status, c.priority, c.court_name, c.judge_name,
		        c.next_hearing_date, u.full_name, c.created_at, c.updated_at
		 FROM legal_cases c
		 LEFT JOIN users u ON u.id = c.assigned_lawyer_id
		 WHERE `+cond+` ORDER BY c.created_at DESC LIMIT ? OFFSET ?`,
		append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cases := []model.LegalCase{}
	for rows.Next() {
		var (
			lc         model.LegalCase
			lawyerID   sql.NullInt64
			courtName  sql.NullString
			judgeName  sql.NullString
			hearing    sql.NullTime
			lawyerName sql.NullString
		)
		if err := rows.Scan(&lc.ID, &lc.UserID, &lawyerID, &lc.CaseNumber, &lc.Title, &lc.Description,
			&lc.CaseType, &lc.Status, &lc.Priority, &courtName, &judgeName,
			&hearing, &lawyerName, &lc.CreatedAt, &lc.UpdatedAt); err != nil {
			return nil, 0, err
		}
		lc.AssignedLawyer = nullID(lawyerID)
		lc.CourtName = nullStr(courtName)
		lc.JudgeName = nullStr(judgeName)
		lc.NextHearingDate = nullTime(hearing)
		lc.LawyerName = nullStr(lawyerName)
		cases = append(cases, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM legal_cases c WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return cases, total, nil
}
