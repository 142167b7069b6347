package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// WhistleblowerRepo persists rows of the 'whistleblower_reports' table.
type WhistleblowerRepo struct{ DB *sql.DB }

func NewWhistleblowerRepo(db *sql.DB) *WhistleblowerRepo { return &WhistleblowerRepo{DB: db} }

// Create inserts a report. ReporterID is nil for anonymous reports.
func (r *WhistleblowerRepo) Create(ctx context.Context, w model.WhistleblowerReport) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO whistleblower_reports
		 (reporter_id, report_id, title, description, category, severity,
		  organization_involved, estimated_impact, is_anonymous)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		w.ReporterID, w.ReportID, w.Title, w.Description, w.Category, w.Severity,
		w.OrganizationInvolved, w.EstimatedImpact, w.IsAnonymous)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByReportID fetches the publicly visible status fields of a report by
// its tracking identifier. This lookup needs no authentication so that
// anonymous reporters can follow up.
func (r *WhistleblowerRepo) GetByReportID(ctx context.Context, reportID string) (model.WhistleblowerReport, error) {
	var w model.WhistleblowerReport
	err := r.DB.QueryRowContext(ctx,
		`SELECT report_id, title, status, created_at, updated_at
		 FROM whistleblower_reports WHERE report_id=? LIMIT 1`, reportID).
		Scan(&w.ReportID, &w.Title, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WhistleblowerReport{}, ErrNotFound
	}
	if err != nil {
		return model.WhistleblowerReport{}, err
	}
	return w, nil
}
