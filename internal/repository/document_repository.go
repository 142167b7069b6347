package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// DocumentRepo persists rows of the 'document_analysis' table.
type DocumentRepo struct{ DB *sql.DB }

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{DB: db} }

// AnalysisUpdate carries the serialized result the background analyzer
// writes onto a completed document row.
type AnalysisUpdate struct {
	Summary         string
	KeyPoints       string // JSON array
	Entities        string // JSON object
	LegalReferences string // JSON array
	Result          string // full JSON payload
	Confidence      float64
	ProcessingTime  float64
}

// Create inserts a document row in processing state and returns its ID.
func (r *DocumentRepo) Create(ctx context.Context, userID uint64, caseID *uint64, filename, path, mime string, size int64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO document_analysis
		 (user_id, case_id, original_filename, file_path, file_type, file_size, status)
		 VALUES (?,?,?,?,?,?,?)`,
		userID, caseID, filename, path, mime, size, model.DocumentProcessing)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetForUser fetches a document owned by userID, with its case join.
// Returns ErrNotFound when absent or owned by someone else.
func (r *DocumentRepo) GetForUser(ctx context.Context, id, userID uint64) (model.Document, error) {
	return scanDocument(r.DB.QueryRowContext(ctx,
		documentSelect+" WHERE d.id=? AND d.user_id=? LIMIT 1", id, userID))
}

// ListByUser returns the owner's documents newest-first with optional
// status and case filters, plus the unpaginated total for the same filter.
func (r *DocumentRepo) ListByUser(ctx context.Context, userID uint64, status string, caseID uint64, limit, offset int) ([]model.Document, int, error) {
	where := []string{"d.user_id=?"}
	args := []any{userID}
	if status != "" {
		where = append(where, "d.status=?")
		args = append(args, status)
	}
	if caseID != 0 {
		where = append(where, "d.case_id=?")
		args = append(args, caseID)
	}
	cond := strings.Join(where, " AND ")

	rows, err := r.DB.QueryContext(ctx,
		documentSelect+" WHERE "+cond+" ORDER BY d.created_at DESC LIMIT ? OFFSET ?",
		append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		d, err := scanDocumentRows(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM document_analysis d WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// MarkProcessing resets a document to processing ahead of re-analysis.
func (r *DocumentRepo) MarkProcessing(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE document_analysis SET status=?, error_message=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		model.DocumentProcessing, id)
	return err
}

// Complete records a successful analysis.
func (r *DocumentRepo) Complete(ctx context.Context, id uint64, up AnalysisUpdate) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE document_analysis
		 SET summary=?, key_points=?, extracted_entities=?, legal_references=?,
		     analysis_result=?, confidence_score=?, processing_time=?,
		     status=?, error_message=NULL, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		up.Summary, up.KeyPoints, up.Entities, up.LegalReferences,
		up.Result, up.Confidence, up.ProcessingTime,
		model.DocumentCompleted, id)
	return err
}

// Fail records an analysis failure. The failure never reaches the original
// HTTP response; it is observed through this row.
func (r *DocumentRepo) Fail(ctx context.Context, id uint64, message string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE document_analysis SET status=?, error_message=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		model.DocumentFailed, message, id)
	return err
}

// Delete removes the row. Returns ErrNotFound when nothing was deleted.
func (r *DocumentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM document_analysis WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const documentSelect = `
SELECT d.id, d.user_id, d.case_id, d.original_filename, d.file_path, d.file_type,
       d.file_size, d.status, d.summary, d.key_points, d.extracted_entities,
       d.legal_references, d.analysis_result, d.confidence_score, d.processing_time,
       d.error_message, c.case_number, c.title, d.created_at, d.updated_at
FROM document_analysis d
LEFT JOIN legal_cases c ON c.id = d.case_id`

type rowScanner interface{ Scan(dest ...any) error }

func scanDocument(row *sql.Row) (model.Document, error) {
	d, err := scanDocumentRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, ErrNotFound
	}
	return d, err
}

func scanDocumentRows(row rowScanner) (model.Document, error) {
	var (
		d          model.Document
		caseID     sql.NullInt64
		summary    sql.NullString
		keyPoints  sql.NullString
		entities   sql.NullString
		refs       sql.NullString
		result     sql.NullString
		confidence sql.NullFloat64
		procTime   sql.NullFloat64
		errMsg     sql.NullString
		caseNumber sql.NullString
		caseTitle  sql.NullString
	)
	err := row.Scan(&d.ID, &d.UserID, &caseID, &d.OriginalFilename, &d.FilePath, &d.FileType,
		&d.FileSize, &d.Status, &summary, &keyPoints, &entities,
		&refs, &result, &confidence, &procTime,
		&errMsg, &caseNumber, &caseTitle, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Document{}, err
	}
	d.CaseID = nullID(caseID)
	d.Summary = nullStr(summary)
	d.KeyPoints = nullStr(keyPoints)
	d.ExtractedEntities = nullStr(entities)
	d.LegalReferences = nullStr(refs)
	d.AnalysisResult = nullStr(result)
	d.ConfidenceScore = nullFloat(confidence)
	d.ProcessingTime = nullFloat(procTime)
	d.ErrorMessage = nullStr(errMsg)
	d.CaseNumber = nullStr(caseNumber)
	d.CaseTitle = nullStr(caseTitle)
	return d, nil
}
