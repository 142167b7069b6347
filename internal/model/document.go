package model

import "time"

// Document status values. A document is created as processing and is
// mutated exactly once by the background analyzer, to completed or failed.
const (
	DocumentProcessing = "processing"
	DocumentCompleted  = "completed"
	DocumentFailed     = "failed"
)

// Document mirrors the `document_analysis` table: one uploaded artifact and
// the result of its (mock) AI analysis. The serialized analysis columns are
// stored as JSON text and parsed by handlers on the way out.
type Document struct {
	ID                uint64     // document_analysis.id
	UserID            uint64     // document_analysis.user_id
	CaseID            *uint64    // document_analysis.case_id
	OriginalFilename  string     // document_analysis.original_filename
	FilePath          string     // document_analysis.file_path
	FileType          string     // document_analysis.file_type (declared MIME)
	FileSize          int64      // document_analysis.file_size (bytes)
	Status            string     // document_analysis.status
	Summary           *string    // document_analysis.summary
	KeyPoints         *string    // document_analysis.key_points (JSON array)
	ExtractedEntities *string    // document_analysis.extracted_entities (JSON object)
	LegalReferences   *string    // document_analysis.legal_references (JSON array)
	AnalysisResult    *string    // document_analysis.analysis_result (full JSON payload)
	ConfidenceScore   *float64   // document_analysis.confidence_score
	ProcessingTime    *float64   // document_analysis.processing_time (seconds)
	ErrorMessage      *string    // document_analysis.error_message
	CaseNumber        *string   // joined legal_cases.case_number
	CaseTitle         *string   // joined legal_cases.title
	CreatedAt         time.Time // document_analysis.created_at
	UpdatedAt         time.Time // document_analysis.updated_at
}
