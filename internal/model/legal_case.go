package model

import "time"

// LegalCase mirrors the `legal_cases` table. Case numbers follow the
// NYM-YYYY-NNNN pattern and are generated at creation time.
type LegalCase struct {
	ID              uint64     // legal_cases.id
	UserID          uint64     // legal_cases.user_id
	AssignedLawyer  *uint64    // legal_cases.assigned_lawyer_id
	CaseNumber      string     // legal_cases.case_number
	Title           string     // legal_cases.title
	Description     string     // legal_cases.description
	CaseType        string     // legal_cases.case_type
	Status          string     // legal_cases.status
	Priority        string     // legal_cases.priority
	CourtName       *string    // legal_cases.court_name
	JudgeName       *string    // legal_cases.judge_name
	NextHearingDate *time.Time // legal_cases.next_hearing_date
	LawyerName      *string    // joined users.full_name of the assigned lawyer
	CreatedAt       time.Time  // legal_cases.created_at
	UpdatedAt       time.Time  // legal_cases.updated_at
}
