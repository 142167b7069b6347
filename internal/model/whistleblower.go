package model

import "time"

// WhistleblowerReport mirrors the `whistleblower_reports` table. ReportID
// is the public tracking identifier handed back to the submitter; anonymous
// reporters use it to check status without an account.
type WhistleblowerReport struct {
	ID                   uint64    // whistleblower_reports.id
	ReporterID           *uint64   // whistleblower_reports.reporter_id (nil when anonymous)
	ReportID             string    // whistleblower_reports.report_id
	Title                string    // whistleblower_reports.title
	Description          string    // whistleblower_reports.description
	Category             string    // whistleblower_reports.category
	Severity             string    // whistleblower_reports.severity
	OrganizationInvolved *string   // whistleblower_reports.organization_involved
	EstimatedImpact      *string   // whistleblower_reports.estimated_impact
	Status               string    // whistleblower_reports.status
	IsAnonymous          bool      // whistleblower_reports.is_anonymous
	CreatedAt            time.Time // whistleblower_reports.created_at
	UpdatedAt            time.Time // whistleblower_reports.updated_at
}
