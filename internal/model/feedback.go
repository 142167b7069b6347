package model

import "time"

// CivicFeedback mirrors the `civic_feedback` table. UserID is nil for
// anonymous submissions.
type CivicFeedback struct {
	ID          uint64    // civic_feedback.id
	UserID      *uint64   // civic_feedback.user_id
	Category    string    // civic_feedback.category
	Subject     string    // civic_feedback.subject
	Description string    // civic_feedback.description
	Location    *string   // civic_feedback.location
	Priority    string    // civic_feedback.priority
	Status      string    // civic_feedback.status
	IsAnonymous bool      // civic_feedback.is_anonymous
	CreatedAt   time.Time // civic_feedback.created_at
}
