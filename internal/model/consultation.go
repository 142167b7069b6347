package model

import "time"

// Consultation mirrors the `legal_consultations` table. LawyerID stays nil
// until a lawyer accepts the booking.
type Consultation struct {
	ID               uint64    // legal_consultations.id
	ClientID         uint64    // legal_consultations.client_id
	LawyerID         *uint64   // legal_consultations.lawyer_id
	ConsultationType string    // legal_consultations.consultation_type
	ScheduledAt      time.Time // legal_consultations.scheduled_at
	DurationMinutes  int       // legal_consultations.duration_minutes
	Status           string    // legal_consultations.status
	Notes            *string   // legal_consultations.notes
	LawyerName       *string   // joined users.full_name of the lawyer
	ClientName       *string   // joined users.full_name of the client
	CreatedAt        time.Time // legal_consultations.created_at
}
