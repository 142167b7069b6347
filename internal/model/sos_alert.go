package model

import "time"

// SOS alert status values.
const (
	SOSActive    = "active"
	SOSResponded = "responded"
	SOSResolved  = "resolved"
	SOSCancelled = "cancelled"
)

// SOSAlert mirrors the `sos_alerts` table. EmergencyContacts holds the
// caller-supplied contact list as JSON text.
type SOSAlert struct {
	ID                uint64     // sos_alerts.id
	UserID            uint64     // sos_alerts.user_id
	ResponderID       *uint64    // sos_alerts.responder_id
	AlertType         string     // sos_alerts.alert_type
	Description       string     // sos_alerts.description
	LocationLat       *float64   // sos_alerts.location_lat
	LocationLng       *float64   // sos_alerts.location_lng
	Address           *string    // sos_alerts.address
	EmergencyContacts *string    // sos_alerts.emergency_contacts (JSON)
	Severity          string     // sos_alerts.severity
	Status            string     // sos_alerts.status
	IsTestAlert       bool       // sos_alerts.is_test_alert
	ResponseNotes     *string    // sos_alerts.response_notes
	ResponseTime      *time.Time // sos_alerts.response_time
	ResolvedAt        *time.Time // sos_alerts.resolved_at
	ResponderName     *string    // joined users.full_name of the responder
	CreatedAt         time.Time  // sos_alerts.created_at
}
