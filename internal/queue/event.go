// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for domain events. Routing keys equal queue names on the
// default exchange.
const (
	DocumentAnalyzedQueue = "document.analyzed"
	SOSAlertQueue         = "sos.alert"
)

// DocumentAnalyzedEvent is published when the background analyzer finishes a
// document, whether it completed or failed. It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type DocumentAnalyzedEvent struct {
	DocumentID   uint64  `json:"document_id"`
	UserID       uint64  `json:"user_id"`
	Filename     string  `json:"filename"`
	Status       string  `json:"status"`
	Confidence   float64 `json:"confidence,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	FinishedAt   string  `json:"finished_at"`
}

// SOSAlertEvent is published when a citizen raises an emergency alert so
// responder-side consumers can react without polling.
type SOSAlertEvent struct {
	AlertID   uint64   `json:"alert_id"`
	UserID    uint64   `json:"user_id"`
	AlertType string   `json:"alert_type"`
	Severity  string   `json:"severity"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   *string  `json:"address,omitempty"`
	RaisedAt  string   `json:"raised_at"`
}
