package model

import "time"

// Notification mirrors the `notifications` table: an append-only message
// addressed to a user. Rows are only ever mutated to flip the read flag.
type Notification struct {
	ID        uint64     // notifications.id
	UserID    uint64     // notifications.user_id
	Title     string     // notifications.title
	Message   string     // notifications.message
	Type      string     // notifications.type (info|success|warning|error)
	Category  string     // notifications.category (account|document|sos|...)
	Priority  string     // notifications.priority
	IsRead    bool       // notifications.is_read
	ReadAt    *time.Time // notifications.read_at
	CreatedAt time.Time  // notifications.created_at
}
