package model

import "time"

// Session models an entry in the `user_sessions` table. One row is created
// per login or registration and binds an issued token pair to a user. A
// session has its own expiry and active flag, independent of the tokens'
// cryptographic expiry claims: logout flips IsActive rather than deleting
// the row.
type Session struct {
	ID           uint64    // user_sessions.id
	UserID       uint64    // user_sessions.user_id
	SessionToken string    // user_sessions.session_token (current access token)
	RefreshToken string    // user_sessions.refresh_token
	DeviceInfo   *string   // user_sessions.device_info (JSON blob)
	IPAddress    *string   // user_sessions.ip_address
	UserAgent    *string   // user_sessions.user_agent
	IsActive     bool      // user_sessions.is_active
	ExpiresAt    time.Time // user_sessions.expires_at
	LastAccessed time.Time // user_sessions.last_accessed
	CreatedAt    time.Time // user_sessions.created_at
}
