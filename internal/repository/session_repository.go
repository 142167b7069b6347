package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// SessionRepo persists rows of the 'user_sessions' table. Sessions are
// invalidated by flipping is_active, never deleted, so multiple concurrent
// sessions per user remain visible for auditing.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row binding a token pair to a user.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_sessions
		 (user_id, session_token, refresh_token, device_info, ip_address, user_agent, expires_at)
		 VALUES (?,?,?,?,?,?,?)`,
		s.UserID, s.SessionToken, s.RefreshToken, s.DeviceInfo, s.IPAddress, s.UserAgent,
		s.ExpiresAt.UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindActiveWithUser looks up an active session by access token together
// with its owning user. Expiry is checked in Go so the comparison is not
// sensitive to the column's text representation. Returns ErrNotFound when
// no active, unexpired session matches.
func (r *SessionRepo) FindActiveWithUser(ctx context.Context, token string) (model.Session, model.User, error) {
	var (
		s         model.Session
		u         model.User
		lastLogin sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.session_token, s.refresh_token, s.expires_at, s.last_accessed,
		        u.id, u.username, u.email, u.user_type, u.is_verified, u.is_active, u.last_login
		 FROM user_sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.session_token=? AND s.is_active=1
		 LIMIT 1`, token).
		Scan(&s.ID, &s.UserID, &s.SessionToken, &s.RefreshToken, &s.ExpiresAt, &s.LastAccessed,
			&u.ID, &u.Username, &u.Email, &u.UserType, &u.IsVerified, &u.IsActive, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, model.User{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, model.User{}, err
	}
	if time.Now().UTC().After(s.ExpiresAt.UTC()) {
		return model.Session{}, model.User{}, ErrNotFound
	}
	s.IsActive = true
	u.LastLogin = nullTime(lastLogin)
	return s, u, nil
}

// FindActiveByRefresh looks up an active, unexpired session by its refresh
// token.
func (r *SessionRepo) FindActiveByRefresh(ctx context.Context, refreshToken string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, session_token, refresh_token, expires_at, last_accessed
		 FROM user_sessions
		 WHERE refresh_token=? AND is_active=1
		 LIMIT 1`, refreshToken).
		Scan(&s.ID, &s.UserID, &s.SessionToken, &s.RefreshToken, &s.ExpiresAt, &s.LastAccessed)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, err
	}
	if time.Now().UTC().After(s.ExpiresAt.UTC()) {
		return model.Session{}, ErrNotFound
	}
	s.IsActive = true
	return s, nil
}

// RotateAccessToken writes a freshly minted access token onto the session
// identified by its refresh token.
func (r *SessionRepo) RotateAccessToken(ctx context.Context, refreshToken, newAccessToken string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE user_sessions
		 SET session_token=?, last_accessed=CURRENT_TIMESTAMP
		 WHERE refresh_token=?`, newAccessToken, refreshToken)
	return err
}

// Touch updates last_accessed for the session carrying the given access
// token. Called on every authenticated request.
func (r *SessionRepo) Touch(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_sessions SET last_accessed=CURRENT_TIMESTAMP WHERE session_token=?", token)
	return err
}

// Deactivate flips the active flag of the session carrying the given access
// token. Idempotent: a missing or already-inactive token is not an error.
func (r *SessionRepo) Deactivate(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_sessions SET is_active=0 WHERE session_token=?", token)
	return err
}

// DeactivateAllForUser logs the user out of every session across devices.
func (r *SessionRepo) DeactivateAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_sessions SET is_active=0 WHERE user_id=? AND is_active=1", userID)
	return err
}
