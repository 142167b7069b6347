package model

import "time"

// Roles are a closed set. Registration only ever produces citizen or lawyer
// accounts; admin is assigned out-of-band.
const (
	RoleCitizen = "citizen"
	RoleLawyer  = "lawyer"
	RoleAdmin   = "admin"
)

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column. Handlers define separate
// response types with JSON tags; the password hash never leaves the
// repository layer in a response.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login/display handle.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	FullName     – display name.
//	Phone        – optional contact number.
//	Address      – optional postal address.
//	UserType     – one of the Role* constants.
//	ProfileImage – optional avatar path.
//	IsVerified   – whether identity verification completed.
//	IsActive     – whether the account may log in.
//	LastLogin    – last successful login (nil before first login).
type User struct {
	ID           uint64     // users.id
	Username     string     // users.username
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	FullName     string     // users.full_name
	Phone        *string    // users.phone
	Address      *string    // users.address
	UserType     string     // users.user_type
	ProfileImage *string    // users.profile_image
	IsVerified   bool       // users.is_verified
	IsActive     bool       // users.is_active
	LastLogin    *time.Time // users.last_login
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// AuthUser is the minimal identity the authenticator attaches to the
// request context for downstream handlers.
type AuthUser struct {
	ID         uint64
	Username   string
	Email      string
	UserType   string
	IsVerified bool
}
