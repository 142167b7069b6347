package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/utils"
)

// UserRepo persists rows of the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, email, password_hash, full_name, phone, address,
 user_type, profile_image, is_verified, is_active, last_login, created_at, updated_at`

// Create inserts a user with a freshly hashed password and returns its ID.
// Email is normalized to lower case. A UNIQUE violation on email or
// username maps to ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, username, email, password, fullName string, phone *string, userType string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, full_name, phone, user_type) VALUES (?,?,?,?,?,?)",
		username, email, hash, fullName, phone, userType)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateLastLogin stamps the last successful login time.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=CURRENT_TIMESTAMP WHERE id=?", id)
	return err
}

// UpdateProfile applies the non-nil profile fields. Returns ErrNotFound
// when the user row does not exist.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName, phone, address *string) error {
	sets := []string{}
	args := []any{}
	if fullName != nil {
		sets = append(sets, "full_name=?")
		args = append(args, *fullName)
	}
	if phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *phone)
	}
	if address != nil {
		sets = append(sets, "address=?")
		args = append(args, *address)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at=CURRENT_TIMESTAMP")
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns users newest-first with an optional substring search over
// username, email and full name, an optional user_type filter, and the
// unpaginated total. Password hashes are never selected.
func (r *UserRepo) List(ctx context.Context, search, userType string, limit, offset int) ([]model.User, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if search != "" {
		where = append(where, "(username LIKE ? OR email LIKE ? OR full_name LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if userType != "" {
		where = append(where, "user_type=?")
		args = append(args, userType)
	}
	cond := strings.Join(where, " AND ")

	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, username, email, full_name, user_type, is_verified, is_active, last_login, created_at
		 FROM users WHERE `+cond+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var (
			u         model.User
			lastLogin sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.UserType,
			&u.IsVerified, &u.IsActive, &lastLogin, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		u.LastLogin = nullTime(lastLogin)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetStatus updates the active flag and, when given, the verified flag.
// Returns ErrNotFound when the user row does not exist.
func (r *UserRepo) SetStatus(ctx context.Context, id uint64, isActive bool, isVerified *bool) error {
	sets := []string{"is_active=?", "updated_at=CURRENT_TIMESTAMP"}
	args := []any{isActive}
	if isVerified != nil {
		sets = append(sets, "is_verified=?")
		args = append(args, *isVerified)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user row. Sessions, cases, documents and notifications
// cascade through the schema's foreign keys. Returns ErrNotFound when the
// row does not exist.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u            model.User
		phone        sql.NullString
		address      sql.NullString
		profileImage sql.NullString
		lastLogin    sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
		&phone, &address, &u.UserType, &profileImage, &u.IsVerified, &u.IsActive,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Phone = nullStr(phone)
	u.Address = nullStr(address)
	u.ProfileImage = nullStr(profileImage)
	u.LastLogin = nullTime(lastLogin)
	return u, nil
}
