// Package repository implements the data access layer over a shared
// *sql.DB. Sentinel errors let handlers distinguish failure scenarios
// without inspecting SQL error strings themselves.
package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a row does not exist or is not owned by the
// caller. Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned when a registration collides with an existing
// email or username. Handlers translate it into an HTTP 409 response.
var ErrUserExists = errors.New("user already exists")

// ErrDuplicate is returned when an insert collides with a UNIQUE constraint
// on a generated identifier, such as a case number. Callers may retry with
// a fresh value.
var ErrDuplicate = errors.New("duplicate value")

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver surfaces constraint errors as plain strings.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// Nullable column helpers: convert sql.Null* scan targets into pointers on
// the model structs.

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func nullID(ni sql.NullInt64) *uint64 {
	if !ni.Valid {
		return nil
	}
	v := uint64(ni.Int64)
	return &v
}
