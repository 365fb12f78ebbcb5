// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// NullStringFromPtr converts a pointer to string into sql.NullString.
// Returns a valid NullString if the pointer is non-nil, otherwise returns an invalid one.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr != nil {
		return sql.NullString{String: *ptr, Valid: true}
	}
	return sql.NullString{}
}

// StringPtr converts sql.NullString back into a pointer.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// NullTimeFromPtr converts a pointer to time into sql.NullTime.
func NullTimeFromPtr(ptr *time.Time) sql.NullTime {
	if ptr != nil {
		return sql.NullTime{Time: *ptr, Valid: true}
	}
	return sql.NullTime{}
}

// TimePtr converts sql.NullTime back into a pointer.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// NullUUID stores a UUID as a nullable string column; uuid.Nil becomes NULL.
func NullUUID(id uuid.UUID) sql.NullString {
	if id == uuid.Nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

// ParseNullUUID reads a nullable UUID column. NULL and malformed values yield
// uuid.Nil.
func ParseNullUUID(ns sql.NullString) uuid.UUID {
	if !ns.Valid {
		return uuid.Nil
	}
	id, err := uuid.Parse(ns.String)
	if err != nil {
		return uuid.Nil
	}
	return id
}
