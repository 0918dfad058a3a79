package db

import "database/sql"

// NewNullString creates a sql.NullString from a string (empty string = NULL)
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
