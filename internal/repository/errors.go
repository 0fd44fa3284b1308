package repository

import "strings"

// isUniqueViolation matches unique constraint errors from SQLite and PostgreSQL.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}

// violatedColumn reports whether a unique violation concerns the given column.
// SQLite reports "users.email", PostgreSQL reports the index name "users_email_key".
func violatedColumn(err error, column string) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "."+column) || strings.Contains(errStr, "_"+column+"_")
}
