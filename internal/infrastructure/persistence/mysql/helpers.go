package mysql

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
)

// nullString converts a string to sql.NullString.
// Returns NULL if the string is empty.
func nullString(s string) sql.NullString {
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}

// stringValue converts sql.NullString to string.
// Returns empty string if the value is NULL.
func stringValue(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

// timeToTimestamp normalizes to UTC before storage.
func timeToTimestamp(t time.Time) time.Time {
	return t.UTC()
}

// mapError maps MySQL errors to domain repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062: // ER_DUP_ENTRY
			return repository.ErrAlreadyExists
		case 1213, 1205: // ER_LOCK_DEADLOCK, ER_LOCK_WAIT_TIMEOUT
			return repository.ErrConcurrentUpdate
		}
	}

	return err
}

// isRetryable checks if an error is a transient failure.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1213, // ER_LOCK_DEADLOCK
			1205, // ER_LOCK_WAIT_TIMEOUT
			2006, // ER_SERVER_GONE_ERROR
			2013: // ER_SERVER_LOST
			return true
		}
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe")
}
