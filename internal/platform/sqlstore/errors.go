package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/wordnews/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
	// invalidTextCode is raised when a JSONB column receives malformed JSON.
	invalidTextCode = "22P02"
)

// violation classifies a constraint failure independent of the driver.
type violation int

const (
	noViolation violation = iota
	uniqueViolation
	foreignKeyViolation
	checkViolation
	notNullViolation
	invalidText
)

// classify inspects pgx and modernc errors for constraint failures and
// returns the violated constraint name when the driver reports one.
func classify(err error) (violation, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return uniqueViolation, pgErr.ConstraintName
		case foreignKeyViolationCode:
			return foreignKeyViolation, pgErr.ConstraintName
		case checkViolationCode:
			return checkViolation, pgErr.ConstraintName
		case notNullViolationCode:
			return notNullViolation, pgErr.ColumnName
		case invalidTextCode:
			return invalidText, pgErr.ColumnName
		}
		return noViolation, ""
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return uniqueViolation, ""
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKeyViolation, ""
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return checkViolation, ""
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return notNullViolation, ""
		}
	}
	return noViolation, ""
}

// opError maps a database error to the matching store sentinel, wrapping
// the original error for context. Driver failures that match no sentinel
// are wrapped in a *store.StoreError naming the entity and operation.
func opError(entity, operation string, err error) error {
	if mapped, ok := mapKnown(err); ok {
		return mapped
	}
	return store.NewStoreError(entity, operation, "database error", err)
}

// mapKnown translates no-rows and constraint failures. ok is false when
// err matches none of them.
func mapKnown(err error) (error, bool) {
	if err == nil {
		return nil, true
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err), true
	}

	kind, name := classify(err)
	switch kind {
	case uniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err), true
	case foreignKeyViolation:
		return fmt.Errorf("%w: foreign key violation (%s): %v", store.ErrInvalidEntity, name, err), true
	case checkViolation:
		return fmt.Errorf("%w: check constraint violation (%s): %v", store.ErrInvalidEntity, name, err), true
	case notNullViolation:
		return fmt.Errorf("%w: not null violation (%s): %v", store.ErrInvalidEntity, name, err), true
	case invalidText:
		return fmt.Errorf("%w: invalid value (%s): %v", store.ErrInvalidEntity, name, err), true
	}
	return nil, false
}

// IsUniqueViolation reports whether err is a unique or primary key violation.
func IsUniqueViolation(err error) bool {
	kind, _ := classify(err)
	return kind == uniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	kind, _ := classify(err)
	return kind == foreignKeyViolation
}

// checkRowsAffected returns notFound when an UPDATE or DELETE matched no rows.
func checkRowsAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// requireJSON rejects payloads that are not valid JSON before they reach SQL.
func requireJSON(field string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: %s must be valid JSON", store.ErrInvalidEntity, field)
	}
	return nil
}
