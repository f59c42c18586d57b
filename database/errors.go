package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/cast"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL error code for unique constraint violations.
const pgConflictCode = "23505"

// sqliteConstraintPrefix precedes the column list in SQLite constraint errors,
// e.g. "UNIQUE constraint failed: brands.common_name".
const sqliteConstraintPrefix = "constraint failed: "

// IsConflict checks if the error is a unique or primary key violation
// reported by PostgreSQL or SQLite.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgConflictCode
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	return false
}

// ConstraintName returns the name of the violated constraint. For SQLite,
// which does not report index names, it returns the failing "table.column" list
// from the error message.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		msg := liteErr.Error()
		if i := strings.LastIndex(msg, sqliteConstraintPrefix); i >= 0 {
			rest := msg[i+len(sqliteConstraintPrefix):]
			if j := strings.IndexAny(rest, " ("); j >= 0 {
				rest = rest[:j]
			}
			return strings.TrimSpace(rest)
		}
	}

	return ""
}

// IsNotFound checks if the error indicates that no rows were found.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// GetErrorDetails extracts driver level information from a database error,
// together with the query that produced it.
func GetErrorDetails(err error, query fmt.Stringer) errx.D {
	details := make(errx.D)
	queryStr := getSafeQueryString(query)
	if queryStr != "" {
		details["query"] = strings.ReplaceAll(queryStr, `"`, ``)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		details["sqlite.code"] = cast.ToString(liteErr.Code())
		details["sqlite.message"] = liteErr.Error()
		return details
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return details
	}

	details["pg.code"] = pgErr.Code
	details["pg.severity"] = pgErr.Severity
	details["pg.message"] = pgErr.Message
	details["pg.detail"] = pgErr.Detail
	details["pg.hint"] = pgErr.Hint
	details["pg.schema"] = pgErr.SchemaName
	details["pg.table"] = pgErr.TableName
	details["pg.column"] = pgErr.ColumnName
	details["pg.data_type"] = pgErr.DataTypeName
	details["pg.constraint"] = pgErr.ConstraintName

	return details
}

// getSafeQueryString safely converts a query to a string, preventing panics.
//
// Some query implementations, like bun.InsertQuery, can panic when String() is called
// in certain conditions. Returns an empty string if query is nil or if String() panics.
func getSafeQueryString(query fmt.Stringer) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()

	if query == nil {
		return ""
	}

	return query.String()
}
