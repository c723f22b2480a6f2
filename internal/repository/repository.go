package repository

import (
	"context"
	"database/sql" // Required for sql.Result
	"strings"

	"github.com/jmoiron/sqlx"
)

// DBTX is the query surface shared by *sqlx.DB and *sqlx.Tx, so repositories
// run the same queries inside and outside a transaction.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Both executor types must satisfy DBTX for GetExecutor to hand them out.
var (
	_ DBTX = (*sqlx.DB)(nil)
	_ DBTX = (*sqlx.Tx)(nil)
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// Oracle reports these as ORA-00001; the string form is also matched so
// sqlmock-backed tests can simulate the condition.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "ORA-00001") || strings.Contains(msg, "unique constraint")
}
