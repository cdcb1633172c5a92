package database

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"campus-server/internal/roles"
	"campus-server/internal/session"
)

// StatementExecuted is the generic confirmation for a successful write.
const StatementExecuted = "Statement executed successfully."

// Executor runs reads and writes for one session against the pool of the
// role given per call. It is stateless between calls apart from the pools
// the session caches.
type Executor struct {
	session *session.Session
}

// NewExecutor binds an executor to a session.
func NewExecutor(sess *session.Session) *Executor {
	return &Executor{session: sess}
}

// Session exposes the bound session for profile-id memoization.
func (e *Executor) Session() *session.Session {
	return e.session
}

// Query runs a read statement with positional parameters and materializes
// all rows. It never fails past this boundary: on any store error the
// result is an empty table carrying the user-visible message.
func (e *Executor) Query(ctx context.Context, role roles.Role, query string, params ...interface{}) *Table {
	pool, err := e.session.Pool(ctx, role)
	if err != nil {
		log.WithError(err).Error("Could not obtain connection pool for query")
		return &Table{Message: err.Error()}
	}

	rows, err := pool.Query(ctx, query, SanitizeParams(params)...)
	if err != nil {
		storeErr := Classify(err)
		log.WithError(err).Error("Database query failed")
		return &Table{Message: "Database query failed: " + storeErr.Message}
	}

	table, err := materializeRows(rows)
	if err != nil {
		storeErr := Classify(err)
		log.WithError(err).Error("Database query failed while reading rows")
		return &Table{Message: "Database query failed: " + storeErr.Message}
	}

	return table
}

// Exec runs a single write statement inside its own transaction. On any
// failure the transaction is rolled back and the classified message is
// returned; no partial commit is possible.
func (e *Executor) Exec(ctx context.Context, role roles.Role, statement string, params ...interface{}) (bool, string) {
	pool, err := e.session.Pool(ctx, role)
	if err != nil {
		log.WithError(err).Error("Could not obtain connection pool for statement")
		return false, err.Error()
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, Classify(err).Message
	}

	if _, err = tx.Exec(ctx, statement, SanitizeParams(params)...); err != nil {
		_ = tx.Rollback(ctx)
		storeErr := Classify(err)
		log.WithError(err).Warn("Statement rejected by store")
		return false, storeErr.Message
	}

	if err = tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return false, Classify(err).Message
	}

	return true, StatementExecuted
}

// CallProcedure invokes a stored procedure and commits. Trigger-raised
// rejections come back as (false, store message).
func (e *Executor) CallProcedure(ctx context.Context, role roles.Role, name string, params ...interface{}) (bool, string) {
	call := fmt.Sprintf("CALL %s(%s)", name, placeholders(len(params)))
	ok, message := e.Exec(ctx, role, call, params...)
	if ok {
		message = fmt.Sprintf("Procedure %s executed successfully.", name)
	}
	return ok, message
}

// QueryFunction runs a set-returning function and materializes its rows
// like a plain query.
func (e *Executor) QueryFunction(ctx context.Context, role roles.Role, name string, params ...interface{}) *Table {
	query := fmt.Sprintf("SELECT * FROM %s(%s)", name, placeholders(len(params)))
	return e.Query(ctx, role, query, params...)
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}
