// Package reporting defines the contract the query path has with the
// reporting backend: live schema introspection for the column whitelist, and
// execution of resolved queries into ordered records.
package reporting

import (
	"context"

	"github.com/gridreport/gridreport-engine/pkg/sql"
)

// Introspector reports the live column set of a table. Implementations must
// query the backend's schema catalog on every call - the column whitelist is
// only trustworthy when it reflects the current schema, never a cache.
type Introspector interface {
	// Columns returns the table's column names in ordinal position order.
	// Returns apperrors.ErrSchemaUnavailable when the table cannot be
	// introspected.
	Columns(ctx context.Context, table string) ([]string, error)
}

// Executor runs a resolved query and materializes its rows.
type Executor interface {
	// Run executes the statement with its parameter list and returns one
	// Record per row, keyed by the query's output fields in positional
	// order. Returns apperrors.ErrExecutionFailed wrapping the backend
	// error when the statement cannot be executed.
	Run(ctx context.Context, query *sql.ResolvedQuery) ([]Record, error)
}

// Backend is the full reporting-database surface the services depend on.
type Backend interface {
	Introspector
	Executor

	// Close releases the underlying connection pool.
	Close() error
}
