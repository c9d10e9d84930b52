// Package mysql implements the reporting backend against MySQL: live column
// introspection through information_schema and execution of resolved queries.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/logging"
)

// Backend holds the reporting database connection pool.
type Backend struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to the reporting database and verifies the connection.
// The DSN must carry parseTime=true so temporal columns scan as time.Time.
func Open(ctx context.Context, dsn string, maxOpenConns, maxIdleConns int, logger *zap.Logger) (*Backend, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open reporting database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping reporting database: %w", err)
	}

	logger.Info("Connected to reporting backend", zap.String("dsn", logging.SanitizeDSN(dsn)))
	return &Backend{db: db, logger: logger}, nil
}

// NewBackend wraps an existing handle. Used by tests.
func NewBackend(db *sql.DB, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{db: db, logger: logger}
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	return b.db.Close()
}
