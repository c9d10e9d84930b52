// Package models defines the persisted records and request shapes shared by
// repositories, services, and handlers.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/sql"
)

// ColumnMeta carries optional display metadata for a registered column.
type ColumnMeta struct {
	Type  string `json:"type,omitempty"`
	Label string `json:"label,omitempty"`
}

// DataSource is a registered, whitelisted backing table. Only tables with an
// active DataSource record are visible to the query path; table_name uniquely
// identifies at most one active record at any time.
type DataSource struct {
	ID              uuid.UUID             `json:"id"`
	Name            string                `json:"name"`
	TableName       string                `json:"table_name"`
	Description     string                `json:"description,omitempty"`
	ColumnsMetadata map[string]ColumnMeta `json:"columns_metadata"`
	IsActive        bool                  `json:"is_active"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// Validate checks the descriptor before it is persisted. The table name and
// every metadata column key must pass the identifier whitelist so a bad
// registration can never reach SQL text later.
func (d *DataSource) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrInvalidRequest)
	}
	if err := sql.ValidateIdentifier(d.TableName); err != nil {
		return fmt.Errorf("table_name: %w", err)
	}
	for column := range d.ColumnsMetadata {
		if err := sql.ValidateIdentifier(column); err != nil {
			return fmt.Errorf("columns_metadata: %w", err)
		}
	}
	return nil
}
