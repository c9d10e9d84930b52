package mysql

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
)

// columnsQuery reads the live column set from the schema catalog. Always hits
// information_schema rather than any cached metadata: the whitelist must
// reflect the schema as it is right now.
const columnsQuery = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = DATABASE() AND table_name = ?
	ORDER BY ordinal_position`

// Columns returns the table's column names in ordinal position order.
func (b *Backend) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaUnavailable, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaUnavailable, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaUnavailable, err)
	}

	// A table with no introspectable columns does not exist as far as the
	// whitelist is concerned.
	if len(columns) == 0 {
		b.logger.Warn("Table has no introspectable columns", zap.String("table", table))
		return nil, fmt.Errorf("%w: table %q not found in schema", apperrors.ErrSchemaUnavailable, table)
	}

	return columns, nil
}
