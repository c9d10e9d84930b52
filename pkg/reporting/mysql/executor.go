package mysql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/logging"
	"github.com/gridreport/gridreport-engine/pkg/reporting"
	sqlpkg "github.com/gridreport/gridreport-engine/pkg/sql"
)

// Run executes a resolved query and materializes its rows into ordered
// records keyed by the query's output fields.
func (b *Backend) Run(ctx context.Context, query *sqlpkg.ResolvedQuery) ([]reporting.Record, error) {
	b.logger.Debug("Executing reporting query",
		zap.String("sql", logging.SanitizeQuery(query.SQL)),
		zap.Int("params", len(query.Params)),
	)

	rows, err := b.db.QueryContext(ctx, query.SQL, query.Params...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExecutionFailed, err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExecutionFailed, err)
	}
	if len(columnNames) != len(query.Fields) {
		return nil, fmt.Errorf("%w: expected %d result columns, got %d",
			apperrors.ErrExecutionFailed, len(query.Fields), len(columnNames))
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExecutionFailed, err)
	}

	records := make([]reporting.Record, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrExecutionFailed, err)
		}

		record := reporting.Record{
			Fields: query.Fields,
			Values: make(map[string]any, len(query.Fields)),
		}
		for i, field := range query.Fields {
			record.Values[field] = normalizeValue(values[i], columnTypes[i].DatabaseTypeName())
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExecutionFailed, err)
	}

	return records, nil
}

// normalizeValue converts driver values into canonical response values.
// Temporal values become ISO-8601 strings; []byte results from the MySQL text
// protocol are converted back to their logical type using the column's
// database type. Everything else passes through unchanged.
func normalizeValue(value any, dbType string) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return formatTemporal(v)
	case []byte:
		return decodeTextValue(v, dbType)
	default:
		return value
	}
}

// formatTemporal renders a time as ISO-8601: date-only for midnight-valued
// DATE columns, full timestamp otherwise.
func formatTemporal(t time.Time) string {
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func decodeTextValue(raw []byte, dbType string) any {
	s := string(raw)
	switch dbType {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "BIGINT", "YEAR":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "DECIMAL", "FLOAT", "DOUBLE":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

var _ reporting.Backend = (*Backend)(nil)
