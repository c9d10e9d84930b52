package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
)

func TestColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("daily_sales").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("date").
			AddRow("revenue").
			AddRow("profit"))

	backend := NewBackend(db, zap.NewNop())
	columns, err := backend.Columns(context.Background(), "daily_sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "revenue", "profit"}, columns)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestColumns_QueryErrorIsSchemaUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("daily_sales").
		WillReturnError(errors.New("connection refused"))

	backend := NewBackend(db, zap.NewNop())
	_, err = backend.Columns(context.Background(), "daily_sales")
	assert.ErrorIs(t, err, apperrors.ErrSchemaUnavailable)
}

func TestColumns_MissingTableIsSchemaUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("vanished").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	backend := NewBackend(db, zap.NewNop())
	_, err = backend.Columns(context.Background(), "vanished")
	assert.ErrorIs(t, err, apperrors.ErrSchemaUnavailable)
}
