package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
)

func TestQueryRequest_NormalizeDefaults(t *testing.T) {
	req := &QueryRequest{TableName: "daily_sales", Columns: []string{"revenue"}}
	req.Normalize(1000)

	assert.Equal(t, "date", req.DateColumn)
	require.NotNil(t, req.Limit)
	assert.Equal(t, 1000, *req.Limit)
}

func TestQueryRequest_NormalizeCanonicalizesEnums(t *testing.T) {
	req := &QueryRequest{
		TableName:     "daily_sales",
		GroupByPeriod: " Month ",
		Aggregations:  []Aggregation{{Column: "revenue", Function: "sum"}},
	}
	req.Normalize(1000)

	assert.Equal(t, "month", req.GroupByPeriod)
	assert.Equal(t, "SUM", req.Aggregations[0].Function)
}

func TestQueryRequest_Validate(t *testing.T) {
	valid := func() *QueryRequest {
		req := &QueryRequest{
			TableName: "daily_sales",
			Columns:   []string{"date", "revenue"},
			StartDate: "2024-01-01",
			EndDate:   "2024-01-31",
		}
		req.Normalize(1000)
		return req
	}

	t.Run("valid request", func(t *testing.T) {
		require.NoError(t, valid().Validate(10000))
	})

	t.Run("bad table identifier", func(t *testing.T) {
		req := valid()
		req.TableName = "daily-sales"
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidIdentifier)
	})

	t.Run("reserved table name", func(t *testing.T) {
		req := valid()
		req.TableName = "select"
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrReservedWord)
	})

	t.Run("bad column identifier", func(t *testing.T) {
		req := valid()
		req.Columns = []string{"revenue", "1bad"}
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidIdentifier)
	})

	t.Run("injection payload in column", func(t *testing.T) {
		req := valid()
		req.Columns = []string{"revenue'; DROP TABLE users--"}
		err := req.Validate(10000)
		require.Error(t, err)
		// The screen fires before grammar validation; either way it is a 400.
		assert.Equal(t, 400, apperrors.HTTPStatus(err))
	})

	t.Run("unsupported aggregation function", func(t *testing.T) {
		req := valid()
		req.Aggregations = []Aggregation{{Column: "revenue", Function: "MEDIAN"}}
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidRequest)
	})

	t.Run("bad aggregation alias", func(t *testing.T) {
		req := valid()
		req.Aggregations = []Aggregation{{Column: "revenue", Function: "SUM", Alias: "total revenue"}}
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidIdentifier)
	})

	t.Run("unsupported period", func(t *testing.T) {
		req := valid()
		req.GroupByPeriod = "quarter"
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidRequest)
	})

	t.Run("unparseable start date", func(t *testing.T) {
		req := valid()
		req.StartDate = "01/15/2024"
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidRequest)
	})

	t.Run("limit above maximum", func(t *testing.T) {
		req := valid()
		req.Limit = intPtr(10001)
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidRequest)
	})

	t.Run("limit below minimum", func(t *testing.T) {
		req := valid()
		req.Limit = intPtr(-5)
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidRequest)
	})

	t.Run("explicit zero limit", func(t *testing.T) {
		// A caller sending "limit": 0 asked for zero rows; that is out of
		// range, not an invitation to apply the default.
		req := valid()
		req.Limit = intPtr(0)
		req.Normalize(1000)
		assert.ErrorIs(t, req.Validate(10000), apperrors.ErrInvalidRequest)
	})
}

func intPtr(v int) *int { return &v }

func TestDataSource_Validate(t *testing.T) {
	ds := &DataSource{
		Name:      "Daily Sales",
		TableName: "daily_sales",
		ColumnsMetadata: map[string]ColumnMeta{
			"revenue": {Type: "float", Label: "Revenue"},
		},
		IsActive: true,
	}
	require.NoError(t, ds.Validate())

	ds.TableName = "drop"
	assert.ErrorIs(t, ds.Validate(), apperrors.ErrReservedWord)

	ds.TableName = "daily_sales"
	ds.ColumnsMetadata = map[string]ColumnMeta{"bad column": {}}
	assert.ErrorIs(t, ds.Validate(), apperrors.ErrInvalidIdentifier)

	ds.ColumnsMetadata = nil
	ds.Name = ""
	assert.ErrorIs(t, ds.Validate(), apperrors.ErrInvalidRequest)
}

func TestReportTemplate_Validate(t *testing.T) {
	tpl := &ReportTemplate{
		Name: "Morning dashboard",
		Charts: []ChartConfig{
			{ID: "c1", Type: ChartBar, Title: "Revenue", Query: QueryRequest{TableName: "daily_sales"}},
		},
	}
	require.NoError(t, tpl.Validate())

	tpl.Charts[0].Type = "scatter"
	assert.ErrorIs(t, tpl.Validate(), apperrors.ErrInvalidRequest)

	tpl.Charts[0].Type = ChartLine
	tpl.Charts[0].Query.TableName = ""
	assert.ErrorIs(t, tpl.Validate(), apperrors.ErrInvalidRequest)

	tpl.Name = ""
	tpl.Charts = nil
	assert.ErrorIs(t, tpl.Validate(), apperrors.ErrInvalidRequest)
}
