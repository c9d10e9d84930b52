package sql

import (
	"strconv"
	"strings"
	"time"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
)

// GroupPeriod is a date-bucketing granularity for aggregated queries.
type GroupPeriod string

const (
	PeriodDay   GroupPeriod = "day"
	PeriodWeek  GroupPeriod = "week"
	PeriodMonth GroupPeriod = "month"
	PeriodYear  GroupPeriod = "year"
)

// Valid reports whether p is a recognized bucketing period.
func (p GroupPeriod) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// AggregateFunc is one of the closed set of supported aggregation functions.
type AggregateFunc string

const (
	FuncSum   AggregateFunc = "SUM"
	FuncAvg   AggregateFunc = "AVG"
	FuncCount AggregateFunc = "COUNT"
	FuncMin   AggregateFunc = "MIN"
	FuncMax   AggregateFunc = "MAX"
)

// Valid reports whether f is a supported aggregation function.
func (f AggregateFunc) Valid() bool {
	switch f {
	case FuncSum, FuncAvg, FuncCount, FuncMin, FuncMax:
		return true
	}
	return false
}

// Aggregation applies Function to Column, naming the result Alias (or a
// derived "<func>_<column>" name when Alias is empty).
type Aggregation struct {
	Column   string
	Function AggregateFunc
	Alias    string
}

// OutputField returns the result field name for the aggregation.
func (a Aggregation) OutputField() string {
	if a.Alias != "" {
		return a.Alias
	}
	return strings.ToLower(string(a.Function)) + "_" + a.Column
}

// Request is a fully validated query request. Every identifier it carries has
// passed ValidateIdentifier and live-schema membership before Build is called.
type Request struct {
	Table        string
	Columns      []string
	DateColumn   string
	Start        *time.Time
	End          *time.Time
	Limit        int
	Period       GroupPeriod // empty when no bucketing requested
	Aggregations []Aggregation
}

// ResolvedQuery is an immutable build result: SQL text with ? placeholders
// for every literal value, the ordered parameter list, and the output field
// names in select-list order.
type ResolvedQuery struct {
	SQL    string
	Params []any
	Fields []string
}

// dateParamLayout is how date bounds are rendered into the parameter list.
const dateParamLayout = "2006-01-02"

// bucketExpr returns the dialect expression that truncates column to the
// period. Month needs an explicit year-month format because plain date
// truncation would still carry a day component; week folds ISO year and week
// into one key so week 1 of different years cannot collide.
func bucketExpr(column string, period GroupPeriod) string {
	quoted := QuoteIdentifier(column)
	switch period {
	case PeriodWeek:
		return "YEARWEEK(" + quoted + ", 1)"
	case PeriodMonth:
		return "DATE_FORMAT(" + quoted + ", '%Y-%m')"
	case PeriodYear:
		return "YEAR(" + quoted + ")"
	default:
		return "DATE(" + quoted + ")"
	}
}

// BucketAlias returns the output field name for a date bucket on column.
func BucketAlias(column string, period GroupPeriod) string {
	return column + "_" + string(period)
}

// Build composes a parameterized SELECT from a validated request.
//
// Select-list order defines output field order: the date bucket (when a
// period is set), then plain columns in request order, then aggregations in
// request order. Date bounds become inclusive WHERE predicates with their
// values pushed onto the parameter list; GROUP BY is emitted only when
// aggregations are present, repeating the bucket expression verbatim rather
// than referencing its alias. The row limit is emitted as a literal because
// it is an already-bounded integer, never attacker-controlled text.
//
// The only failure mode is an empty select list; everything else is the
// validator's job.
func Build(req *Request) (*ResolvedQuery, error) {
	selects := make([]string, 0, 1+len(req.Columns)+len(req.Aggregations))
	fields := make([]string, 0, cap(selects))

	if req.Period != "" {
		alias := BucketAlias(req.DateColumn, req.Period)
		selects = append(selects, bucketExpr(req.DateColumn, req.Period)+" AS "+QuoteIdentifier(alias))
		fields = append(fields, alias)
	}
	for _, col := range req.Columns {
		selects = append(selects, QuoteIdentifier(col))
		fields = append(fields, col)
	}
	for _, agg := range req.Aggregations {
		field := agg.OutputField()
		expr := string(agg.Function) + "(" + QuoteIdentifier(agg.Column) + ")"
		selects = append(selects, expr+" AS "+QuoteIdentifier(field))
		fields = append(fields, field)
	}

	if len(selects) == 0 {
		return nil, apperrors.ErrEmptySelectList
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(QuoteIdentifier(req.Table))

	params := make([]any, 0, 2)
	var predicates []string
	if req.Start != nil {
		predicates = append(predicates, QuoteIdentifier(req.DateColumn)+" >= ?")
		params = append(params, req.Start.Format(dateParamLayout))
	}
	if req.End != nil {
		predicates = append(predicates, QuoteIdentifier(req.DateColumn)+" <= ?")
		params = append(params, req.End.Format(dateParamLayout))
	}
	if len(predicates) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(predicates, " AND "))
	}

	if len(req.Aggregations) > 0 {
		groupKeys := make([]string, 0, 1+len(req.Columns))
		if req.Period != "" {
			groupKeys = append(groupKeys, bucketExpr(req.DateColumn, req.Period))
		}
		for _, col := range req.Columns {
			groupKeys = append(groupKeys, QuoteIdentifier(col))
		}
		if len(groupKeys) > 0 {
			sb.WriteString(" GROUP BY ")
			sb.WriteString(strings.Join(groupKeys, ", "))
		}
	}

	if req.Period != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(QuoteIdentifier(BucketAlias(req.DateColumn, req.Period)))
		sb.WriteString(" ASC")
	} else if req.DateColumn != "" && contains(req.Columns, req.DateColumn) {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(QuoteIdentifier(req.DateColumn))
		sb.WriteString(" ASC")
	}

	sb.WriteString(" LIMIT ")
	sb.WriteString(strconv.Itoa(req.Limit))

	return &ResolvedQuery{SQL: sb.String(), Params: params, Fields: fields}, nil
}

func contains(s []string, v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}
