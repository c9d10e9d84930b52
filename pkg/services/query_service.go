// Package services holds the business logic between handlers and the stores.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/logging"
	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/reporting"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
	"github.com/gridreport/gridreport-engine/pkg/sql"
)

// QueryLimits carries the configured row-limit bounds for query requests.
type QueryLimits struct {
	DefaultLimit int
	MaxLimit     int
}

// QueryResult is the response of a data query: the materialized rows, their
// count, and the table they came from.
type QueryResult struct {
	Data      []reporting.Record `json:"data"`
	Count     int                `json:"count"`
	TableName string             `json:"table_name"`
}

// QueryService validates and executes declarative data queries.
type QueryService interface {
	Execute(ctx context.Context, req *models.QueryRequest) (*QueryResult, error)
}

type queryService struct {
	sources repositories.DataSourceRepository
	backend reporting.Backend
	limits  QueryLimits
	logger  *zap.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(sources repositories.DataSourceRepository, backend reporting.Backend, limits QueryLimits, logger *zap.Logger) QueryService {
	return &queryService{sources: sources, backend: backend, limits: limits, logger: logger}
}

// Execute runs the full query pipeline: request-shape validation, registry
// lookup, live column-membership checks, date-range checks, SQL assembly, and
// execution. Checks run in that order and the first failure wins, so a caller
// never learns about a table's columns before proving the table is visible.
func (s *queryService) Execute(ctx context.Context, req *models.QueryRequest) (*QueryResult, error) {
	req.Normalize(s.limits.DefaultLimit)
	if err := req.Validate(s.limits.MaxLimit); err != nil {
		return nil, err
	}

	source, err := s.sources.GetActiveByTableName(ctx, req.TableName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, req.TableName)
		}
		return nil, fmt.Errorf("failed to resolve data source: %w", err)
	}

	available, err := s.backend.Columns(ctx, source.TableName)
	if err != nil {
		return nil, err
	}

	if err := s.checkMembership(req, available); err != nil {
		return nil, err
	}

	start, _ := req.StartTime()
	end, _ := req.EndTime()
	if start != nil && end != nil && start.After(*end) {
		return nil, apperrors.ErrInvalidDateRange
	}

	if req.DateColumn == "" && (start != nil || end != nil || req.GroupByPeriod != "") {
		return nil, apperrors.ErrMissingDateColumn
	}

	built, err := sql.Build(&sql.Request{
		Table:        source.TableName,
		Columns:      req.Columns,
		DateColumn:   req.DateColumn,
		Start:        start,
		End:          end,
		Limit:        *req.Limit,
		Period:       sql.GroupPeriod(req.GroupByPeriod),
		Aggregations: toBuilderAggregations(req.Aggregations),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("executing data query",
		zap.String("table", source.TableName),
		zap.String("sql", logging.SanitizeQuery(built.SQL)),
		zap.Int("params", len(built.Params)))

	records, err := s.backend.Run(ctx, built)
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		Data:      records,
		Count:     len(records),
		TableName: source.TableName,
	}, nil
}

// checkMembership verifies every referenced column against the live schema:
// the select columns, the aggregation columns, and the date column whenever
// one is named, whether or not a date filter or bucketing uses it. All
// offenders are collected into one error so the caller can fix the whole
// request at once.
func (s *queryService) checkMembership(req *models.QueryRequest, available []string) error {
	var unknown []string
	seen := make(map[string]struct{})
	check := func(col string) {
		if col == "" || containsString(available, col) {
			return
		}
		if _, dup := seen[col]; dup {
			return
		}
		seen[col] = struct{}{}
		unknown = append(unknown, col)
	}

	for _, col := range req.Columns {
		check(col)
	}
	for _, agg := range req.Aggregations {
		check(agg.Column)
	}
	check(req.DateColumn)

	if len(unknown) > 0 {
		return &apperrors.UnknownColumnsError{Columns: unknown, Available: available}
	}
	return nil
}

func toBuilderAggregations(aggs []models.Aggregation) []sql.Aggregation {
	if len(aggs) == 0 {
		return nil
	}
	out := make([]sql.Aggregation, len(aggs))
	for i, agg := range aggs {
		out[i] = sql.Aggregation{
			Column:   agg.Column,
			Function: sql.AggregateFunc(agg.Function),
			Alias:    agg.Alias,
		}
	}
	return out
}

func containsString(s []string, v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

var _ QueryService = (*queryService)(nil)
