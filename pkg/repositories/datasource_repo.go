// Package repositories provides engine store data access over pgx.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/database"
	"github.com/gridreport/gridreport-engine/pkg/models"
)

// DataSourceRepository defines data access for registered data sources.
type DataSourceRepository interface {
	Create(ctx context.Context, ds *models.DataSource) error
	Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error)
	GetActiveByTableName(ctx context.Context, tableName string) (*models.DataSource, error)
	List(ctx context.Context, activeOnly *bool) ([]*models.DataSource, error)
	Update(ctx context.Context, ds *models.DataSource) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type dataSourceRepository struct {
	db *database.DB
}

// NewDataSourceRepository creates a new data source repository.
func NewDataSourceRepository(db *database.DB) DataSourceRepository {
	return &dataSourceRepository{db: db}
}

const dataSourceColumns = `id, name, table_name, description, columns_metadata, is_active, created_at, updated_at`

func (r *dataSourceRepository) Create(ctx context.Context, ds *models.DataSource) error {
	if ds.ID == uuid.Nil {
		ds.ID = uuid.New()
	}
	now := time.Now()
	ds.CreatedAt = now
	ds.UpdatedAt = now

	metadata, err := json.Marshal(ds.ColumnsMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal columns_metadata: %w", err)
	}

	query := `
		INSERT INTO data_sources (id, name, table_name, description, columns_metadata, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		ds.ID,
		ds.Name,
		ds.TableName,
		ds.Description,
		metadata,
		ds.IsActive,
		ds.CreatedAt,
		ds.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: table %q is already registered", apperrors.ErrConflict, ds.TableName)
		}
		return fmt.Errorf("failed to create data source: %w", err)
	}

	return nil
}

func (r *dataSourceRepository) Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	query := `SELECT ` + dataSourceColumns + ` FROM data_sources WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetActiveByTableName resolves a table name against the whitelist. Inactive
// registrations are invisible here, matching the query path's view of the
// registry.
func (r *dataSourceRepository) GetActiveByTableName(ctx context.Context, tableName string) (*models.DataSource, error) {
	query := `SELECT ` + dataSourceColumns + ` FROM data_sources WHERE table_name = $1 AND is_active = true`
	return r.scanOne(r.db.QueryRow(ctx, query, tableName))
}

func (r *dataSourceRepository) List(ctx context.Context, activeOnly *bool) ([]*models.DataSource, error) {
	query := `SELECT ` + dataSourceColumns + ` FROM data_sources`
	args := []any{}
	if activeOnly != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *activeOnly)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.DataSource
	for rows.Next() {
		ds, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate data sources: %w", err)
	}

	return sources, nil
}

func (r *dataSourceRepository) Update(ctx context.Context, ds *models.DataSource) error {
	ds.UpdatedAt = time.Now()

	metadata, err := json.Marshal(ds.ColumnsMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal columns_metadata: %w", err)
	}

	query := `
		UPDATE data_sources
		SET name = $2, table_name = $3, description = $4, columns_metadata = $5, is_active = $6, updated_at = $7
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		ds.ID,
		ds.Name,
		ds.TableName,
		ds.Description,
		metadata,
		ds.IsActive,
		ds.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: table %q is already registered", apperrors.ErrConflict, ds.TableName)
		}
		return fmt.Errorf("failed to update data source: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *dataSourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM data_sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete data source: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *dataSourceRepository) scanOne(row pgx.Row) (*models.DataSource, error) {
	var ds models.DataSource
	var metadata []byte

	err := row.Scan(
		&ds.ID,
		&ds.Name,
		&ds.TableName,
		&ds.Description,
		&metadata,
		&ds.IsActive,
		&ds.CreatedAt,
		&ds.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan data source: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &ds.ColumnsMetadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal columns_metadata: %w", err)
		}
	}

	return &ds, nil
}

var _ DataSourceRepository = (*dataSourceRepository)(nil)
