// Command register-sources seeds the data source registry from a YAML file.
//
// Usage:
//
//	go run ./scripts/register-sources -file seed.yaml
//
// The seed file lists data sources:
//
//	sources:
//	  - name: Daily Sales
//	    table_name: daily_sales
//	    description: Aggregated daily sales figures
//	    is_active: true
//	    columns:
//	      date: {type: date, label: Date}
//	      revenue: {type: decimal, label: Revenue}
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gridreport/gridreport-engine/pkg/apperrors"
	"github.com/gridreport/gridreport-engine/pkg/config"
	"github.com/gridreport/gridreport-engine/pkg/database"
	"github.com/gridreport/gridreport-engine/pkg/logging"
	"github.com/gridreport/gridreport-engine/pkg/models"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
)

type seedFile struct {
	Sources []seedSource `yaml:"sources"`
}

type seedSource struct {
	Name        string                       `yaml:"name"`
	TableName   string                       `yaml:"table_name"`
	Description string                       `yaml:"description"`
	IsActive    bool                         `yaml:"is_active"`
	Columns     map[string]models.ColumnMeta `yaml:"columns"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "register-sources:", err)
		os.Exit(1)
	}
}

func run() error {
	file := flag.String("file", "seed.yaml", "path to the seed file")
	flag.Parse()

	cfg, err := config.Load("dev")
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(seed.Sources) == 0 {
		return fmt.Errorf("seed file lists no sources")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Engine.ConnectionString(),
		MaxConnections: 2,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to engine store: %w", err)
	}
	defer db.Close()

	repo := repositories.NewDataSourceRepository(db)
	for _, src := range seed.Sources {
		ds := &models.DataSource{
			Name:            src.Name,
			TableName:       src.TableName,
			Description:     src.Description,
			ColumnsMetadata: src.Columns,
			IsActive:        src.IsActive,
		}
		if err := ds.Validate(); err != nil {
			return fmt.Errorf("source %q: %w", src.TableName, err)
		}
		if err := repo.Create(ctx, ds); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				logger.Info("source already registered, skipping",
					zap.String("table", src.TableName))
				continue
			}
			return fmt.Errorf("source %q: %w", src.TableName, err)
		}
		logger.Info("source registered",
			zap.String("table", src.TableName),
			zap.String("id", ds.ID.String()))
	}

	return nil
}
