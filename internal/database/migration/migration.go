package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"csvexport/internal/config"
	"csvexport/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

var postgresSteps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_exports",
		SQL: `CREATE TABLE IF NOT EXISTS exports (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  file_name    TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  row_count    INTEGER     NOT NULL CHECK (row_count >= 0),
  column_count INTEGER     NOT NULL CHECK (column_count >= 0),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_exports_file_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_exports_file_name ON exports (file_name);`,
	},
	{
		Name: "create_index_exports_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports (created_at);`,
	},
}

var sqliteSteps = []migrationStep{
	{
		Name: "create_table_exports",
		SQL: `CREATE TABLE IF NOT EXISTS exports (
  id           TEXT    PRIMARY KEY,
  file_name    TEXT    NOT NULL,
  storage_path TEXT    NOT NULL UNIQUE,
  size         INTEGER NOT NULL CHECK (size >= 0),
  content_type TEXT    NOT NULL,
  row_count    INTEGER NOT NULL CHECK (row_count >= 0),
  column_count INTEGER NOT NULL CHECK (column_count >= 0),
  created_at   TEXT    NOT NULL
);`,
	},
	{
		Name: "create_index_exports_file_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_exports_file_name ON exports (file_name);`,
	},
	{
		Name: "create_index_exports_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports (created_at);`,
	},
}

var sentinelQueries = map[string]string{
	config.DriverPostgres: "SELECT to_regclass('public.exports') IS NOT NULL",
	config.DriverSQLite:   "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'exports'",
}

func stepsFor(driver string) ([]migrationStep, string, error) {
	switch driver {
	case config.DriverPostgres, "":
		return postgresSteps, sentinelQueries[config.DriverPostgres], nil
	case config.DriverSQLite:
		return sqliteSteps, sentinelQueries[config.DriverSQLite], nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// EnsureMigrated checks if the 'exports' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, driver string, logger *logging.Logger, dbHost string) error {
	steps, sentinel, err := stepsFor(driver)
	if err != nil {
		return err
	}

	start := time.Now()

	logger.Log(map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		logger.Log(map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Log(map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logger.Log(map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Log(map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logger.Log(map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logger.Log(map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}
