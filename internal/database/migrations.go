package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"findhome/migrations"
)

// migrationDriver is the database/sql driver registered by lib/pq
const migrationDriver = "postgres"

// openMigrationDB opens a plain database/sql connection for goose. It goes
// through lib/pq rather than the pgx pool gorm holds.
func openMigrationDB(dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open(migrationDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}
	return sqlDB, nil
}

func prepareGoose() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

// ApplySQLMigrations runs the embedded goose migrations against dsn. They add
// the search indexes and cascades the ORM schema sync does not create, so
// they run after Migrate.
func ApplySQLMigrations(ctx context.Context, dsn string) error {
	defer goose.SetBaseFS(nil)
	if err := prepareGoose(); err != nil {
		return err
	}

	sqlDB, err := openMigrationDB(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}

	log.Info().Msg("SQL migrations applied")
	return nil
}

// SQLMigrationStatus logs the state of every embedded migration
func SQLMigrationStatus(ctx context.Context, dsn string) error {
	defer goose.SetBaseFS(nil)
	if err := prepareGoose(); err != nil {
		return err
	}

	sqlDB, err := openMigrationDB(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return goose.StatusContext(ctx, sqlDB, ".")
}
