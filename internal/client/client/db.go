package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/alarmify/internal/client/migrations"
	"github.com/dmitrijs2005/alarmify/internal/client/repositories/alarms"
	"github.com/dmitrijs2005/alarmify/internal/client/repositories/snoozes"
	_ "modernc.org/sqlite"

	"github.com/pressly/goose/v3"
)

// Repositories bundles the SQLite-backed local stores.
type Repositories struct {
	Alarms  alarms.Repository
	Snoozes snoozes.Repository
	DB      *sql.DB
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local SQLite database, migrates it and returns
// the repository set.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Repositories{
		Alarms:  alarms.NewSQLiteRepository(db),
		Snoozes: snoozes.NewSQLiteRepository(db),
		DB:      db,
	}, nil
}
