package migration

import (
	"context"
	"errors"
	"fmt"

	"neuromatch/internal/database"
)

// Run applies all pending schema migrations in order. Each migration runs in
// its own transaction; the applied version is recorded alongside the DDL so
// a crashed run resumes cleanly.
func Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("nil db")
	}

	if _, err := db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current := 0
	row := db.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}

	return nil
}

func apply(ctx context.Context, db database.DB, m migrationStep) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type migrationStep struct {
	version    int
	statements []string
}
