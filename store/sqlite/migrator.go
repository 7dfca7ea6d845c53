package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// migration is a single schema migration loaded from the embedded directory.
// Migrations are applied forward only; there is no rollback path.
type migration struct {
	name string
	up   string
}

// loadMigrations reads SQL files from dir and returns migrations sorted by
// name.
func loadMigrations(dir fs.FS) ([]*migration, error) {
	fnameRx := regexp.MustCompile(`^(?P<name>\d{1,}-[a-z0-9-_]+)\.up\.sql$`)
	migrations := []*migration{}

	err := fs.WalkDir(dir, ".", func(path string, d fs.DirEntry, e error) error {
		if e != nil {
			return e
		}
		if !d.Type().IsRegular() || filepath.Ext(d.Name()) != ".sql" {
			return nil
		}

		matched := fnameRx.FindStringSubmatch(d.Name())
		if len(matched) == 0 {
			return nil
		}
		data, err := fs.ReadFile(dir, d.Name())
		if err != nil {
			return err
		}
		migrations = append(migrations, &migration{
			name: matched[fnameRx.SubexpIndex("name")],
			up:   string(data),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].name < migrations[j].name
	})

	return migrations, nil
}

// runMigrations applies all up migrations that haven't been applied yet, in
// name order, and records them in the migration history table.
func runMigrations(
	ctx context.Context, db *sql.DB, migrations []*migration, logger *slog.Logger,
) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migration_history (
			name   VARCHAR(128) NOT NULL,
			time   TIMESTAMP NOT NULL
		);`)
	if err != nil {
		return fmt.Errorf("failed creating migrations schema: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := db.QueryContext(ctx, `SELECT name FROM _migration_history;`)
	if err != nil {
		return fmt.Errorf("failed retrieving migration history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed reading migration history: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}
		if _, err := db.ExecContext(ctx, m.up); err != nil {
			return fmt.Errorf("failed applying migration '%s': %w", m.name, err)
		}
		_, err = db.ExecContext(ctx, `
			INSERT INTO _migration_history (name, time) VALUES ($1, $2);`,
			m.name, time.Now().UTC())
		if err != nil {
			return err
		}
		logger.Debug("applied store migration", "name", m.name)
	}

	return nil
}
