// Package sqlite implements the preference store on top of a SQLite
// database. Since SQLite has no cross-process notification primitive,
// change notifications are produced by polling a monotonically increasing
// per-row sequence, which coalesces rapid successive writes.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/glebarez/go-sqlite" // register the 'sqlite' driver

	"go.hackfix.me/prefsync/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const defaultPollInterval = time.Second

// Store is a store.Store backed by a SQLite database.
type Store struct {
	db           *sql.DB
	ctx          context.Context
	logger       *slog.Logger
	pollInterval time.Duration
}

var _ store.Store = &Store{}

// Open opens or creates the SQLite database at path, and applies any
// pending schema migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	s := &Store{
		db:           db,
		ctx:          ctx,
		logger:       slog.Default(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	migrations, err := loadMigrations(migrationsDir)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(ctx, db, migrations, s.logger); err != nil {
		return nil, err
	}

	return s, nil
}

// Option is a function that configures the SQLite store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPollInterval sets how often the change watcher polls for writes made
// by other processes.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Store) {
		s.pollInterval = interval
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Declare records key in the schema with the given type, seeding a
// type-appropriate default value. Re-declaring a key with the same type is
// a no-op; with a different type it fails, since types are fixed per key.
func (s *Store) Declare(key string, typ store.Type) error {
	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO prefs (key, type, value) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING;`,
		key, typ.String(), defaultValue(typ))
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	declared, _, err := s.row(key)
	if err != nil {
		return err
	}
	if declared != typ {
		return fmt.Errorf("%w: key '%s' is already declared as %s",
			store.ErrTypeMismatch, key, declared)
	}

	return nil
}

// Keys returns all declared keys and their types, in key order.
func (s *Store) Keys() ([]store.Key, error) {
	rows, err := s.db.QueryContext(s.ctx, `SELECT key, type FROM prefs ORDER BY key;`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer rows.Close()

	keys := []store.Key{}
	for rows.Next() {
		var name, typName string
		if err := rows.Scan(&name, &typName); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
		typ, err := store.ParseType(typName)
		if err != nil {
			s.logger.Warn("skipping invalid schema entry", "key", name, "error", err)
			continue
		}
		keys = append(keys, store.Key{Name: name, Type: typ})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return keys, nil
}

func (s *Store) GetInt(key string) (int64, error) {
	raw, err := s.get(key, store.TypeInt)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *Store) SetInt(key string, value int64) error {
	return s.set(key, store.TypeInt, strconv.FormatInt(value, 10))
}

func (s *Store) GetBool(key string) (bool, error) {
	raw, err := s.get(key, store.TypeBool)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(raw)
}

func (s *Store) SetBool(key string, value bool) error {
	return s.set(key, store.TypeBool, strconv.FormatBool(value))
}

func (s *Store) GetString(key string) (string, error) {
	return s.get(key, store.TypeString)
}

func (s *Store) SetString(key string, value string) error {
	return s.set(key, store.TypeString, value)
}

// Subscribe polls the prefs table for writes with a sequence higher than
// the last observed one, and routes the changed key names to handler, until
// ctx is canceled.
func (s *Store) Subscribe(ctx context.Context, handler func(key string)) error {
	var lastSeq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT IFNULL(MAX(seq), 0) FROM prefs;`).Scan(&lastSeq)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var err error
				lastSeq, err = s.pollChanges(ctx, lastSeq, handler)
				if err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Warn("failed polling store for changes", "error", err)
				}
			}
		}
	}()

	return nil
}

func (s *Store) pollChanges(
	ctx context.Context, lastSeq int64, handler func(key string),
) (int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, seq FROM prefs WHERE seq > $1 ORDER BY seq;`, lastSeq)
	if err != nil {
		return lastSeq, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			seq int64
		)
		if err := rows.Scan(&key, &seq); err != nil {
			return lastSeq, err
		}
		handler(key)
		if seq > lastSeq {
			lastSeq = seq
		}
	}

	return lastSeq, rows.Err()
}

func (s *Store) get(key string, typ store.Type) (string, error) {
	declared, raw, err := s.row(key)
	if err != nil {
		return "", err
	}
	if declared != typ {
		return "", store.ErrTypeMismatch
	}
	return raw, nil
}

func (s *Store) set(key string, typ store.Type, raw string) error {
	declared, _, err := s.row(key)
	if err != nil {
		return err
	}
	if declared != typ {
		return store.ErrTypeMismatch
	}

	_, err = s.db.ExecContext(s.ctx, `
		UPDATE prefs
		SET value = $1, seq = (SELECT IFNULL(MAX(seq), 0) + 1 FROM prefs)
		WHERE key = $2;`, raw, key)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return nil
}

func (s *Store) row(key string) (store.Type, string, error) {
	var typName, raw string
	err := s.db.QueryRowContext(s.ctx,
		`SELECT type, value FROM prefs WHERE key = $1;`, key).Scan(&typName, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.TypeInvalid, "", store.ErrNotFound
	}
	if err != nil {
		return store.TypeInvalid, "", fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	typ, err := store.ParseType(typName)
	if err != nil {
		return store.TypeInvalid, "", err
	}

	return typ, raw, nil
}

func defaultValue(typ store.Type) string {
	switch typ {
	case store.TypeInt:
		return "0"
	case store.TypeBool:
		return "false"
	}
	return ""
}
