package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/lmittmann/tint"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/prefsync/app/cli"
	actx "go.hackfix.me/prefsync/app/context"
	aerrors "go.hackfix.me/prefsync/app/errors"
	"go.hackfix.me/prefsync/store"
	"go.hackfix.me/prefsync/store/badger"
	"go.hackfix.me/prefsync/store/sqlite"
)

// Option is a function that allows configuring the application.
type Option func(*App)

// WithContext sets the main application context.
func WithContext(ctx context.Context) Option {
	return func(app *App) {
		app.ctx.Ctx = ctx
	}
}

// WithEnv sets the process environment used by the application.
func WithEnv(env actx.Environment) Option {
	return func(app *App) {
		app.ctx.Env = env
	}
}

// WithExit sets the function that stops the application.
func WithExit(fn func(int)) Option {
	return func(app *App) {
		app.Exit = fn
	}
}

// WithFDs sets the file descriptors used by the application.
func WithFDs(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *App) {
		app.ctx.Stdin = stdin
		app.ctx.Stdout = stdout
		app.ctx.Stderr = stderr
	}
}

// WithFS sets the filesystem used by the application.
func WithFS(fs vfs.FileSystem) Option {
	return func(app *App) {
		app.ctx.FS = fs
	}
}

// WithLogger initializes the logger used by the application.
func WithLogger(isStderrTTY bool) Option {
	return func(app *App) {
		logger := slog.New(
			tint.NewHandler(app.ctx.Stderr, &tint.Options{
				Level:      slog.LevelInfo,
				NoColor:    !isStderrTTY,
				TimeFormat: "2006-01-02 15:04:05.000",
			}),
		)
		app.ctx.Logger = logger
		slog.SetDefault(logger)
	}
}

// WithStore sets the preference store used by the application, instead of
// opening one from the CLI flags.
func WithStore(s store.Store) Option {
	return func(app *App) {
		app.ctx.Store = s
	}
}

// openStore opens the persistent preference store selected by the CLI
// flags.
func (app *App) openStore(c *cli.CLI) error {
	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(xdg.DataHome, "prefsync")
	}
	if err := app.ctx.FS.MkdirAll(dataDir, 0o700); err != nil {
		return aerrors.NewRuntimeError("failed creating data directory", err, "")
	}

	switch c.Backend {
	case "sqlite":
		s, err := sqlite.Open(app.ctx.Ctx, filepath.Join(dataDir, "prefs.db"),
			sqlite.WithLogger(app.ctx.Logger))
		if err != nil {
			return aerrors.NewRuntimeError("failed opening preference store", err, "")
		}
		app.ctx.Store = s
	default:
		storePath := filepath.Join(dataDir, "store")
		if err := app.ctx.FS.MkdirAll(storePath, 0o700); err != nil {
			return aerrors.NewRuntimeError("failed creating store directory", err, "")
		}
		opts := []badger.Option{badger.WithLogger(app.ctx.Logger)}
		if c.EncryptionKey != "" {
			opts = append(opts, badger.WithEncryptionKey(c.EncryptionKey))
		}
		s, err := badger.Open(storePath, opts...)
		if err != nil {
			return aerrors.NewRuntimeError("failed opening preference store", err,
				"Make sure no other prefsync process has the store locked.")
		}
		app.ctx.Store = s
	}

	return nil
}
