// Package app wires the preference store, the live preference facade and
// the command line interface into a runnable application.
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/prefsync/app/cli"
	actx "go.hackfix.me/prefsync/app/context"
	aerrors "go.hackfix.me/prefsync/app/errors"
	"go.hackfix.me/prefsync/prefs"
)

// App is the application.
type App struct {
	ctx *actx.Context

	Exit func(int)
}

// New initializes a new application.
func New(opts ...Option) *App {
	defaultCtx := &actx.Context{
		Ctx:    context.Background(),
		FS:     memoryfs.New(),
		Logger: slog.Default(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	app := &App{ctx: defaultCtx, Exit: os.Exit}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// Run parses args, materializes the live preferences and executes the
// selected command.
func (app *App) Run(args []string) error {
	c := &cli.CLI{}
	if err := c.Setup(args); err != nil {
		return err
	}

	if app.ctx.Store == nil {
		if err := app.openStore(c); err != nil {
			return err
		}
	}

	// A fresh facade per run, so keys declared by a previous run are
	// enumerated.
	p := prefs.New(app.ctx.Store, prefs.WithLogger(app.ctx.Logger))
	if err := p.Startup(app.ctx.Ctx); err != nil {
		return err
	}
	app.ctx.Prefs = p

	return c.Ctx.Run(app.ctx)
}

// FatalIfErrorf terminates the application with an error message if err is
// not nil.
func (app *App) FatalIfErrorf(err error) {
	if err == nil {
		return
	}

	args := []any{}
	var hintErr aerrors.WithHint
	if errors.As(err, &hintErr) && hintErr.Hint() != "" {
		args = append(args, "hint", hintErr.Hint())
	}
	app.ctx.Logger.Error(err.Error(), args...)
	app.Exit(1)
}
