package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"go.hackfix.me/prefsync/app"
	actx "go.hackfix.me/prefsync/app/context"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(
		app.WithContext(ctx),
		app.WithFDs(os.Stdin, os.Stdout, colorable.NewColorable(os.Stderr)),
		app.WithFS(osfs.New()),
		app.WithEnv(osEnv{}),
		app.WithLogger(isatty.IsTerminal(os.Stderr.Fd())),
	)

	a.FatalIfErrorf(a.Run(os.Args[1:]))
}

type osEnv struct{}

var _ actx.Environment = &osEnv{}

func (e osEnv) Get(key string) string {
	return os.Getenv(key)
}

func (e osEnv) Set(key, val string) error {
	return os.Setenv(key, val)
}
