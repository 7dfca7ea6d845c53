package cli

import (
	actx "go.hackfix.me/prefsync/app/context"
	"go.hackfix.me/prefsync/web/server"
)

// The Serve command starts the web server.
type Serve struct {
	Address string `help:"[host]:port to listen on" default:":2121"`
}

// Run the serve command.
func (c *Serve) Run(appCtx *actx.Context) error {
	srv := server.New(appCtx, c.Address)
	return srv.ListenAndServe()
}
