package cli

import (
	"fmt"

	actx "go.hackfix.me/prefsync/app/context"
	"go.hackfix.me/prefsync/prefs"
)

// The Watch command prints preference changes as they happen, until
// interrupted.
type Watch struct{}

// Run the watch command.
func (c *Watch) Run(appCtx *actx.Context) error {
	lf := prefs.ListenerFunc(func(key string) {
		val, _ := appCtx.Prefs.Value(key)
		fmt.Fprintf(appCtx.Stdout, "%s = %v\n", key, val)
	})
	appCtx.Prefs.AddListener(&lf)
	defer appCtx.Prefs.RemoveListener(&lf)

	<-appCtx.Ctx.Done()

	return nil
}
