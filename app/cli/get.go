package cli

import (
	"fmt"

	actx "go.hackfix.me/prefsync/app/context"
)

// The Get command prints the value of a preference.
type Get struct {
	Key string `arg:"" help:"The unique key that identifies the preference."`
}

// Run the get command.
func (c *Get) Run(appCtx *actx.Context) error {
	val, ok := appCtx.Prefs.Value(c.Key)
	if !ok {
		return fmt.Errorf("preference '%s' is not declared", c.Key)
	}

	fmt.Fprintf(appCtx.Stdout, "%v\n", val)

	return nil
}
