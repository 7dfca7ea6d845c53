package cli

import (
	actx "go.hackfix.me/prefsync/app/context"
)

// The Set command sets the value of a preference.
type Set struct {
	Key   string `arg:"" help:"The unique key that identifies the preference."`
	Value string `arg:"" help:"The value, parsed according to the key's declared type."`
}

// Run the set command.
func (c *Set) Run(appCtx *actx.Context) error {
	return appCtx.Prefs.SetValue(c.Key, c.Value)
}
