package cli

import (
	"fmt"

	actx "go.hackfix.me/prefsync/app/context"
)

// The Ls command lists declared preferences, their types and current
// values.
type Ls struct{}

// Run the ls command.
func (c *Ls) Run(appCtx *actx.Context) error {
	keys := appCtx.Prefs.Keys()
	if len(keys) == 0 {
		return nil
	}

	data := make([][]string, 0, len(keys))
	for _, key := range keys {
		typ, _ := appCtx.Prefs.Type(key)
		val, _ := appCtx.Prefs.Value(key)
		data = append(data, []string{key, typ.String(), fmt.Sprintf("%v", val)})
	}

	renderTable(appCtx.Stdout, []string{"Key", "Type", "Value"}, data)

	return nil
}
