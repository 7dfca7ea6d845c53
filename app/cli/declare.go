package cli

import (
	"strconv"

	actx "go.hackfix.me/prefsync/app/context"
	aerrors "go.hackfix.me/prefsync/app/errors"
	"go.hackfix.me/prefsync/store"
)

// The Declare command adds a preference key to the store's schema.
type Declare struct {
	Key     string `arg:"" help:"The unique key that identifies the preference."`
	Type    string `arg:"" enum:"int,bool,string" help:"The value type of the preference."`
	Default string `arg:"" optional:"" help:"An optional initial value."`
}

// Run the declare command.
func (c *Declare) Run(appCtx *actx.Context) error {
	typ, err := store.ParseType(c.Type)
	if err != nil {
		return err
	}

	if err := appCtx.Store.Declare(c.Key, typ); err != nil {
		return aerrors.NewRuntimeError("failed declaring preference", err,
			"The type of a declared key cannot be changed.")
	}

	if c.Default != "" {
		if err := setRaw(appCtx.Store, c.Key, typ, c.Default); err != nil {
			return aerrors.NewRuntimeError("failed setting initial value", err, "")
		}
	}

	return nil
}

// setRaw writes a raw value to the store with the setter matching the key's
// declared type. It goes through the store directly since the facade only
// materializes keys declared before its startup.
func setRaw(s store.Store, key string, typ store.Type, raw string) error {
	switch typ {
	case store.TypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		return s.SetInt(key, v)
	case store.TypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		return s.SetBool(key, v)
	}
	return s.SetString(key, raw)
}
