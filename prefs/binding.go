package prefs

import "go.hackfix.me/prefsync/store"

// binding ties one declared key to its cached in-memory value and the store
// accessors for its type. Bindings are created once at startup and live for
// the rest of the process.
type binding struct {
	key    string
	typ    store.Type
	cached any
	read   func() (any, error)
	write  func(value any) error
}

// newBinding returns a binding for key with a type-appropriate default as
// its cached value, or nil if the declared type is unsupported.
func newBinding(key string, typ store.Type, s store.Store) *binding {
	b := &binding{key: key, typ: typ}

	switch typ {
	case store.TypeInt:
		b.cached = int64(0)
		b.read = func() (any, error) { return s.GetInt(key) }
		b.write = func(value any) error { return s.SetInt(key, value.(int64)) }
	case store.TypeBool:
		b.cached = false
		b.read = func() (any, error) { return s.GetBool(key) }
		b.write = func(value any) error { return s.SetBool(key, value.(bool)) }
	case store.TypeString:
		b.cached = ""
		b.read = func() (any, error) { return s.GetString(key) }
		b.write = func(value any) error { return s.SetString(key, value.(string)) }
	default:
		return nil
	}

	return b
}
