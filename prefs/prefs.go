// Package prefs exposes the typed preferences declared in a persistent
// store as live in-memory values. Reads are served from an in-memory cache
// and never touch the store; writes go through to the store and notify
// registered listeners; external writes to the store are observed through
// its change subscription and refresh the cache.
//
// No store or listener failure ever escapes a preference read or write.
// Failures are reported through the logger, and the in-memory value is
// treated as leading: a write that fails to persist still updates the cache
// and notifies listeners.
package prefs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"go.hackfix.me/prefsync/store"
)

// Prefs is the live preference facade over a store.
type Prefs struct {
	store  store.Store
	logger *slog.Logger

	mu        sync.Mutex
	bindings  map[string]*binding
	listeners *listenerRegistry
	started   bool

	// guard counts local writes in flight. While it is non-zero, change
	// notifications from the store are dropped: the Set path has already
	// updated the cache and notified listeners, so handling the store's
	// echo of that same write would dispatch a duplicate notification.
	// A counter instead of a boolean flag keeps suppression correct when a
	// listener performs another Set during dispatch.
	guard atomic.Int32
}

// New returns a facade over s. No keys are materialized until Startup is
// called.
func New(s store.Store, opts ...Option) *Prefs {
	p := &Prefs{
		store:    s,
		logger:   slog.Default(),
		bindings: make(map[string]*binding),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.listeners = &listenerRegistry{logger: p.logger}

	return p
}

// Option is a function that configures the facade.
type Option func(*Prefs)

// WithLogger sets the logger used to report non-fatal failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prefs) {
		p.logger = logger
	}
}

// Startup enumerates the store's declared keys, materializes a live binding
// for each supported one, and subscribes to the store's change
// notifications. Per-key read failures are reported and the type default is
// retained; a subscription setup failure is reported and the facade
// operates degraded, without observing external changes. Only a failure to
// enumerate the schema itself is returned.
func (p *Prefs) Startup(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil
	}

	keys, err := p.store.Keys()
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed enumerating declared keys: %w", err)
	}

	for _, k := range keys {
		b := newBinding(k.Name, k.Type, p.store)
		if b == nil {
			p.logger.Debug("skipping key with unsupported type", "key", k.Name)
			continue
		}
		if v, err := b.read(); err != nil {
			p.logger.Warn("failed reading initial preference value",
				"key", k.Name, "error", err)
		} else {
			b.cached = v
		}
		p.bindings[k.Name] = b
	}
	p.started = true
	p.mu.Unlock()

	if err := p.store.Subscribe(ctx, p.refresh); err != nil {
		p.logger.Warn("failed subscribing to store changes;"+
			" external changes will not be observed", "error", err)
	}

	return nil
}

// Shutdown is reserved for future cleanup. The store subscription is
// released by canceling the context given to Startup.
func (p *Prefs) Shutdown() error {
	return nil
}

// Int returns the cached value of an int preference, or 0 if the key isn't
// declared as one.
func (p *Prefs) Int(key string) int64 {
	if v, ok := p.get(key, store.TypeInt).(int64); ok {
		return v
	}
	return 0
}

// Bool returns the cached value of a bool preference, or false if the key
// isn't declared as one.
func (p *Prefs) Bool(key string) bool {
	if v, ok := p.get(key, store.TypeBool).(bool); ok {
		return v
	}
	return false
}

// String returns the cached value of a string preference, or "" if the key
// isn't declared as one.
func (p *Prefs) String(key string) string {
	if v, ok := p.get(key, store.TypeString).(string); ok {
		return v
	}
	return ""
}

// SetInt sets the value of an int preference.
func (p *Prefs) SetInt(key string, value int64) {
	p.set(key, store.TypeInt, value)
}

// SetBool sets the value of a bool preference.
func (p *Prefs) SetBool(key string, value bool) {
	p.set(key, store.TypeBool, value)
}

// SetString sets the value of a string preference.
func (p *Prefs) SetString(key string, value string) {
	p.set(key, store.TypeString, value)
}

// Keys returns the names of all materialized preferences, sorted.
func (p *Prefs) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.bindings))
	for key := range p.bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Type returns the declared type of key, and whether key is materialized.
func (p *Prefs) Type(key string) (store.Type, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bindings[key]
	if !ok {
		return store.TypeInvalid, false
	}
	return b.typ, true
}

// Value returns the cached value of key, and whether key is materialized.
func (p *Prefs) Value(key string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bindings[key]
	if !ok {
		return nil, false
	}
	return b.cached, true
}

// SetValue parses raw according to the key's declared type and sets it.
// Unlike the typed setters, it returns an error for unknown keys and
// unparsable values, since its callers (CLI, web API) relay user input.
// Store write failures still never escape.
func (p *Prefs) SetValue(key, raw string) error {
	typ, ok := p.Type(key)
	if !ok {
		return fmt.Errorf("preference '%s' is not declared", key)
	}

	switch typ {
	case store.TypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("preference '%s' expects an int value: %w", key, err)
		}
		p.SetInt(key, v)
	case store.TypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("preference '%s' expects a bool value: %w", key, err)
		}
		p.SetBool(key, v)
	case store.TypeString:
		p.SetString(key, raw)
	}

	return nil
}

// AddListener registers l to be notified of preference changes. Adding an
// already registered listener is a no-op.
func (p *Prefs) AddListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners.add(l)
}

// RemoveListener unregisters l. Removing an unregistered listener is a
// no-op.
func (p *Prefs) RemoveListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners.remove(l)
}

func (p *Prefs) get(key string, typ store.Type) any {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bindings[key]
	if !ok || b.typ != typ {
		p.logger.Warn("read of unknown preference", "key", key, "type", typ)
		return nil
	}
	return b.cached
}

// set implements the local write path: no-op if the value is unchanged,
// otherwise raise the guard, write through to the store, update the cache,
// dispatch listeners, and lower the guard. The cache is updated even if the
// store write fails; persistence is best effort and the in-memory value
// leads.
func (p *Prefs) set(key string, typ store.Type, value any) {
	p.mu.Lock()
	b, ok := p.bindings[key]
	if !ok || b.typ != typ {
		p.mu.Unlock()
		p.logger.Warn("write to unknown preference", "key", key, "type", typ)
		return
	}
	if b.cached == value {
		p.mu.Unlock()
		return
	}

	p.guard.Add(1)
	defer p.guard.Add(-1) // lowered after dispatch

	// Unlock via defer so a store write that panics, in violation of the
	// Store contract, doesn't leave the facade locked.
	var listeners []Listener
	func() {
		defer p.mu.Unlock()
		if err := b.write(value); err != nil {
			p.logger.Error("failed persisting preference", "key", key, "error", err)
		}
		b.cached = value
		listeners = p.snapshotListeners()
	}()

	p.listeners.dispatch(listeners, key)
}

// refresh re-reads key from the store and dispatches listeners. It is the
// store subscription handler. Notifications are dropped while a local write
// is in flight, and a read failure retains the previous cached value.
func (p *Prefs) refresh(key string) {
	if p.guard.Load() > 0 {
		return
	}

	p.mu.Lock()
	b, ok := p.bindings[key]
	if !ok {
		p.mu.Unlock()
		return
	}
	v, err := b.read()
	if err != nil {
		p.mu.Unlock()
		p.logger.Warn("failed refreshing preference from store",
			"key", key, "error", err)
		return
	}
	b.cached = v
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	p.listeners.dispatch(listeners, key)
}

// snapshotListeners must be called with p.mu held. Dispatch happens outside
// the lock so listeners can call back into the facade.
func (p *Prefs) snapshotListeners() []Listener {
	out := make([]Listener, len(p.listeners.listeners))
	copy(out, p.listeners.listeners)
	return out
}
