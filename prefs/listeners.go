package prefs

import "log/slog"

// Listener is notified with the name of the preference whose cached value
// was refreshed. Listeners are deduplicated by interface identity, so they
// should be registered as pointers.
type Listener interface {
	PrefChanged(key string)
}

// ListenerFunc adapts a plain function to the Listener interface. The
// method has a pointer receiver so registrations are identified by the
// address of the ListenerFunc value.
type ListenerFunc func(key string)

// PrefChanged implements Listener.
func (f *ListenerFunc) PrefChanged(key string) {
	(*f)(key)
}

// listenerRegistry is an ordered collection of change listeners.
type listenerRegistry struct {
	listeners []Listener
	logger    *slog.Logger
}

// add appends l if it isn't already registered.
func (r *listenerRegistry) add(l Listener) {
	for _, existing := range r.listeners {
		if existing == l {
			return
		}
	}
	r.listeners = append(r.listeners, l)
}

// remove drops l if it is registered, and is a no-op otherwise.
func (r *listenerRegistry) remove(l Listener) {
	for i, existing := range r.listeners {
		if existing == l {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// dispatch invokes the given listeners in registration order. A failing
// listener must not prevent the remaining ones from being invoked, and must
// not propagate to the caller of Set or a refresh.
func (r *listenerRegistry) dispatch(listeners []Listener, key string) {
	for _, l := range listeners {
		r.notify(l, key)
	}
}

func (r *listenerRegistry) notify(l Listener, key string) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("preference listener failed", "key", key, "panic", p)
		}
	}()
	l.PrefChanged(key)
}
