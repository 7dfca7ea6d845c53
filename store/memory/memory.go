// Package memory implements an in-process preference store. It is used as a
// throwaway backend and by tests, which can simulate another process writing
// to the store via WriteExternal.
package memory

import (
	"context"
	"strconv"
	"sync"

	"go.hackfix.me/prefsync/store"
)

// Store is an in-memory store.Store implementation.
type Store struct {
	mu      sync.Mutex
	types   map[string]store.Type
	order   []string // declaration order, for stable Keys output
	values  map[string]string
	handler func(key string)
	err     error // when set, all reads and writes fail with it
}

var _ store.Store = &Store{}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		types:  make(map[string]store.Type),
		values: make(map[string]string),
	}
}

// Close implements store.Store. It discards the change handler.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = nil
	return nil
}

// Declare adds key to the schema with the given type, seeding a
// type-appropriate default value.
func (s *Store) Declare(key string, typ store.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.types[key]; ok {
		if existing != typ {
			return store.ErrTypeMismatch
		}
		return nil
	}
	s.types[key] = typ
	s.order = append(s.order, key)
	s.values[key] = defaultValue(typ)
	return nil
}

// Keys returns the declared schema in declaration order.
func (s *Store) Keys() ([]store.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	keys := make([]store.Key, 0, len(s.order))
	for _, name := range s.order {
		keys = append(keys, store.Key{Name: name, Type: s.types[name]})
	}
	return keys, nil
}

func (s *Store) GetInt(key string) (int64, error) {
	raw, err := s.get(key, store.TypeInt)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *Store) SetInt(key string, value int64) error {
	return s.set(key, store.TypeInt, strconv.FormatInt(value, 10))
}

func (s *Store) GetBool(key string) (bool, error) {
	raw, err := s.get(key, store.TypeBool)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(raw)
}

func (s *Store) SetBool(key string, value bool) error {
	return s.set(key, store.TypeBool, strconv.FormatBool(value))
}

func (s *Store) GetString(key string) (string, error) {
	return s.get(key, store.TypeString)
}

func (s *Store) SetString(key string, value string) error {
	return s.set(key, store.TypeString, value)
}

// Subscribe registers the change handler. Only a single handler is
// supported; registering a new one replaces the previous one.
func (s *Store) Subscribe(ctx context.Context, handler func(key string)) error {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return s.err
	}
	s.handler = handler
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.handler = nil
		s.mu.Unlock()
	}()

	return nil
}

// WriteExternal stores a raw value and synchronously invokes the change
// handler, simulating a write by another process sharing the store.
func (s *Store) WriteExternal(key, raw string) {
	s.mu.Lock()
	s.values[key] = raw
	handler := s.handler
	s.mu.Unlock()
	if handler != nil {
		handler(key)
	}
}

// FailWith makes all subsequent operations fail with err. Passing nil
// restores normal operation.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) get(key string, typ store.Type) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	declared, ok := s.types[key]
	if !ok {
		return "", store.ErrNotFound
	}
	if declared != typ {
		return "", store.ErrTypeMismatch
	}
	return s.values[key], nil
}

func (s *Store) set(key string, typ store.Type, raw string) error {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return s.err
	}
	declared, ok := s.types[key]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if declared != typ {
		s.mu.Unlock()
		return store.ErrTypeMismatch
	}
	s.values[key] = raw
	handler := s.handler
	s.mu.Unlock()

	// The store echoes local writes back through the subscription, like a
	// real backend would.
	if handler != nil {
		handler(key)
	}
	return nil
}

func defaultValue(typ store.Type) string {
	switch typ {
	case store.TypeInt:
		return "0"
	case store.TypeBool:
		return "false"
	}
	return ""
}
