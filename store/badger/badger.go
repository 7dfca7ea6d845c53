// Package badger implements the preference store on top of a Badger
// key-value database. Declared keys are recorded under the schema prefix,
// values under the pref prefix, and change notifications are delivered
// through Badger's native subscription on the pref prefix, so writes by any
// process sharing the database are observed.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"

	"go.hackfix.me/prefsync/crypto"
	"go.hackfix.me/prefsync/store"
)

const (
	schemaPrefix = "schema:"
	prefPrefix   = "pref:"
)

// Badger is a store.Store backed by a Badger database.
type Badger struct {
	db     *badger.DB
	encKey *[32]byte
	logger *slog.Logger
}

var _ store.Store = &Badger{}

// Open opens or creates the Badger database at path.
func Open(path string, opts ...Option) (*Badger, error) {
	s := &Badger{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	bopts := badger.DefaultOptions(path)
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	s.db = db

	return s, nil
}

// Option is a function that configures the Badger store.
type Option func(*Badger) error

// WithEncryptionKey enables encryption at rest of stored values with the
// base58-encoded 32-byte key.
func WithEncryptionKey(keyEnc string) Option {
	return func(s *Badger) error {
		key, err := crypto.DecodeKey(keyEnc)
		if err != nil {
			return fmt.Errorf("invalid encryption key: %w", err)
		}
		s.encKey = key
		return nil
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Badger) error {
		s.logger = logger
		return nil
	}
}

func (s *Badger) Close() error {
	return s.db.Close()
}

// Declare records key in the schema with the given type, seeding a
// type-appropriate default value. Re-declaring a key with the same type is
// a no-op; with a different type it fails, since types are fixed per key.
func (s *Badger) Declare(key string, typ store.Type) error {
	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	item, err := txn.Get([]byte(schemaPrefix + key))
	switch {
	case err == nil:
		var existing store.Type
		err = item.Value(func(val []byte) error {
			existing, err = store.ParseType(string(val))
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
		if existing != typ {
			return fmt.Errorf("%w: key '%s' is already declared as %s",
				store.ErrTypeMismatch, key, existing)
		}
		return nil
	case !errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	if err := txn.Set([]byte(schemaPrefix+key), []byte(typ.String())); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defVal, err := s.sealed([]byte(defaultValue(typ)))
	if err != nil {
		return err
	}
	if err := txn.Set([]byte(prefPrefix+key), defVal); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return nil
}

// Keys returns all declared keys and their types, in key order.
func (s *Badger) Keys() ([]store.Key, error) {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(schemaPrefix)
	keys := []store.Key{}
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		name := strings.TrimPrefix(string(item.Key()), schemaPrefix)

		var typ store.Type
		err := item.Value(func(val []byte) error {
			var perr error
			typ, perr = store.ParseType(string(val))
			return perr
		})
		if err != nil {
			// A corrupt or unknown schema entry shouldn't abort enumeration
			// of the remaining keys.
			s.logger.Warn("skipping invalid schema entry", "key", name, "error", err)
			continue
		}

		keys = append(keys, store.Key{Name: name, Type: typ})
	}

	return keys, nil
}

func (s *Badger) GetInt(key string) (int64, error) {
	raw, err := s.get(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

func (s *Badger) SetInt(key string, value int64) error {
	return s.set(key, []byte(strconv.FormatInt(value, 10)))
}

func (s *Badger) GetBool(key string) (bool, error) {
	raw, err := s.get(key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(string(raw))
}

func (s *Badger) SetBool(key string, value bool) error {
	return s.set(key, []byte(strconv.FormatBool(value)))
}

func (s *Badger) GetString(key string) (string, error) {
	raw, err := s.get(key)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *Badger) SetString(key string, value string) error {
	return s.set(key, []byte(value))
}

// Subscribe routes Badger's change notifications for the pref prefix to
// handler until ctx is canceled. Badger may coalesce rapid successive
// writes into a single delivery.
func (s *Badger) Subscribe(ctx context.Context, handler func(key string)) error {
	match := []pb.Match{{Prefix: []byte(prefPrefix)}}

	go func() {
		err := s.db.Subscribe(ctx, func(kvs *badger.KVList) error {
			for _, kv := range kvs.Kv {
				handler(strings.TrimPrefix(string(kv.Key), prefPrefix))
			}
			return nil
		}, match)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("store subscription ended", "error", err)
		}
	}()

	return nil
}

func (s *Badger) get(key string) ([]byte, error) {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get([]byte(prefPrefix + key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	if s.encKey != nil {
		if val, err = crypto.Open(val, s.encKey); err != nil {
			return nil, err
		}
	}

	return val, nil
}

func (s *Badger) set(key string, value []byte) error {
	value, err := s.sealed(value)
	if err != nil {
		return err
	}

	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := txn.Set([]byte(prefPrefix+key), value); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return nil
}

func (s *Badger) sealed(value []byte) ([]byte, error) {
	if s.encKey == nil {
		return value, nil
	}
	return crypto.Seal(value, s.encKey)
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
