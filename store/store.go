// Package store defines the contract all preference store backends
// implement: typed access to persisted values, enumeration of the declared
// key schema, and a change-notification subscription.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Type is the declared value type of a preference key. It is fixed for the
// lifetime of the key and determined by the store's schema, not by runtime
// values.
type Type int

// Supported preference types.
const (
	TypeInvalid Type = iota
	TypeInt
	TypeBool
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	}
	return "invalid"
}

// ParseType converts a type name as stored in the schema to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "bool":
		return TypeBool, nil
	case "string":
		return TypeString, nil
	}
	return TypeInvalid, fmt.Errorf("unknown preference type '%s'", s)
}

// Key is a declared schema entry: a unique name and its fixed value type.
type Key struct {
	Name string
	Type Type
}

// Sentinel errors returned by store backends.
var (
	// ErrUnavailable indicates the underlying persistence could not service
	// a read or write.
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound indicates the key is not declared in the store's schema.
	ErrNotFound = errors.New("key not found")
	// ErrTypeMismatch indicates an operation conflicts with the key's
	// declared type.
	ErrTypeMismatch = errors.New("declared type mismatch")
)

// Store defines the operations preference store backends must implement.
//
// Subscribe registers a handler that receives the name of any key whose
// value changed, including changes made by other processes sharing the
// store. Notifications are delivered asynchronously and may coalesce rapid
// successive changes into a single delivery. The subscription is released
// when ctx is canceled.
type Store interface {
	Close() error

	Declare(key string, typ Type) error
	Keys() ([]Key, error)

	GetInt(key string) (int64, error)
	SetInt(key string, value int64) error
	GetBool(key string) (bool, error)
	SetBool(key string, value bool) error
	GetString(key string) (string, error)
	SetString(key string, value string) error

	Subscribe(ctx context.Context, handler func(key string)) error
}
