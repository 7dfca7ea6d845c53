package badger

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/prefsync/store"
)

func newTestStore(t *testing.T, opts ...Option) *Badger {
	t.Helper()
	s, err := Open(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDeclare(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.Declare("retries", store.TypeInt))
	require.NoError(t, s.Declare("enabled", store.TypeBool))
	require.NoError(t, s.Declare("greeting", store.TypeString))

	// Re-declaring with the same type is a no-op.
	require.NoError(t, s.Declare("retries", store.TypeInt))
	assert.ErrorIs(t, s.Declare("retries", store.TypeBool), store.ErrTypeMismatch)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []store.Key{
		{Name: "enabled", Type: store.TypeBool},
		{Name: "greeting", Type: store.TypeString},
		{Name: "retries", Type: store.TypeInt},
	}, keys)
}

func TestTypedAccess(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.Declare("retries", store.TypeInt))
	require.NoError(t, s.Declare("enabled", store.TypeBool))
	require.NoError(t, s.Declare("greeting", store.TypeString))

	// Declaration seeds type-appropriate defaults.
	i, err := s.GetInt("retries")
	require.NoError(t, err)
	assert.Equal(t, int64(0), i)
	b, err := s.GetBool("enabled")
	require.NoError(t, err)
	assert.False(t, b)
	str, err := s.GetString("greeting")
	require.NoError(t, err)
	assert.Equal(t, "", str)

	require.NoError(t, s.SetInt("retries", 5))
	i, err = s.GetInt("retries")
	require.NoError(t, err)
	assert.Equal(t, int64(5), i)

	require.NoError(t, s.SetBool("enabled", true))
	b, err = s.GetBool("enabled")
	require.NoError(t, err)
	assert.True(t, b)

	require.NoError(t, s.SetString("greeting", "hello"))
	str, err = s.GetString("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", str)

	_, err = s.GetInt("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.Declare("retries", store.TypeInt))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 10)
	require.NoError(t, s.Subscribe(ctx, func(key string) {
		changed <- key
	}))
	// Give the subscription goroutine time to register.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, s.SetInt("retries", 3))

	select {
	case key := <-changed:
		assert.Equal(t, "retries", key)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestEncryption(t *testing.T) {
	t.Parallel()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	keyEnc := base58.Encode(key)

	path := t.TempDir()
	s, err := Open(path, WithEncryptionKey(keyEnc))
	require.NoError(t, err)

	require.NoError(t, s.Declare("greeting", store.TypeString))
	require.NoError(t, s.SetString("greeting", "hello"))
	v, err := s.GetString("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	require.NoError(t, s.Close())

	// Values are unreadable with a different key.
	wrongKey := make([]byte, 32)
	_, err = rand.Read(wrongKey)
	require.NoError(t, err)

	s2, err := Open(path, WithEncryptionKey(base58.Encode(wrongKey)))
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	_, err = s2.GetString("greeting")
	assert.EqualError(t, err, "failed decrypting value")
}

func TestInvalidEncryptionKey(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), WithEncryptionKey("tooshort"))
	assert.ErrorContains(t, err, "invalid encryption key")
}
