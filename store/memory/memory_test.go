package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/prefsync/store"
)

func TestDeclare(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.Declare("retries", store.TypeInt))
	require.NoError(t, s.Declare("retries", store.TypeInt)) // idempotent
	assert.ErrorIs(t, s.Declare("retries", store.TypeBool), store.ErrTypeMismatch)

	v, err := s.GetInt("retries")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestTypedAccess(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.Declare("greeting", store.TypeString))

	require.NoError(t, s.SetString("greeting", "hello"))
	v, err := s.GetString("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = s.GetInt("greeting")
	assert.ErrorIs(t, err, store.ErrTypeMismatch)

	_, err = s.GetString("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
