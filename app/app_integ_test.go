package app_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/prefsync/app"
	actx "go.hackfix.me/prefsync/app/context"
	"go.hackfix.me/prefsync/store/memory"
)

type mockEnv struct {
	env map[string]string
}

var _ actx.Environment = &mockEnv{}

func (e *mockEnv) Get(key string) string {
	return e.env[key]
}

func (e *mockEnv) Set(key, val string) error {
	e.env[key] = val
	return nil
}

type testApp struct {
	*app.App
	store          *memory.Store
	stdout, stderr *bytes.Buffer
}

func newTestApp() *testApp {
	s := memory.New()
	var stdout, stderr bytes.Buffer
	a := app.New(
		app.WithFDs(strings.NewReader(""), &stdout, &stderr),
		app.WithEnv(&mockEnv{env: map[string]string{}}),
		app.WithLogger(false),
		app.WithStore(s),
		app.WithExit(func(int) {}),
	)

	return &testApp{App: a, store: s, stdout: &stdout, stderr: &stderr}
}

func (ta *testApp) run(args ...string) error {
	ta.stdout.Reset()
	return ta.App.Run(args)
}

func TestAppDeclareGetSet(t *testing.T) {
	ta := newTestApp()

	require.NoError(t, ta.run("declare", "retries", "int", "5"))
	require.NoError(t, ta.run("get", "retries"))
	assert.Equal(t, "5\n", ta.stdout.String())

	require.NoError(t, ta.run("set", "retries", "3"))
	require.NoError(t, ta.run("get", "retries"))
	assert.Equal(t, "3\n", ta.stdout.String())

	// Declared without an initial value, bool keys default to false.
	require.NoError(t, ta.run("declare", "enabled", "bool"))
	require.NoError(t, ta.run("get", "enabled"))
	assert.Equal(t, "false\n", ta.stdout.String())
}

func TestAppDeclareTypeConflict(t *testing.T) {
	ta := newTestApp()

	require.NoError(t, ta.run("declare", "retries", "int"))
	err := ta.run("declare", "retries", "bool")
	assert.ErrorContains(t, err, "failed declaring preference")
}

func TestAppGetUndeclared(t *testing.T) {
	ta := newTestApp()

	err := ta.run("get", "missing")
	assert.EqualError(t, err, "preference 'missing' is not declared")
}

func TestAppSetInvalidValue(t *testing.T) {
	ta := newTestApp()

	require.NoError(t, ta.run("declare", "retries", "int"))
	err := ta.run("set", "retries", "notanint")
	assert.ErrorContains(t, err, "preference 'retries' expects an int value")
}

func TestAppLs(t *testing.T) {
	ta := newTestApp()

	require.NoError(t, ta.run("declare", "retries", "int", "5"))
	require.NoError(t, ta.run("declare", "greeting", "string", "hello"))
	require.NoError(t, ta.run("ls"))

	out := ta.stdout.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "retries")
	assert.Contains(t, out, "5")
	assert.Contains(t, out, "greeting")
	assert.Contains(t, out, "hello")
}
