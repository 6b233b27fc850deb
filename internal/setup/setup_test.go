package setup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	installed bool
	runErr    error
	runCalls  [][]string
}

func (f *fakeRunner) LookPath(string) (string, error) {
	if f.installed {
		return "/usr/local/bin/modal", nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.runCalls = append(f.runCalls, append([]string{name}, args...))
	return f.runErr
}

type fakeValidator struct {
	err   error
	calls int
}

func (f *fakeValidator) ValidateApp(context.Context, any) error {
	f.calls++
	return f.err
}

func newTestBootstrapper(runner *fakeRunner, validator *fakeValidator, authErr error) (*Bootstrapper, *bytes.Buffer) {
	out := &bytes.Buffer{}
	b := NewBootstrapper(runner, validator, out)
	b.auth = func(context.Context, io.Writer) error { return authErr }
	return b, out
}

func TestEnsureClient_AlreadyInstalled(t *testing.T) {
	runner := &fakeRunner{installed: true}
	b, out := newTestBootstrapper(runner, &fakeValidator{}, nil)

	err := b.EnsureClient(context.Background())

	require.NoError(t, err)
	assert.Empty(t, runner.runCalls, "no install when the client is present")
	assert.Contains(t, out.String(), "already installed")
}

func TestEnsureClient_InstallsWhenMissing(t *testing.T) {
	runner := &fakeRunner{installed: false}
	b, _ := newTestBootstrapper(runner, &fakeValidator{}, nil)

	err := b.EnsureClient(context.Background())

	require.NoError(t, err)
	require.Len(t, runner.runCalls, 1)
	assert.Equal(t, []string{"python3", "-m", "pip", "install", "modal"}, runner.runCalls[0])
}

func TestEnsureClient_InstallFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{installed: false, runErr: errors.New("pip exploded")}
	b, _ := newTestBootstrapper(runner, &fakeValidator{}, nil)

	err := b.EnsureClient(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install")
}

func TestRun_ShortCircuitsOnAuthFailure(t *testing.T) {
	runner := &fakeRunner{installed: true}
	validator := &fakeValidator{}
	b, out := newTestBootstrapper(runner, validator, errors.New("user gave up"))

	err := b.Run(context.Background())

	require.Error(t, err)
	assert.Zero(t, validator.calls, "connectivity check must not run after auth failure")
	assert.Contains(t, out.String(), "Authentication failed")
}

func TestRun_ReportsVerifyFailure(t *testing.T) {
	runner := &fakeRunner{installed: true}
	validator := &fakeValidator{err: errors.New("401 unauthorized")}
	b, out := newTestBootstrapper(runner, validator, nil)

	err := b.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, validator.calls)
	assert.Contains(t, out.String(), "Connection test failed")
}

func TestRun_HappyPathOrder(t *testing.T) {
	runner := &fakeRunner{installed: true}
	validator := &fakeValidator{}
	b, out := newTestBootstrapper(runner, validator, nil)

	err := b.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, validator.calls)

	text := out.String()
	steps := []string{"Step 1", "Step 2", "Step 3", "Step 4", "Setup complete"}
	last := -1
	for _, step := range steps {
		idx := strings.Index(text, step)
		require.NotEqual(t, -1, idx, "missing output for %s", step)
		assert.Greater(t, idx, last, "%s printed out of order", step)
		last = idx
	}
}
