package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/backend/backendtest"
	"github.com/broisnischal/zap/internal/bootstrap"
	"github.com/broisnischal/zap/internal/runner"
	"github.com/broisnischal/zap/internal/runner/runnertest"
	"github.com/broisnischal/zap/internal/selector"
	"github.com/broisnischal/zap/internal/selfupdate"
	"github.com/broisnischal/zap/internal/ui"
)

type answer bool

func (a answer) Confirm(string) (bool, error) { return bool(a), nil }

type notifier struct {
	r     *selfupdate.Release
	err   error
	calls int
}

func (n *notifier) Check(context.Context) (*selfupdate.Release, error) {
	n.calls++
	return n.r, n.err
}

func newDispatcher(b backend.Backend) (*Dispatcher, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Dispatcher{
		Backend: b,
		Printer: &ui.Printer{Out: &out, Err: &errOut},
	}, &out, &errOut
}

func TestSearchPrintsInBackendOrder(t *testing.T) {
	fb := backendtest.New(backend.Apt)
	fb.SearchFunc = func(_ context.Context, q string) ([]backend.Package, error) {
		return []backend.Package{{Name: "firefox", Backend: backend.Apt}, {Name: "firebase-cli", Backend: backend.Apt}}, nil
	}
	d, out, _ := newDispatcher(fb)

	require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpSearch, Args: []string{"fire"}}))
	assert.Equal(t, []string{"search:fire"}, fb.Calls())
	assert.Contains(t, out.String(), "firefox")
}

// TestSearchShowInfo looks up the first hit.
func TestSearchShowInfo(t *testing.T) {
	fb := backendtest.New(backend.Cargo)
	fb.SearchFunc = func(context.Context, string) ([]backend.Package, error) {
		return []backend.Package{{Name: "ripgrep"}, {Name: "ripgrep-all"}}, nil
	}
	fb.InfoFunc = func(_ context.Context, name string) (*backend.Package, error) {
		return &backend.Package{Name: name, Version: "14.1.0", Backend: backend.Cargo}, nil
	}
	d, out, _ := newDispatcher(fb)

	require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpSearch, Args: []string{"ripgrep"}, ShowInfo: true}))
	assert.Equal(t, []string{"search:ripgrep", "info:ripgrep"}, fb.Calls())
	assert.Contains(t, out.String(), "14.1.0")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"empty search", Command{Op: backend.OpSearch}},
		{"short search", Command{Op: backend.OpSearch, Args: []string{"f"}}},
		{"install nothing", Command{Op: backend.OpInstall, Args: []string{" "}}},
		{"info two", Command{Op: backend.OpInfo, Args: []string{"a", "b"}}},
		{"unknown op", Command{Op: "remove"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := backendtest.New(backend.Apt)
			d, _, _ := newDispatcher(fb)
			err := d.Run(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, ErrUsage)
			assert.Empty(t, fb.Calls())
		})
	}
}

func TestInstall(t *testing.T) {
	fb := backendtest.New(backend.Npm)
	d, out, _ := newDispatcher(fb)

	require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpInstall, Args: []string{"typescript", "eslint"}}))
	assert.Equal(t, []string{"install:[typescript eslint]"}, fb.Calls())
	assert.Contains(t, out.String(), "Installed typescript, eslint")
}

// TestInstallExitCodePropagates returns the child's own status.
func TestInstallExitCodePropagates(t *testing.T) {
	fb := backendtest.New(backend.Apt)
	fb.InstallFunc = func(context.Context, []string) (*runner.Result, error) {
		return &runner.Result{ExitCode: 100}, &runner.ExitError{Command: "sudo apt-get install -y nope", Code: 100, Output: "E: Unable to locate package nope"}
	}
	d, _, _ := newDispatcher(fb)

	err := d.Run(context.Background(), Command{Op: backend.OpInstall, Args: []string{"nope"}})
	require.Error(t, err)
	assert.Equal(t, 100, ExitCode(err))
	assert.Contains(t, err.Error(), "Unable to locate package")
}

// TestUpdateUnsupportedRunsNothing uses the real backend table and a fake
// runner: the error surfaces and no process is started.
func TestUpdateUnsupportedRunsNothing(t *testing.T) {
	tbl, err := backend.DefaultTable()
	require.NoError(t, err)
	fake := runnertest.New("pip3")
	reg := backend.NewRegistry(tbl, backend.Env{Runner: fake, GOOS: "linux"})
	pip, err := reg.Get(backend.Pip)
	require.NoError(t, err)

	d, _, _ := newDispatcher(pip)
	d.Prompter = answer(true)
	err = d.Run(context.Background(), Command{Op: backend.OpUpdate})

	var unsup *backend.UnsupportedError
	require.True(t, errors.As(err, &unsup), "error = %v", err)
	assert.Equal(t, backend.OpUpdate, unsup.Op)
	assert.Empty(t, fake.Calls())
	assert.Equal(t, 1, ExitCode(err))
}

func TestUpdateConfirmation(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		fb := backendtest.New(backend.Dnf)
		d, _, errOut := newDispatcher(fb)
		d.Prompter = answer(false)

		require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpUpdate}))
		assert.Empty(t, fb.Calls())
		assert.Contains(t, errOut.String(), "Cancelled")
	})
	t.Run("accepted", func(t *testing.T) {
		fb := backendtest.New(backend.Dnf)
		d, out, _ := newDispatcher(fb)
		d.Prompter = answer(true)

		require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpUpdate}))
		assert.Equal(t, []string{"update:"}, fb.Calls())
		assert.Contains(t, out.String(), "Update complete")
	})
	t.Run("auto yes", func(t *testing.T) {
		fb := backendtest.New(backend.Dnf)
		d, _, _ := newDispatcher(fb)
		d.AutoYes = true

		require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpUpdate}))
		assert.Equal(t, []string{"update:"}, fb.Calls())
	})
}

func TestInfoNotFound(t *testing.T) {
	fb := backendtest.New(backend.Brew)
	d, _, _ := newDispatcher(fb)

	err := d.Run(context.Background(), Command{Op: backend.OpInfo, Args: []string{"nope"}})
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestList(t *testing.T) {
	fb := backendtest.New(backend.Flatpak)
	fb.ListFunc = func(context.Context) ([]backend.Package, error) {
		return []backend.Package{{Name: "org.mozilla.firefox", Version: "130.0", Installed: true}}, nil
	}
	d, out, _ := newDispatcher(fb)

	require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpList}))
	assert.Contains(t, out.String(), "org.mozilla.firefox")
	assert.Contains(t, out.String(), "1 package(s) installed via flatpak")
}

func TestUpdateNotice(t *testing.T) {
	t.Run("newer release", func(t *testing.T) {
		n := &notifier{r: &selfupdate.Release{Tag: "v0.9.0", URL: "https://example.com/v0.9.0"}}
		d, _, errOut := newDispatcher(backendtest.New(backend.Apt))
		d.CheckUpdates = true
		d.Notifier = n

		require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpList}))
		assert.Equal(t, 1, n.calls)
		assert.Contains(t, errOut.String(), "v0.9.0")
	})
	t.Run("check failure is not fatal", func(t *testing.T) {
		n := &notifier{err: fmt.Errorf("status 403")}
		d, _, errOut := newDispatcher(backendtest.New(backend.Apt))
		d.CheckUpdates = true
		d.Notifier = n

		require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpList}))
		assert.NotContains(t, errOut.String(), "403")
	})
	t.Run("disabled", func(t *testing.T) {
		n := &notifier{r: &selfupdate.Release{Tag: "v0.9.0"}}
		d, _, _ := newDispatcher(backendtest.New(backend.Apt))
		d.Notifier = n
		d.NotifyWait = time.Millisecond

		require.NoError(t, d.Run(context.Background(), Command{Op: backend.OpList}))
		assert.Zero(t, n.calls)
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("x")))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("wrap: %w", selector.ErrNoBackendAvailable)))
	assert.Equal(t, 1, ExitCode(&bootstrap.FailedError{Backend: backend.Brew, Reason: "x"}))
	assert.Equal(t, 1, ExitCode(&runner.ExitError{Code: -1}))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("install: %w", &runner.ExitError{Code: 2})))
}
