package live

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/backend/backendtest"
	"github.com/broisnischal/zap/internal/runner"
	"github.com/broisnischal/zap/internal/runner/runnertest"
)

const fast = 5 * time.Millisecond

func pkgs(names ...string) []backend.Package {
	out := make([]backend.Package, len(names))
	for i, n := range names {
		out[i] = backend.Package{Name: n, Backend: "fake"}
	}
	return out
}

func names(ps []backend.Package) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func waitPhase(t *testing.T, e *Engine, want Phase) State {
	t.Helper()
	var s State
	require.Eventually(t, func() bool {
		s = e.Snapshot()
		return s.Phase == want
	}, 2*time.Second, time.Millisecond, "phase never reached %s", want)
	return s
}

// TestFireScenario types "fire", selects firefox and installs it once.
func TestFireScenario(t *testing.T) {
	fb := backendtest.New("fake")
	fb.SearchFunc = func(context.Context, string) ([]backend.Package, error) {
		return pkgs("firefox", "firebase-cli"), nil
	}
	e := NewEngine(context.Background(), fb, Options{Debounce: fast})

	e.SetQuery("fire")
	s := waitPhase(t, e, Displaying)
	assert.Equal(t, []string{"firefox", "firebase-cli"}, names(s.Records))

	e.Toggle("firefox")
	got := e.Confirm("")
	assert.Equal(t, []string{"firefox"}, got)

	installed, _, err := e.Install(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"firefox"}, installed)

	_, _, err = e.Install(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyInstalled)
	assert.Equal(t, []string{"search:fire", "install:[firefox]"}, fb.Calls())
}

// TestStaleResultDiscarded lets the "fi" search finish after "fir".
func TestStaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 4)
	fb := backendtest.New("fake")
	fb.SearchFunc = func(_ context.Context, q string) ([]backend.Package, error) {
		started <- q
		if q == "fi" {
			<-release // ignores cancellation, finishing late
			return pkgs("fish", "figlet"), nil
		}
		return pkgs("firefox"), nil
	}
	e := NewEngine(context.Background(), fb, Options{Debounce: fast})

	e.SetQuery("fi")
	require.Equal(t, "fi", <-started)
	e.SetQuery("fir")
	require.Equal(t, "fir", <-started)
	s := waitPhase(t, e, Displaying)
	assert.Equal(t, []string{"firefox"}, names(s.Records))

	close(release)
	e.Wait()

	s = e.Snapshot()
	assert.Equal(t, "fir", s.Query)
	assert.Equal(t, []string{"firefox"}, names(s.Records))
	assert.Equal(t, uint64(2), s.Seq)
	assert.Equal(t, Displaying, s.Phase)
	e.Quit()
}

// TestSupersededSearchKilled checks, through a real backend on a fake
// runner, that the old child's context is cancelled before the new search
// starts.
func TestSupersededSearchKilled(t *testing.T) {
	tbl, err := backend.DefaultTable()
	require.NoError(t, err)
	fake := runnertest.New("apt-cache", "apt-get", "dpkg-query")

	var mu sync.Mutex
	var firstCtx context.Context
	var cancelledBeforeSecond bool
	fake.Handler = func(ctx context.Context, c runner.Command) (*runner.Result, error) {
		q := c.Args[len(c.Args)-1]
		if q == "fi" {
			mu.Lock()
			firstCtx = ctx
			mu.Unlock()
			<-ctx.Done()
			return &runner.Result{Cancelled: true}, ctx.Err()
		}
		mu.Lock()
		cancelledBeforeSecond = firstCtx != nil && firstCtx.Err() != nil
		mu.Unlock()
		return &runner.Result{Output: "firefox - Safe and easy web browser\n"}, nil
	}

	reg := backend.NewRegistry(tbl, backend.Env{Runner: fake, GOOS: "linux"})
	apt, err := reg.Get(backend.Apt)
	require.NoError(t, err)
	e := NewEngine(context.Background(), apt, Options{Debounce: fast})

	e.SetQuery("fi")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstCtx != nil
	}, 2*time.Second, time.Millisecond)

	e.SetQuery("fir")
	s := waitPhase(t, e, Displaying)
	e.Quit()
	e.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, cancelledBeforeSecond)
	require.NotEmpty(t, s.Records)
	assert.Equal(t, "firefox", s.Records[0].Name)
	require.Len(t, fake.Calls(), 2)
	assert.True(t, strings.HasSuffix(fake.CallLines()[1], "fir"))
}

// TestDebounceCoalesces runs one search for a burst of edits.
func TestDebounceCoalesces(t *testing.T) {
	fb := backendtest.New("fake")
	fb.SearchFunc = func(_ context.Context, q string) ([]backend.Package, error) {
		return pkgs(q + "-pkg"), nil
	}
	e := NewEngine(context.Background(), fb, Options{Debounce: 50 * time.Millisecond})

	e.SetQuery("fi")
	e.SetQuery("fir")
	e.SetQuery("fire")
	assert.Equal(t, Typing, e.Snapshot().Phase)
	s := waitPhase(t, e, Displaying)

	assert.Equal(t, []string{"fire-pkg"}, names(s.Records))
	assert.Equal(t, []string{"search:fire"}, fb.Calls())
}

// TestShortQueryClears drops records and cancels in-flight work.
func TestShortQueryClears(t *testing.T) {
	started := make(chan struct{}, 1)
	fb := backendtest.New("fake")
	fb.SearchFunc = func(ctx context.Context, q string) ([]backend.Package, error) {
		if q == "vim" {
			return pkgs("vim", "neovim"), nil
		}
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	e := NewEngine(context.Background(), fb, Options{Debounce: fast})

	e.SetQuery("vim")
	waitPhase(t, e, Displaying)
	e.Toggle("neovim")

	e.SetQuery("v")
	s := e.Snapshot()
	assert.Equal(t, Idle, s.Phase)
	assert.Empty(t, s.Records)
	assert.Empty(t, s.Selected)

	e.SetQuery("vi")
	<-started
	e.SetQuery("")
	assert.Equal(t, Cancelled, e.Snapshot().Phase)
	e.Wait()
	assert.Equal(t, Cancelled, e.Snapshot().Phase)
}

func TestSelection(t *testing.T) {
	fb := backendtest.New("fake")
	fb.SearchFunc = func(_ context.Context, q string) ([]backend.Package, error) {
		if q == "git" {
			return pkgs("git", "gitg", "tig"), nil
		}
		return pkgs("gitg", "lazygit"), nil
	}
	e := NewEngine(context.Background(), fb, Options{Debounce: fast})
	e.SetQuery("git")
	waitPhase(t, e, Displaying)

	e.Select("tig", true)
	e.Select("git", true)
	e.Select("git", true)
	e.Select("nope", true)
	e.Toggle("gitg")
	assert.Equal(t, []string{"tig", "git", "gitg"}, e.Snapshot().Selected)

	e.Toggle("tig")
	assert.Equal(t, []string{"git", "gitg"}, e.Snapshot().Selected)

	// Selections not shown by the new query are dropped.
	e.SetQuery("gitg")
	waitPhase(t, e, Displaying)
	require.Eventually(t, func() bool { return e.Snapshot().Query == "gitg" && len(e.Snapshot().Records) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"gitg"}, e.Snapshot().Selected)
}

func TestConfirmFallback(t *testing.T) {
	fb := backendtest.New("fake")
	fb.SearchFunc = func(context.Context, string) ([]backend.Package, error) { return pkgs("htop", "btop"), nil }
	e := NewEngine(context.Background(), fb, Options{Debounce: fast})
	e.SetQuery("top")
	waitPhase(t, e, Displaying)

	assert.Equal(t, []string{"btop"}, e.Confirm("btop"))
	// Further edits are ignored once confirmed.
	e.SetQuery("other")
	assert.Equal(t, "top", e.Snapshot().Query)
	assert.Equal(t, []string{"btop"}, e.Confirm("htop"))
}

func TestConfirmUnknownFallback(t *testing.T) {
	e := NewEngine(context.Background(), backendtest.New("fake"), Options{Debounce: fast})
	assert.Empty(t, e.Confirm("ghost"))

	_, _, err := e.Install(context.Background())
	assert.ErrorIs(t, err, ErrNothingSelected)
}

// TestQuitHasNoSideEffects never installs.
func TestQuitHasNoSideEffects(t *testing.T) {
	fb := backendtest.New("fake")
	fb.SearchFunc = func(context.Context, string) ([]backend.Package, error) { return pkgs("jq"), nil }
	e := NewEngine(context.Background(), fb, Options{Debounce: fast})
	e.SetQuery("jq")
	waitPhase(t, e, Displaying)
	e.Toggle("jq")

	e.Quit()
	assert.Equal(t, Exited, e.Snapshot().Phase)
	assert.Nil(t, e.Confirm("jq"))
	_, _, err := e.Install(context.Background())
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, []string{"search:jq"}, fb.Calls())

	_, open := <-e.Events()
	for open {
		_, open = <-e.Events()
	}
}

// TestSearchErrorShown keeps the session alive after a failure.
func TestSearchErrorShown(t *testing.T) {
	fb := backendtest.New("fake")
	fb.SearchFunc = func(_ context.Context, q string) ([]backend.Package, error) {
		return nil, &backend.ParseError{Backend: "fake", Op: backend.OpSearch, Raw: "garbage", Err: assert.AnError}
	}
	e := NewEngine(context.Background(), fb, Options{Debounce: fast})
	e.SetQuery("broken")

	s := waitPhase(t, e, Displaying)
	var perr *backend.ParseError
	assert.ErrorAs(t, s.Err, &perr)
	assert.Empty(t, s.Records)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "searching", Searching.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
