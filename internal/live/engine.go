// Package live implements interactive search: a debounced query loop that
// keeps at most one search in flight, kills superseded searches and never
// shows results older than the current query.
package live

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/logger"
	"github.com/broisnischal/zap/internal/runner"
)

var (
	// ErrNotConfirmed is returned by Install before Confirm.
	ErrNotConfirmed = errors.New("selection not confirmed")
	// ErrAlreadyInstalled is returned by every Install after the first.
	ErrAlreadyInstalled = errors.New("selection already installed")
	// ErrNothingSelected is returned by Install when the confirmed set is empty.
	ErrNothingSelected = errors.New("nothing selected")
)

// DefaultDebounce is the pause after the last keystroke before searching.
const DefaultDebounce = 300 * time.Millisecond

// Phase is the engine's state.
type Phase int

const (
	Idle Phase = iota
	Typing
	Searching
	Displaying
	Cancelled
	Confirmed
	Exited
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	case Searching:
		return "searching"
	case Displaying:
		return "displaying"
	case Cancelled:
		return "cancelled"
	case Confirmed:
		return "confirmed"
	case Exited:
		return "exited"
	}
	return "unknown"
}

// State is a snapshot of the selection state.
type State struct {
	Query    string
	Records  []backend.Package
	Selected []string
	Seq      uint64
	Phase    Phase
	Err      error
}

// IsSelected reports whether name is in the selection.
func (s State) IsSelected(name string) bool {
	for _, n := range s.Selected {
		if n == name {
			return true
		}
	}
	return false
}

// Options tune an Engine.
type Options struct {
	Debounce time.Duration // DefaultDebounce when zero
	MinQuery int           // backend.MinQuery when zero
	Log      *logger.Logger
}

// Engine owns the selection state of one interactive session.
type Engine struct {
	backend  backend.Backend
	ctx      context.Context
	debounce time.Duration
	minQuery int
	log      *logger.Logger

	mu        sync.Mutex
	state     State
	timer     *time.Timer
	cancel    context.CancelFunc
	confirmed []string
	installed bool
	events    chan struct{}
	searches  sync.WaitGroup
}

// NewEngine creates an engine searching b. Searches run under ctx.
func NewEngine(ctx context.Context, b backend.Backend, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinQuery <= 0 {
		opts.MinQuery = backend.MinQuery
	}
	return &Engine{
		backend:  b,
		ctx:      ctx,
		debounce: opts.Debounce,
		minQuery: opts.MinQuery,
		log:      logger.OrDiscard(opts.Log),
		events:   make(chan struct{}, 1),
	}
}

// Events signals state changes worth redrawing. Signals coalesce; read
// Snapshot for the current state. The channel is closed once the session
// is confirmed or exited.
func (e *Engine) Events() <-chan struct{} { return e.events }

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Records = append([]backend.Package(nil), s.Records...)
	s.Selected = append([]string(nil), s.Selected...)
	return s
}

// SetQuery records an edit. Each change supersedes everything before it:
// the in-flight search is cancelled and a new one is scheduled after the
// debounce interval.
func (e *Engine) SetQuery(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished() || q == e.state.Query {
		return
	}
	e.state.Query = q
	e.state.Seq++
	e.state.Err = nil
	aborted := e.stopLocked()

	if len(strings.TrimSpace(q)) < e.minQuery {
		e.state.Records = nil
		e.state.Selected = nil
		e.state.Phase = Idle
		if aborted {
			e.state.Phase = Cancelled
		}
		e.notifyLocked()
		return
	}

	e.state.Phase = Typing
	seq := e.state.Seq
	e.timer = time.AfterFunc(e.debounce, func() { e.fire(seq) })
}

// fire starts the search for seq unless a newer edit arrived meanwhile.
func (e *Engine) fire(seq uint64) {
	e.mu.Lock()
	if e.finished() || seq != e.state.Seq {
		e.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(e.ctx)
	e.cancel = cancel
	e.state.Phase = Searching
	query := strings.TrimSpace(e.state.Query)
	e.searches.Add(1)
	e.notifyLocked()
	e.mu.Unlock()

	defer e.searches.Done()
	defer cancel()

	e.log.Debugw("live search", "query", query, "seq", seq)
	pkgs, err := e.backend.Search(ctx, query)
	e.apply(seq, pkgs, err)
}

func (e *Engine) apply(seq uint64, pkgs []backend.Package, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished() || seq != e.state.Seq {
		e.log.Debugw("live search discarded", "seq", seq, "current", e.state.Seq)
		return
	}
	e.cancel = nil
	e.state.Phase = Displaying
	if err != nil {
		e.log.Warnw("live search failed", "query", e.state.Query, "error", err)
		e.state.Err = err
		e.state.Records = nil
		e.state.Selected = nil
		e.notifyLocked()
		return
	}

	e.state.Records = pkgs
	shown := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		shown[p.Name] = true
	}
	kept := e.state.Selected[:0]
	for _, n := range e.state.Selected {
		if shown[n] {
			kept = append(kept, n)
		}
	}
	e.state.Selected = kept
	e.notifyLocked()
}

// Toggle flips the selection of a displayed record.
func (e *Engine) Toggle(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectLocked(name, !e.state.IsSelected(name))
}

// Select sets the selection of a displayed record. Unknown names are ignored.
func (e *Engine) Select(name string, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectLocked(name, on)
}

func (e *Engine) selectLocked(name string, on bool) {
	if e.finished() || !e.displayed(name) || e.state.IsSelected(name) == on {
		return
	}
	if on {
		e.state.Selected = append(e.state.Selected, name)
	} else {
		out := e.state.Selected[:0]
		for _, n := range e.state.Selected {
			if n != name {
				out = append(out, n)
			}
		}
		e.state.Selected = out
	}
	e.notifyLocked()
}

// Confirm ends the session and returns the names to install in selection
// order, or fallback alone when nothing is selected and fallback is shown.
func (e *Engine) Confirm(fallback string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase == Exited {
		return nil
	}
	if e.state.Phase == Confirmed {
		return append([]string(nil), e.confirmed...)
	}
	e.stopLocked()
	names := append([]string(nil), e.state.Selected...)
	if len(names) == 0 && fallback != "" && e.displayed(fallback) {
		names = []string{fallback}
	}
	e.confirmed = names
	e.state.Phase = Confirmed
	close(e.events)
	e.log.Infow("live selection confirmed", "names", names)
	return append([]string(nil), names...)
}

// Install installs the confirmed selection. Only the first call runs.
func (e *Engine) Install(ctx context.Context) ([]string, *runner.Result, error) {
	e.mu.Lock()
	if e.state.Phase != Confirmed {
		e.mu.Unlock()
		return nil, nil, ErrNotConfirmed
	}
	if e.installed {
		e.mu.Unlock()
		return nil, nil, ErrAlreadyInstalled
	}
	e.installed = true
	names := append([]string(nil), e.confirmed...)
	e.mu.Unlock()

	if len(names) == 0 {
		return nil, nil, ErrNothingSelected
	}
	res, err := e.backend.Install(ctx, names)
	return names, res, err
}

// Quit ends the session without side effects.
func (e *Engine) Quit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished() {
		return
	}
	e.stopLocked()
	e.state.Phase = Exited
	close(e.events)
}

// Wait blocks until searches already started have returned.
func (e *Engine) Wait() { e.searches.Wait() }

// stopLocked stops the debounce timer and cancels the in-flight search,
// reporting whether a search was running.
func (e *Engine) stopLocked() bool {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel == nil {
		return false
	}
	e.cancel()
	e.cancel = nil
	return true
}

func (e *Engine) finished() bool {
	return e.state.Phase == Confirmed || e.state.Phase == Exited
}

func (e *Engine) displayed(name string) bool {
	for _, p := range e.state.Records {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (e *Engine) notifyLocked() {
	select {
	case e.events <- struct{}{}:
	default:
	}
}
