// Package bootstrap installs a missing package manager or language runtime
// on demand, after asking the user. Each backend is attempted at most once
// per process.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/logger"
	"github.com/broisnischal/zap/internal/runner"
)

// ErrDeclined is returned when the user refuses, or cannot be asked.
var ErrDeclined = errors.New("bootstrap declined")

// FailedError reports a bootstrap that could not complete.
type FailedError struct {
	Backend backend.ID
	Reason  string
	Err     error
}

func (e *FailedError) Error() string {
	msg := fmt.Sprintf("bootstrap %s: %s", e.Backend, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FailedError) Unwrap() error { return e.Err }

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Registry is the part of backend.Registry the manager needs.
type Registry interface {
	Get(id backend.ID) (backend.Backend, error)
}

// Manager runs bootstrap recipes.
type Manager struct {
	Registry Registry
	Runner   runner.Runner
	Prompter Prompter
	AutoYes  bool
	GOOS     string
	Root     bool
	Log      *logger.Logger
	OnLine   func(line string)
	// Recipes defaults to DefaultRecipes when nil.
	Recipes map[backend.ID]Recipe
	// Getenv and Setenv expose PATH to PathHints; they default to os.Getenv/os.Setenv.
	Getenv func(string) string
	Setenv func(string, string) error

	mu       sync.Mutex
	attempts map[backend.ID]error
}

// Ensure makes the backend's tool available. A second call for the same
// backend returns the first outcome without running anything.
func (m *Manager) Ensure(ctx context.Context, id backend.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempts == nil {
		m.attempts = map[backend.ID]error{}
	}
	if err, done := m.attempts[id]; done {
		return err
	}

	b, err := m.Registry.Get(id)
	if err != nil {
		return err
	}
	if b.IsAvailable() {
		return nil
	}

	err = m.attempt(ctx, b)
	m.attempts[id] = err
	return err
}

// Attempted reports whether a bootstrap was tried for id.
func (m *Manager) Attempted(id backend.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.attempts[id]
	return ok
}

func (m *Manager) attempt(ctx context.Context, b backend.Backend) error {
	log := logger.OrDiscard(m.Log)
	id := b.ID()

	recipes := m.Recipes
	if recipes == nil {
		recipes = DefaultRecipes()
	}
	rec, ok := recipes[id]
	if !ok {
		return &FailedError{Backend: id, Reason: "no install recipe for " + b.Descriptor().Name}
	}
	if len(rec.Platforms) > 0 && !containsFold(rec.Platforms, m.GOOS) {
		return &FailedError{Backend: id, Reason: fmt.Sprintf("%s cannot be installed on %s", rec.Label, m.GOOS)}
	}
	step, ok := m.pickStep(rec)
	if !ok {
		return &FailedError{Backend: id, Reason: "no supported installer found for " + rec.Label}
	}

	if !m.AutoYes {
		question := fmt.Sprintf("%s is not installed. Install %s now?", b.Descriptor().Name, rec.Label)
		if rec.Kind == EnsureRuntime {
			question = fmt.Sprintf("%s needs %s. Install it now?", b.Descriptor().Name, rec.Label)
		}
		yes, err := m.confirm(question)
		if err != nil {
			return &FailedError{Backend: id, Reason: "prompt failed", Err: err}
		}
		if !yes {
			log.Infow("bootstrap declined", "backend", id)
			return fmt.Errorf("%s: %w", id, ErrDeclined)
		}
	}

	log.Infow("bootstrap start", "backend", id, "recipe", rec.Label, "requires", step.Requires)
	for _, argv := range step.Commands {
		if step.Sudo && !m.Root && m.GOOS != "windows" {
			argv = append([]string{"sudo"}, argv...)
		}
		_, err := m.Runner.Run(ctx, runner.Command{
			Name:   argv[0],
			Args:   argv[1:],
			Stream: true,
			OnLine: m.OnLine,
		})
		if err != nil {
			log.Warnw("bootstrap step failed", "backend", id, "error", err)
			return &FailedError{Backend: id, Reason: "installing " + rec.Label + " failed", Err: err}
		}
	}

	m.applyPathHints(rec.PathHints)
	if !b.IsAvailable() {
		return &FailedError{Backend: id, Reason: rec.Label + " installed but " + strings.Join(b.Descriptor().Executables, ", ") + " still unavailable"}
	}
	log.Infow("bootstrap done", "backend", id)
	return nil
}

func (m *Manager) confirm(question string) (bool, error) {
	if m.Prompter == nil {
		return false, nil
	}
	return m.Prompter.Confirm(question)
}

func (m *Manager) pickStep(rec Recipe) (Step, bool) {
	for _, s := range rec.Steps {
		if s.Requires == "" {
			return s, true
		}
		if _, err := m.Runner.LookPath(s.Requires); err == nil {
			return s, true
		}
	}
	return Step{}, false
}

func (m *Manager) applyPathHints(hints []string) {
	if len(hints) == 0 {
		return
	}
	getenv, setenv := m.Getenv, m.Setenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if setenv == nil {
		setenv = os.Setenv
	}
	home, _ := os.UserHomeDir()

	path := getenv("PATH")
	parts := filepath.SplitList(path)
	for _, h := range hints {
		if strings.HasPrefix(h, "~/") && home != "" {
			h = filepath.Join(home, h[2:])
		}
		h = filepath.FromSlash(h)
		if containsFold(parts, h) {
			continue
		}
		parts = append(parts, h)
	}
	_ = setenv("PATH", strings.Join(parts, string(os.PathListSeparator)))
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
