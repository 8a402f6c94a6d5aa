// Package selector resolves the backend a command runs against, either
// from an explicit override or from the detector's ranking, bootstrapping a
// missing tool at most once.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/logger"
)

// Auto is the override value that means "detect".
const Auto = "auto"

// ErrNoBackendAvailable is returned when nothing usable could be found or installed.
var ErrNoBackendAvailable = errors.New("no package manager available")

// UnknownBackendError reports an override naming no known backend.
type UnknownBackendError struct {
	Name       string
	Suggestion backend.ID
}

func (e *UnknownBackendError) Error() string {
	msg := fmt.Sprintf("unknown backend %q", e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownBackendError) Unwrap() error { return backend.ErrUnknownBackend }

// Registry resolves IDs to backends.
type Registry interface {
	Get(id backend.ID) (backend.Backend, error)
}

// Bootstrapper makes a backend's tool available.
type Bootstrapper interface {
	Ensure(ctx context.Context, id backend.ID) error
}

// Selector picks the active backend.
type Selector struct {
	Registry  Registry
	Bootstrap Bootstrapper
	// Candidates returns the ranked backend list. It is not called when an
	// override is given.
	Candidates func() []backend.ID
	Log        *logger.Logger
}

// Resolve returns the backend to use. An override other than "" or "auto"
// (in any case) is used as-is and the detector is never consulted.
func (s *Selector) Resolve(ctx context.Context, override string) (backend.Backend, error) {
	log := logger.OrDiscard(s.Log)

	override = strings.TrimSpace(override)
	if override != "" && !strings.EqualFold(override, Auto) {
		id, err := backend.ParseID(override)
		if err != nil {
			return nil, &UnknownBackendError{Name: override, Suggestion: Suggest(override)}
		}
		b, err := s.Registry.Get(id)
		if err != nil {
			return nil, err
		}
		log.Infow("backend override", "backend", id)
		return s.ensure(ctx, b)
	}

	ids := s.Candidates()
	log.Debugw("backend candidates", "ids", ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no candidates for this system", ErrNoBackendAvailable)
	}

	var first backend.Backend
	for _, id := range ids {
		b, err := s.Registry.Get(id)
		if err != nil {
			continue
		}
		if first == nil {
			first = b
		}
		if b.IsAvailable() {
			log.Infow("backend selected", "backend", id)
			return b, nil
		}
	}
	if first == nil {
		return nil, fmt.Errorf("%w: no candidates for this system", ErrNoBackendAvailable)
	}

	log.Infow("no backend available, bootstrapping", "backend", first.ID())
	return s.ensure(ctx, first)
}

func (s *Selector) ensure(ctx context.Context, b backend.Backend) (backend.Backend, error) {
	if b.IsAvailable() {
		return b, nil
	}
	if s.Bootstrap == nil {
		return nil, fmt.Errorf("%w: %s is not installed", ErrNoBackendAvailable, b.ID())
	}
	if err := s.Bootstrap.Ensure(ctx, b.ID()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoBackendAvailable, err)
	}
	if !b.IsAvailable() {
		return nil, fmt.Errorf("%w: %s is still not installed", ErrNoBackendAvailable, b.ID())
	}
	return b, nil
}

// Suggest returns the known backend closest to name, or "" when nothing is
// within three edits.
func Suggest(name string) backend.ID {
	best := backend.ID("")
	bestDist := 4
	for _, id := range backend.AllIDs {
		if d := levenshtein.ComputeDistance(name, string(id)); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}
