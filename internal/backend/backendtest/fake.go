// Package backendtest provides an in-memory Backend for tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/runner"
)

// Fake is a Backend whose operations are plain functions. Unset functions
// return zero values; Unsupported ops return *backend.UnsupportedError.
type Fake struct {
	Name        backend.ID
	Available   bool
	Unsupported []backend.Op

	SearchFunc  func(ctx context.Context, query string) ([]backend.Package, error)
	InstallFunc func(ctx context.Context, names []string) (*runner.Result, error)
	InfoFunc    func(ctx context.Context, name string) (*backend.Package, error)
	UpdateFunc  func(ctx context.Context) (*runner.Result, error)
	ListFunc    func(ctx context.Context) ([]backend.Package, error)

	mu    sync.Mutex
	calls []string
}

// New returns an available fake named id.
func New(id backend.ID) *Fake {
	return &Fake{Name: id, Available: true}
}

// Calls returns "op:args" for every operation invoked.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) record(op backend.Op, arg any) error {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("%s:%v", op, arg))
	f.mu.Unlock()
	for _, u := range f.Unsupported {
		if u == op {
			return &backend.UnsupportedError{Backend: f.Name, Op: op}
		}
	}
	return nil
}

func (f *Fake) ID() backend.ID { return f.Name }

// Descriptor lists every op except the Unsupported ones.
func (f *Fake) Descriptor() backend.Descriptor {
	cmds := backend.CommandSpec{}
	for _, op := range []backend.Op{backend.OpSearch, backend.OpInstall, backend.OpInfo, backend.OpUpdate, backend.OpList} {
		cmds[op] = backend.Template{Argv: []string{string(f.Name), string(op)}}
	}
	for _, op := range f.Unsupported {
		delete(cmds, op)
	}
	return backend.Descriptor{ID: f.Name, Name: string(f.Name), Executables: []string{string(f.Name)}, Commands: cmds}
}

func (f *Fake) IsAvailable() bool { return f.Available }

func (f *Fake) Search(ctx context.Context, query string) ([]backend.Package, error) {
	if err := f.record(backend.OpSearch, query); err != nil {
		return nil, err
	}
	if f.SearchFunc == nil {
		return nil, nil
	}
	return f.SearchFunc(ctx, query)
}

func (f *Fake) Install(ctx context.Context, names []string) (*runner.Result, error) {
	if err := f.record(backend.OpInstall, names); err != nil {
		return nil, err
	}
	if f.InstallFunc == nil {
		return &runner.Result{}, nil
	}
	return f.InstallFunc(ctx, names)
}

func (f *Fake) Info(ctx context.Context, name string) (*backend.Package, error) {
	if err := f.record(backend.OpInfo, name); err != nil {
		return nil, err
	}
	if f.InfoFunc == nil {
		return nil, fmt.Errorf("%s: %q: %w", f.Name, name, backend.ErrNotFound)
	}
	return f.InfoFunc(ctx, name)
}

func (f *Fake) Update(ctx context.Context) (*runner.Result, error) {
	if err := f.record(backend.OpUpdate, ""); err != nil {
		return nil, err
	}
	if f.UpdateFunc == nil {
		return &runner.Result{}, nil
	}
	return f.UpdateFunc(ctx)
}

func (f *Fake) List(ctx context.Context) ([]backend.Package, error) {
	if err := f.record(backend.OpList, ""); err != nil {
		return nil, err
	}
	if f.ListFunc == nil {
		return nil, nil
	}
	return f.ListFunc(ctx)
}
