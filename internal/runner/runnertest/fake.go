// Package runnertest provides an in-memory Runner for tests. It records every
// command and PATH lookup and answers with canned output.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/broisnischal/zap/internal/runner"
)

// Response is the canned outcome for one command line.
type Response struct {
	Output   string
	Stderr   string
	ExitCode int
	Err      error
}

// Fake implements runner.Runner without spawning processes.
type Fake struct {
	mu        sync.Mutex
	paths     map[string]bool
	responses map[string]Response
	calls     []runner.Command
	lookups   []string

	// Handler, when set, answers every Run call that has no canned response.
	Handler func(ctx context.Context, c runner.Command) (*runner.Result, error)
}

// New returns a Fake with the given executables on PATH.
func New(onPath ...string) *Fake {
	f := &Fake{paths: map[string]bool{}, responses: map[string]Response{}}
	for _, p := range onPath {
		f.paths[p] = true
	}
	return f
}

// SetPath adds or removes an executable from the fake PATH.
func (f *Fake) SetPath(name string, present bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = present
}

// On registers the response for an exact command line, e.g. "apt-cache search fire".
func (f *Fake) On(cmdline string, resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[cmdline] = resp
}

// Calls returns a copy of every command passed to Run.
func (f *Fake) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// CallLines returns every command passed to Run rendered as a string.
func (f *Fake) CallLines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Lookups returns every name looked up through LookPath.
func (f *Fake) Lookups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lookups...)
}

// LookPath reports names registered with New or SetPath.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, name)
	if f.paths[name] {
		return "/usr/bin/" + name, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Run records c and returns its canned response. Commands without a
// response succeed with empty output unless Handler is set.
func (f *Fake) Run(ctx context.Context, c runner.Command) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	resp, ok := f.responses[c.String()]
	handler := f.Handler
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &runner.Result{ExitCode: -1, Cancelled: true}, fmt.Errorf("%s: %w", c.Name, err)
	}
	if !ok && handler != nil {
		return handler(ctx, c)
	}
	if resp.Err != nil {
		return &runner.Result{ExitCode: -1}, resp.Err
	}
	res := &runner.Result{ExitCode: resp.ExitCode, Output: resp.Output, Stderr: resp.Stderr}
	if c.Stream && c.OnLine != nil {
		for _, line := range strings.Split(resp.Output, "\n") {
			if strings.TrimSpace(line) != "" {
				c.OnLine(line)
			}
		}
	}
	if resp.ExitCode != 0 {
		out := resp.Stderr
		if strings.TrimSpace(out) == "" {
			out = resp.Output
		}
		return res, &runner.ExitError{Command: c.String(), Code: resp.ExitCode, Output: out}
	}
	return res, nil
}
