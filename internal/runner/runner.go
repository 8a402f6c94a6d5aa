// Package runner executes external package-manager commands. It captures or
// streams their output and terminates them when the caller's context is
// cancelled. Every backend operation goes through a Runner.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/broisnischal/zap/internal/logger"
)

// Command describes one child process.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // appended to the current environment

	// Stream inherits stdin so the child (or sudo) can prompt, and forwards
	// every non-empty output line to OnLine while also capturing it.
	Stream bool
	OnLine func(line string)
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a finished or cancelled child.
type Result struct {
	ExitCode  int
	Output    string // stdout, or combined output in stream mode
	Stderr    string
	Cancelled bool
	Duration  time.Duration
}

// ExitError reports a child that ran and exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Output  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
	if out := lastLine(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// Runner runs commands and searches the PATH.
type Runner interface {
	Run(ctx context.Context, c Command) (*Result, error)
	LookPath(name string) (string, error)
}

// Exec is the os/exec implementation of Runner.
type Exec struct {
	Log *logger.Logger
	// WaitDelay bounds how long a cancelled child may keep its pipes open.
	WaitDelay time.Duration
}

// New returns an Exec runner logging to log.
func New(log *logger.Logger) *Exec {
	return &Exec{Log: log, WaitDelay: 2 * time.Second}
}

// LookPath reports where name is found on PATH.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run starts c and waits for it. A non-zero exit returns both the Result and
// an *ExitError. Cancellation kills the child and returns a Result with
// Cancelled set together with the context error.
func (e *Exec) Run(ctx context.Context, c Command) (*Result, error) {
	log := logger.OrDiscard(e.Log)
	if err := ctx.Err(); err != nil {
		return &Result{ExitCode: -1, Cancelled: true}, fmt.Errorf("%s: %w", c.Name, err)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.WaitDelay = e.WaitDelay

	var stdout, stderr bytes.Buffer
	var lw *lineWriter
	if c.Stream {
		lw = &lineWriter{onLine: c.OnLine, buf: &stdout}
		cmd.Stdin = os.Stdin
		cmd.Stdout = lw
		cmd.Stderr = lw
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	log.Debugw("exec", "cmd", c.String(), "stream", c.Stream)
	start := time.Now()
	err := cmd.Run()
	if lw != nil {
		lw.flush()
	}

	res := &Result{
		Output:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		res.Cancelled = true
		log.Debugw("exec cancelled", "cmd", c.String(), "after", res.Duration)
		return res, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			out := res.Stderr
			if strings.TrimSpace(out) == "" {
				out = res.Output
			}
			log.Warnw("exec failed", "cmd", c.String(), "code", res.ExitCode)
			return res, &ExitError{Command: c.String(), Code: res.ExitCode, Output: out}
		}
		res.ExitCode = -1
		log.Warnw("exec start failed", "cmd", c.String(), "error", err)
		return res, fmt.Errorf("%s: %w", c.Name, err)
	}

	log.Debugw("exec done", "cmd", c.String(), "took", res.Duration)
	return res, nil
}

// lineWriter splits child output into lines for OnLine and keeps a copy.
// stdout and stderr share one lineWriter so writes are serialized.
type lineWriter struct {
	mu      sync.Mutex
	onLine  func(string)
	buf     *bytes.Buffer
	partial []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		w.emit(string(w.partial[:i]))
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.partial) > 0 {
		w.emit(string(w.partial))
		w.partial = nil
	}
}

func (w *lineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if w.onLine != nil && strings.TrimSpace(line) != "" {
		w.onLine(line)
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
