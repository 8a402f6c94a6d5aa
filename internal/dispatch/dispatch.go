// Package dispatch maps one parsed CLI command onto one backend operation
// and renders the result.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/logger"
	"github.com/broisnischal/zap/internal/runner"
	"github.com/broisnischal/zap/internal/selfupdate"
	"github.com/broisnischal/zap/internal/ui"
)

// ErrUsage marks a command invoked with the wrong arguments.
var ErrUsage = errors.New("usage")

// Command is one user request.
type Command struct {
	Op   backend.Op
	Args []string
	// ShowInfo, for search, prints details of the first hit.
	ShowInfo bool
}

// Notifier looks for a newer zap release.
type Notifier interface {
	Check(ctx context.Context) (*selfupdate.Release, error)
}

// Prompter asks a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Dispatcher runs commands against a resolved backend.
type Dispatcher struct {
	Backend  backend.Backend
	Printer  *ui.Printer
	Log      *logger.Logger
	Prompter Prompter
	AutoYes  bool

	// CheckUpdates enables the release check; it is false when the user
	// opted out through ZAP_DISABLE_UPDATE_CHECK.
	CheckUpdates bool
	Notifier     Notifier
	// NotifyWait bounds how long a finished command waits for the release
	// check. Default 2s.
	NotifyWait time.Duration

	// Spinner, when set, wraps captured operations.
	Spinner func(label string) *ui.Spinner
}

// Run executes c and prints its outcome.
func (d *Dispatcher) Run(ctx context.Context, c Command) error {
	log := logger.OrDiscard(d.Log)
	log.Infow("dispatch", "op", c.Op, "backend", d.Backend.ID(), "args", c.Args)

	notes := d.startCheck(ctx)
	err := d.run(ctx, c)
	if err != nil {
		log.Errorw("dispatch failed", "op", c.Op, "error", err)
	}
	d.finishCheck(notes)
	return err
}

func (d *Dispatcher) run(ctx context.Context, c Command) error {
	switch c.Op {
	case backend.OpSearch:
		return d.search(ctx, c)
	case backend.OpInstall:
		return d.install(ctx, c.Args)
	case backend.OpInfo:
		return d.info(ctx, c.Args)
	case backend.OpUpdate:
		return d.update(ctx)
	case backend.OpList:
		return d.list(ctx)
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrUsage, c.Op)
	}
}

func (d *Dispatcher) search(ctx context.Context, c Command) error {
	query := strings.TrimSpace(strings.Join(c.Args, " "))
	if query == "" {
		return fmt.Errorf("%w: search needs a query", ErrUsage)
	}
	if len(query) < backend.MinQuery {
		return fmt.Errorf("%w: query must be at least %d characters", ErrUsage, backend.MinQuery)
	}

	var pkgs []backend.Package
	err := d.spin(fmt.Sprintf("Searching %s for %q", d.Backend.ID(), query), func() error {
		var err error
		pkgs, err = d.Backend.Search(ctx, query)
		return err
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	d.Printer.Results(query, pkgs)

	if c.ShowInfo && len(pkgs) > 0 {
		return d.info(ctx, []string{pkgs[0].Name})
	}
	return nil
}

func (d *Dispatcher) install(ctx context.Context, names []string) error {
	names = nonEmpty(names)
	if len(names) == 0 {
		return fmt.Errorf("%w: install needs at least one package", ErrUsage)
	}
	d.Printer.Info("Installing %s with %s", strings.Join(names, ", "), d.Backend.ID())
	res, err := d.Backend.Install(ctx, names)
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}
	d.Printer.Summary("Installed", names, res)
	return nil
}

func (d *Dispatcher) info(ctx context.Context, args []string) error {
	args = nonEmpty(args)
	if len(args) != 1 {
		return fmt.Errorf("%w: info takes exactly one package", ErrUsage)
	}
	var pkg *backend.Package
	err := d.spin(fmt.Sprintf("Looking up %s", args[0]), func() error {
		var err error
		pkg, err = d.Backend.Info(ctx, args[0])
		return err
	})
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	d.Printer.Details(pkg)
	return nil
}

func (d *Dispatcher) update(ctx context.Context) error {
	if !d.Backend.Descriptor().Supports(backend.OpUpdate) {
		// Let the backend produce its typed error without prompting.
		_, err := d.Backend.Update(ctx)
		return fmt.Errorf("update: %w", err)
	}
	if !d.AutoYes {
		ok, err := d.confirm(fmt.Sprintf("Upgrade all %s packages?", d.Backend.ID()))
		if err != nil {
			return err
		}
		if !ok {
			d.Printer.Info("Cancelled.")
			return nil
		}
	}
	res, err := d.Backend.Update(ctx)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	d.Printer.Summary("Update complete", nil, res)
	return nil
}

func (d *Dispatcher) list(ctx context.Context) error {
	var pkgs []backend.Package
	err := d.spin(fmt.Sprintf("Listing %s packages", d.Backend.ID()), func() error {
		var err error
		pkgs, err = d.Backend.List(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	d.Printer.Installed(d.Backend.ID(), pkgs)
	return nil
}

func (d *Dispatcher) confirm(q string) (bool, error) {
	if d.Prompter == nil {
		return false, nil
	}
	return d.Prompter.Confirm(q)
}

func (d *Dispatcher) spin(label string, fn func() error) error {
	if d.Spinner == nil {
		return fn()
	}
	sp := d.Spinner(label)
	sp.Start()
	err := fn()
	sp.Stop(err)
	return err
}

// startCheck runs the release check concurrently with the command.
func (d *Dispatcher) startCheck(ctx context.Context) <-chan *selfupdate.Release {
	if !d.CheckUpdates || d.Notifier == nil {
		return nil
	}
	ch := make(chan *selfupdate.Release, 1)
	go func() {
		r, err := d.Notifier.Check(ctx)
		if err != nil {
			logger.OrDiscard(d.Log).Warnw("update check failed", "error", err)
		}
		ch <- r
	}()
	return ch
}

func (d *Dispatcher) finishCheck(ch <-chan *selfupdate.Release) {
	if ch == nil {
		return
	}
	wait := d.NotifyWait
	if wait == 0 {
		wait = 2 * time.Second
	}
	select {
	case r := <-ch:
		if r != nil {
			d.Printer.Warn("zap %s is available: %s", r.Tag, r.URL)
		}
	case <-time.After(wait):
	}
}

// ExitCode maps an error to the process exit status: a failing child's
// own status is propagated, anything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
