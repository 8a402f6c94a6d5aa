package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/bootstrap"
	"github.com/broisnischal/zap/internal/config"
	"github.com/broisnischal/zap/internal/detect"
	"github.com/broisnischal/zap/internal/dispatch"
	"github.com/broisnischal/zap/internal/logger"
	"github.com/broisnischal/zap/internal/runner"
	"github.com/broisnischal/zap/internal/selector"
	"github.com/broisnischal/zap/internal/selfupdate"
	"github.com/broisnischal/zap/internal/ui"
)

// app wires one invocation: settings, the run log, and the backend stack.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	printer  *ui.Printer
	prompter *ui.Prompter
	runner   runner.Runner
	registry *backend.Registry
	detector *detect.Detector
	host     detect.Host
	boot     *bootstrap.Manager
	selector *selector.Selector
	tty      bool
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = flagBackend
	}
	if flags.Changed("yes") {
		cfg.Yes = flagYes
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}

	log, err := logger.New(cfg.LogDir, cfg.Debug)
	if err != nil {
		// The run log is best effort; commands still work without it.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		log = logger.NewDiscard()
	}
	log.Infow("zap start", "version", currentVersion, "command", cmd.CommandPath(), "config", cfg.Path)

	a := &app{
		cfg:      cfg,
		log:      log,
		printer:  ui.NewPrinter(),
		prompter: ui.NewPrompter(),
		tty:      ui.IsTerminal(os.Stdout),
	}
	a.runner = runner.New(log)

	table, err := backend.LoadTable(backend.LoadOptions{LocalOverride: cfg.BackendsFile})
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("load backends: %w", err)
	}

	root := os.Geteuid() == 0
	a.registry = backend.NewRegistry(table, backend.Env{
		Runner:    a.runner,
		Log:       log,
		GOOS:      runtime.GOOS,
		Root:      root,
		OnLine:    a.printer.Line,
		UserAgent: "zap/" + currentVersion,
	})

	a.host, err = detect.CurrentHost()
	if err != nil {
		log.Warnw("read os-release", "error", err)
	}
	a.detector = &detect.Detector{Table: table, LookPath: a.runner.LookPath}

	a.boot = &bootstrap.Manager{
		Registry: a.registry,
		Runner:   a.runner,
		Prompter: a.prompter,
		AutoYes:  cfg.Yes,
		GOOS:     runtime.GOOS,
		Root:     root,
		Log:      log,
		OnLine:   a.printer.Line,
	}
	a.selector = &selector.Selector{
		Registry:   a.registry,
		Bootstrap:  a.boot,
		Candidates: func() []backend.ID { return a.detector.Candidates(a.host) },
		Log:        log,
	}
	return a, nil
}

func (a *app) close() { a.log.Close() }

func (a *app) resolve(ctx context.Context) (backend.Backend, error) {
	b, err := a.selector.Resolve(ctx, a.cfg.Backend)
	if err != nil {
		return nil, err
	}
	a.log.Infow("backend", "id", b.ID(), "name", b.Descriptor().Name)
	return b, nil
}

func (a *app) dispatcher(b backend.Backend) *dispatch.Dispatcher {
	d := &dispatch.Dispatcher{
		Backend:      b,
		Printer:      a.printer,
		Log:          a.log,
		Prompter:     a.prompter,
		AutoYes:      a.cfg.Yes,
		CheckUpdates: !a.cfg.DisableUpdateCheck,
		Notifier:     &selfupdate.Checker{Current: currentVersion},
	}
	if a.tty {
		d.Spinner = func(label string) *ui.Spinner { return ui.NewSpinner(os.Stderr, label, true) }
	}
	return d
}

// runOp resolves the backend and dispatches c.
func runOp(cmd *cobra.Command, c dispatch.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	b, err := a.resolve(cmd.Context())
	if err != nil {
		return err
	}
	return a.dispatcher(b).Run(cmd.Context(), c)
}
