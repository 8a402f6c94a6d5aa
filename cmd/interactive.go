package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/live"
	"github.com/broisnischal/zap/internal/ui"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive [query]",
	Aliases: []string{"int"},
	Short:   "Search as you type and pick packages to install",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := ""
		if len(args) > 0 {
			seed = args[0]
		}
		return runInteractive(cmd, seed)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// runInteractive owns the terminal through the TUI, then installs the
// confirmed selection once the TUI has exited.
func runInteractive(cmd *cobra.Command, seed string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if !ui.IsTerminal(os.Stdin) || !a.tty {
		return errors.New("interactive search needs a terminal; use `zap search <query>` instead")
	}

	ctx := cmd.Context()
	b, err := a.resolve(ctx)
	if err != nil {
		return err
	}

	e := live.NewEngine(ctx, b, live.Options{
		Debounce: a.cfg.Debounce,
		MinQuery: a.cfg.MinQuery,
		Log:      a.log,
	})
	title := fmt.Sprintf("zap · %s", b.Descriptor().Name)
	// The TUI owns the terminal; --debug records go to the log file only.
	restore := a.log.Quiet()
	names, err := live.Run(ctx, e, title, seed)
	restore()
	if err != nil {
		return fmt.Errorf("interactive search: %w", err)
	}
	if len(names) == 0 {
		a.log.Infow("interactive search closed without selection")
		return nil
	}

	a.printer.Info("Installing %s with %s", strings.Join(names, ", "), b.ID())
	installed, res, err := e.Install(ctx)
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}
	a.printer.Summary("Installed", installed, res)
	return nil
}
