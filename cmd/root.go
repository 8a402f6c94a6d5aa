// Package cmd implements the zap CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/dispatch"
	"github.com/broisnischal/zap/internal/ui"
)

var currentVersion = "dev"

// SetVersionInfo is called from main.go with values injected at build time via -ldflags.
// It must be called before Execute().
func SetVersionInfo(version, commit, date string) {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"zap %s (commit %s, built %s)\n", version, commit, date,
	))
	rootCmd.Version = version
	currentVersion = version
}

var (
	flagBackend string
	flagYes     bool
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "zap [packages...]",
	Short: "One package manager front end for every system",
	Long: `zap detects the package managers available on this machine and runs
search, install, info, update and list against the right one.

Examples:
  zap                        interactive search
  zap firefox                install firefox
  zap search ripgrep         search packages
  zap -b flatpak i spotify   install through a specific backend
  zap managers               show every backend and its availability`,
	RunE:          runRoot,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute is the main entry point called from main.go. It exits with the
// failing child's status when there is one, 1 on any other error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	ui.NewPrinter().Error(err)
	if hint := hintFor(err); hint != "" {
		fmt.Fprintln(os.Stderr, ui.Dim("  "+hint))
	}
	stop()
	os.Exit(dispatch.ExitCode(err))
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagBackend, "backend", "b", "", "backend to use: "+backendNames()+" or auto")
	pf.BoolVarP(&flagYes, "yes", "y", false, "answer yes to every prompt")
	pf.BoolVar(&flagDebug, "debug", false, "mirror the run log to stderr")
}

// runRoot opens interactive search, or installs the given packages.
func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runInteractive(cmd, "")
	}
	return runOp(cmd, dispatch.Command{Op: backend.OpInstall, Args: args})
}

func backendNames() string {
	names := make([]string, len(backend.AllIDs))
	for i, id := range backend.AllIDs {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, backend.ErrUnsupported):
		return "try another backend with --backend, see `zap managers`"
	case errors.Is(err, dispatch.ErrUsage):
		return "see `zap --help`"
	}
	return ""
}
