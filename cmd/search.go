package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/dispatch"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Aliases: []string{"s"},
	Short:   "Search packages",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSearch,
}

var (
	flagSearchInfo        bool
	flagSearchInteractive bool
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&flagSearchInfo, "info", false, "show details of the first result")
	searchCmd.Flags().BoolVarP(&flagSearchInteractive, "interactive", "I", false, "pick results to install in interactive search")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if flagSearchInteractive {
		return runInteractive(cmd, strings.Join(args, " "))
	}
	return runOp(cmd, dispatch.Command{Op: backend.OpSearch, Args: args, ShowInfo: flagSearchInfo})
}
