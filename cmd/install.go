package cmd

import (
	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/dispatch"
)

var installCmd = &cobra.Command{
	Use:     "install <packages...>",
	Aliases: []string{"i"},
	Short:   "Install packages",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, dispatch.Command{Op: backend.OpInstall, Args: args})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <package>",
	Short: "Show package details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, dispatch.Command{Op: backend.OpInfo, Args: args})
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed packages",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, dispatch.Command{Op: backend.OpList})
	},
}

func init() {
	rootCmd.AddCommand(installCmd, infoCmd, listCmd)
}
