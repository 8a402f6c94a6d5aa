package cmd

import (
	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/backend"
	"github.com/broisnischal/zap/internal/dispatch"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Upgrade installed packages",
	Long: `Runs the active backend's upgrade command (refreshing its package index
first where the backend needs it) after confirmation. Use --yes to skip
the prompt.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return runOp(cmd, dispatch.Command{Op: backend.OpUpdate})
}
