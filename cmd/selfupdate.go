package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/selfupdate"
)

var selfUpdateCmd = &cobra.Command{
	Use:     "self-update",
	Aliases: []string{"selfupdate"},
	Short:   "Check for a newer zap release",
	Args:    cobra.NoArgs,
	RunE:    runSelfUpdate,
}

func init() {
	rootCmd.AddCommand(selfUpdateCmd)
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	c := &selfupdate.Checker{Current: currentVersion}
	latest, err := c.Latest(cmd.Context())
	if err != nil {
		return fmt.Errorf("check for updates: %w", err)
	}
	if !selfupdate.Newer(latest.Tag, currentVersion) {
		a.printer.Success("zap %s is up to date (latest %s)", currentVersion, latest.Tag)
		return nil
	}
	a.printer.Warn("zap %s is available (you have %s)", latest.Tag, currentVersion)
	a.printer.KV("Download:", latest.URL)
	a.printer.Info("Re-run the install script to upgrade.")
	return nil
}
