package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/broisnischal/zap/internal/config"
	"github.com/broisnischal/zap/internal/logger"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the latest run log",
	Long: `Show the log of the most recent zap run.
Use --follow to stream new lines in real time.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	flagFollow bool
	flagPath   bool
)

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&flagFollow, "follow", "f", false, "follow log output (like tail -f)")
	logsCmd.Flags().BoolVar(&flagPath, "path", false, "print the log file path only")
}

// runLogs reads the log directory directly so that it does not start a
// new run log of its own.
func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logPath := logger.LatestLogPath(cfg.LogDir)
	if logPath == "" {
		return fmt.Errorf("no logs found in %s", cfg.LogDir)
	}
	if flagPath {
		fmt.Println(logPath)
		return nil
	}

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(os.Stdout, f); err != nil {
		return err
	}
	if !flagFollow {
		return nil
	}

	// Follow mode: poll for new content until interrupted.
	ctx := cmd.Context()
	r := bufio.NewReader(f)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(300 * time.Millisecond):
		}
		if _, err := io.Copy(os.Stdout, r); err != nil {
			return err
		}
	}
}
