package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragchat-client/internal/pkg/logger"
)

var (
	logsLevel  string
	logsLimit  int
	logsOffset int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent client log entries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		var reader logger.LogReader = logger.NewIsolatedLogger(cfg.App.LogFilePath, cfg.App.Debug)

		entries, err := reader.GetLogs(logsLevel, logsLimit, logsOffset)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", cfg.App.LogFilePath, err)
		}
		for _, e := range entries {
			c := faintColor
			switch e.Level {
			case "warn":
				c = warnColor
			case "error":
				c = errorColor
			}
			c.Fprintf(os.Stdout, "%s %-5s ", e.Timestamp, e.Level)
			if e.Module != "" {
				headerColor.Fprintf(os.Stdout, "[%s] ", e.Module)
			}
			fmt.Fprintln(os.Stdout, e.Message)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Only entries of this level (debug, info, warn, error)")
	logsCmd.Flags().IntVar(&logsLimit, "limit", 50, "Maximum entries")
	logsCmd.Flags().IntVar(&logsOffset, "offset", 0, "Skip this many newest entries")
	rootCmd.AddCommand(logsCmd)
}
