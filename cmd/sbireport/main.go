// Command sbireport builds spending reports from Sumishin SBI Net Bank
// debit-card notification emails in Gmail.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayane-dev/sbireport/pkg/logging"
)

var (
	configPath string
	logger     *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "sbireport",
		Short: "Debit-card spending reports from Gmail notifications",
		Long: `sbireport searches Gmail for debit-card usage notifications from
Sumishin SBI Net Bank, extracts the transactions and writes CSV reports
plus a terminal summary.`,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "config file path")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dumpCmd)
}

func initLogging() {
	logger = logging.Setup(logging.FromEnv())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
