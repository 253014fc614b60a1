// Package cmd provides CLI commands for card-reconciler.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "card-reconciler",
	Short: "Reconcile corporate card statements against accounting allocations",
	Long: `card-reconciler matches the transactions billed on a corporate card
statement against the allocation entries recorded by accounting, for one card
and one competency (YYYY-MM), and generates double-entry import files for
whatever is left over.

It supports:
- Amount-based matching with out-of-period detection
- Durable ignore lists per card and competency
- Import files in the accounting software's delimited format
- Paginated reports as text or xlsx
- An HTTP API for interactive sessions

Example:
  card-reconciler reconcile --card Visa --competency 2024-03 --transactions tx.json --allocations alloc.json
  card-reconciler export --card Visa --competency 2024-03 --transactions tx.json --allocations alloc.json --intent pending-transaction
  card-reconciler serve`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug || os.Getenv("DEBUG") == "true" {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(ignoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	return cfgFile
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
