package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/db"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/exportfile"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/render"
)

var (
	statsCard       string
	statsCompetency string
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display storage and export statistics",
	Long: `Display statistics about registered cards, parameters, ignored items and
generated files.

With --card and --competency, also lists the exports recorded for that
session and the files present in the output directory.

Example:
  card-reconciler stats
  card-reconciler stats --card Visa --competency 2024-03`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsCard, "card", "", "Card name")
	statsCmd.Flags().StringVar(&statsCompetency, "competency", "", "Competency (YYYY-MM)")
}

func runStats(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	ctx := cmd.Context()
	stats, err := db.GetStats(ctx, env.conn)
	exitOnError(err, "failed to get statistics")

	// Display statistics
	fmt.Println("\n=== Reconciler Statistics ===")
	fmt.Printf("Registered cards:      %d\n", stats.TotalCards)
	fmt.Printf("Accounting parameters: %d\n", stats.TotalParameters)
	fmt.Printf("Ignored items:         %d\n", stats.TotalIgnored)
	fmt.Printf("Generated files:       %d\n", stats.TotalExports)

	if stats.LastExport.Valid {
		fmt.Printf("Last export:           %s\n", stats.LastExport.String)
	} else {
		fmt.Printf("Last export:           (never)\n")
	}

	if statsCard != "" && statsCompetency != "" {
		competency, err := model.ParseCompetency(statsCompetency)
		exitOnError(err, "invalid competency")

		records, err := db.NewExportHistory(env.conn).GetExports(ctx, statsCard, competency.String())
		exitOnError(err, "failed to get exports")

		fmt.Printf("\n--- %s - %s ---\n", statsCard, competency.Label())
		for _, r := range records {
			fmt.Printf("%s  %-22s %3d entries  %s  %s\n",
				r.ExportedAt.Format("2006-01-02 15:04"), r.Intent, r.EntryCount,
				render.FormatBRL(decimal.New(r.AmountCents, -2)), r.FilePath)
		}

		files, err := exportfile.NewFileSystemRepository(env.paths).ListExports(competency)
		exitOnError(err, "failed to list export files")
		fmt.Printf("Files in %s: %d\n", env.paths.GetCompetencyDir(competency), len(files))
	}

	fmt.Println()

	slog.Info("Statistics displayed successfully")
}
