package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/api"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/db"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/exportfile"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/ledger"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/session"
)

var (
	exportFlags   sessionFlags
	exportIntents []string
	exportGrouped bool
	exportIDs     []string
	exportDryRun  bool
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate import files for pending items",
	Long: `Generate double-entry import files for the items left over by the
reconciliation.

Each intent selects its accounting parameters by motive keyword and, unless
--ids is given, its default items:
  pending-transaction    unmatched statement transactions
  allocation-settlement  unmatched allocations
  return-to-card         unmatched statement transactions
  note-already-posted    out-of-period allocations

Intents are exported in the order given. An item covered by one intent is not
exported again by a later one in the same run.

Example:
  card-reconciler export --card Visa --competency 2024-03 --transactions tx.json --allocations alloc.json --intent pending-transaction
  card-reconciler export --card Visa --competency 2024-03 --transactions tx.json --allocations alloc.json --intent return-to-card --grouped --ids tx-3,al-9`,
	Run: runExport,
}

func init() {
	exportFlags.register(exportCmd.Flags(), true)
	exportCmd.Flags().StringSliceVar(&exportIntents, "intent", nil, fmt.Sprintf("Export intent, repeatable %v (required)", params.Intents))
	exportCmd.Flags().BoolVar(&exportGrouped, "grouped", false, "Build one entry for all selected items")
	exportCmd.Flags().StringSliceVar(&exportIDs, "ids", nil, "Item ids to export (default: the intent's pending items)")
	exportCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "Dry run mode (no file writes)")

	for _, name := range []string{"card", "competency", "transactions", "allocations", "intent"} {
		exportCmd.MarkFlagRequired(name)
	}
}

func runExport(cmd *cobra.Command, args []string) {
	var intents []params.Intent
	for _, name := range exportIntents {
		intent, err := params.ParseIntent(name)
		exitOnError(err, "invalid intent")
		intents = append(intents, intent)
	}

	mode := ledger.ModePerItem
	if exportGrouped {
		mode = ledger.ModeGrouped
	}

	env := openEnvironment()
	defer env.Close()

	ctx := cmd.Context()
	s := env.openSession(ctx, &exportFlags)
	defer s.Close()

	repo := exportfile.NewFileSystemRepository(env.paths)
	history := db.NewExportHistory(env.conn)

	written := 0
	for _, intent := range intents {
		out, err := s.Export(session.ExportRequest{Intent: intent, Mode: mode, IDs: exportIDs})
		switch {
		case errors.Is(err, ledger.ErrNothingToExport):
			fmt.Printf("%-22s nothing new to export\n", intent)
			continue
		case errors.Is(err, ledger.ErrNoParameters):
			fmt.Printf("%-22s no accounting parameters configured for %q (%d items left out)\n", intent, s.CardName(), out.Dropped)
			continue
		case err != nil:
			exitOnError(err, "failed to export")
		}

		if exportDryRun {
			fmt.Printf("%-22s [DRY RUN] %s: %d entries, %d left out\n", intent, out.FileName, len(out.Entries), out.Dropped)
			continue
		}

		path, err := repo.WriteExport(s.CardName(), s.Competency(), intent.FileSuffix(), out.Data)
		exitOnError(err, "failed to write export file")

		record := api.NewExportRecord(s.CardName(), s.Competency(), intent, out.Entries, path)
		if err := history.RecordExport(ctx, record); err != nil {
			slog.Error("Failed to record export", "path", path, "error", err)
		}

		fmt.Printf("%-22s %s: %d entries, %d left out\n", intent, path, len(out.Entries), out.Dropped)
		written++
	}

	slog.Info("Export completed", "card", s.CardName(), "files", written, "dry_run", exportDryRun)
}
