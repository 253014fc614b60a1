package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/exportfile"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/render"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/session"
)

var (
	reportFlags   sessionFlags
	reportFormat  string
	reportHeading string
	reportIDs     []string
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print or save a paginated report of pending items",
	Long: `Build a paginated report of the items left over by the reconciliation:
unmatched transactions, unmatched allocations and out-of-period allocations.

The text format is printed to stdout. The xlsx format is saved in the output
directory.

Example:
  card-reconciler report --card Visa --competency 2024-03 --transactions tx.json --allocations alloc.json
  card-reconciler report --card Visa --competency 2024-03 --transactions tx.json --allocations alloc.json --format xlsx`,
	Run: runReport,
}

func init() {
	reportFlags.register(reportCmd.Flags(), true)
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "Report format (text, xlsx)")
	reportCmd.Flags().StringVar(&reportHeading, "heading", "", "Report heading")
	reportCmd.Flags().StringSliceVar(&reportIDs, "ids", nil, "Item ids to include (default: every pending item)")

	for _, name := range []string{"card", "competency", "transactions", "allocations"} {
		reportCmd.MarkFlagRequired(name)
	}
}

func runReport(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	s := env.openSession(cmd.Context(), &reportFlags)
	defer s.Close()

	report := s.Report(session.ReportRequest{Heading: reportHeading, IDs: reportIDs})

	switch reportFormat {
	case "text":
		exitOnError(render.WriteText(os.Stdout, report), "failed to render report")
	case "xlsx":
		var buf bytes.Buffer
		exitOnError(render.WriteXLSX(&buf, report), "failed to render report")

		path, err := exportfile.NewFileSystemRepository(env.paths).WriteReport(s.CardName(), s.Competency(), "xlsx", buf.Bytes())
		exitOnError(err, "failed to write report")
		fmt.Printf("Report saved: %s (%d items, %d pages)\n", path, report.ItemCount, len(report.Pages))
	default:
		exitOnError(fmt.Errorf("unknown format %q", reportFormat), "invalid format")
	}
}
