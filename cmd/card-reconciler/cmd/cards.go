package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/db"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
)

var cardsEncoding string

// cardsCmd groups the card registry commands.
var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Manage registered cards",
}

var cardsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import cards from a delimited file",
	Long: `Import cards from a ';' or ',' separated file with a header row and two
columns: card name and subaccount. Cards already registered are skipped.

Example:
  card-reconciler cards import cartoes.csv`,
	Args: cobra.ExactArgs(1),
	Run:  runCardsImport,
}

var cardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered cards",
	Run:   runCardsList,
}

func init() {
	cardsImportCmd.Flags().StringVar(&cardsEncoding, "encoding", string(params.EncodingLatin1), "File encoding (latin1, utf8)")

	cardsCmd.AddCommand(cardsImportCmd)
	cardsCmd.AddCommand(cardsListCmd)
}

func runCardsImport(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	ctx := cmd.Context()
	store := db.NewCardStore(env.conn)

	existing, err := store.ListCards(ctx)
	exitOnError(err, "failed to list cards")

	f, err := os.Open(args[0])
	exitOnError(err, "failed to open cards file")
	defer f.Close()

	cards, report, err := params.ImportCards(f, params.Encoding(cardsEncoding), existing)
	exitOnError(err, "failed to read cards file")

	exitOnError(store.SaveCards(ctx, cards), "failed to save cards")

	slog.Info("Cards imported", "accepted", report.Accepted, "skipped", report.Skipped)
	fmt.Printf("Imported %d cards, skipped %d rows\n", report.Accepted, report.Skipped)
}

func runCardsList(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	cards, err := db.NewCardStore(env.conn).ListCards(cmd.Context())
	exitOnError(err, "failed to list cards")

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSUBACCOUNT")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Subaccount)
	}
	exitOnError(tw.Flush(), "failed to print cards")
}
