package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/db"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
)

var (
	importEncoding string
	listCard       string
)

// paramsCmd groups the accounting parameter commands.
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Manage accounting parameters",
	Long: `Manage the debit/credit coordinates used to build ledger entries.

Parameters are matched by card name and by a keyword of the export intent
found in the parameter's motive. When several parameters match, the first
one imported wins.`,
}

var paramsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import parameters from a delimited file",
	Long: `Import parameters from a ';' or ',' separated file with a header row and
11 columns: card, motive, debit account, credit account, debit subaccount,
credit subaccount, fund, debit department, credit department, debit
restriction, credit restriction. Rows for unregistered cards are skipped.

Example:
  card-reconciler params import parametros.csv
  card-reconciler params import parametros.csv --encoding utf8`,
	Args: cobra.ExactArgs(1),
	Run:  runParamsImport,
}

var paramsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List parameters in resolution order",
	Run:   runParamsList,
}

var paramsRemoveCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove parameters by id",
	Args:  cobra.MinimumNArgs(1),
	Run:   runParamsRemove,
}

func init() {
	paramsImportCmd.Flags().StringVar(&importEncoding, "encoding", string(params.EncodingLatin1), "File encoding (latin1, utf8)")
	paramsListCmd.Flags().StringVar(&listCard, "card", "", "Only list parameters of this card")

	paramsCmd.AddCommand(paramsImportCmd)
	paramsCmd.AddCommand(paramsListCmd)
	paramsCmd.AddCommand(paramsRemoveCmd)
}

func runParamsImport(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	ctx := cmd.Context()
	cards, err := db.NewCardStore(env.conn).ListCards(ctx)
	exitOnError(err, "failed to list cards")
	if len(cards) == 0 {
		exitOnError(fmt.Errorf("no cards registered"), "run 'cards import' first")
	}

	f, err := os.Open(args[0])
	exitOnError(err, "failed to open parameters file")
	defer f.Close()

	imported, report, err := params.ImportParameters(f, params.Encoding(importEncoding), cards)
	exitOnError(err, "failed to read parameters file")

	err = db.NewParameterStore(env.conn).SaveParameters(ctx, imported)
	exitOnError(err, "failed to save parameters")

	slog.Info("Parameters imported", "accepted", report.Accepted, "skipped", report.Skipped)
	fmt.Printf("Imported %d parameters, skipped %d rows\n", report.Accepted, report.Skipped)
}

func runParamsList(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	store := db.NewParameterStore(env.conn)
	list, err := store.ListParameters(cmd.Context())
	exitOnError(err, "failed to list parameters")

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCARD\tMOTIVE\tDEBIT\tCREDIT\tFUND")
	for _, p := range list {
		if listCard != "" && !strings.EqualFold(strings.TrimSpace(p.CardName), strings.TrimSpace(listCard)) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\t%s/%s\t%s\n",
			p.ID, p.CardName, p.Motive,
			p.DebitAccount, p.DebitSubaccount,
			p.CreditAccount, p.CreditSubaccount,
			p.Fund,
		)
	}
	exitOnError(tw.Flush(), "failed to print parameters")
}

func runParamsRemove(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	store := db.NewParameterStore(env.conn)
	for _, id := range args {
		deleted, err := store.DeleteParameter(cmd.Context(), id)
		exitOnError(err, "failed to remove parameter")
		if deleted {
			fmt.Printf("removed    %s\n", id)
		} else {
			fmt.Printf("not found  %s\n", id)
		}
	}
}
