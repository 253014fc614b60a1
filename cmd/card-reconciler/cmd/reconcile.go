package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/render"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/session"
)

var (
	reconcileFlags sessionFlags
	reconcileJSON  bool
)

// reconcileCmd represents the reconcile command.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match statement transactions against allocations",
	Long: `Match the statement transactions of a card against the allocation
entries of a competency and list what is left over.

Ignored items are excluded before matching. Allocations whose posting date
(or fact date) falls outside the competency are listed as out of period.

Example:
  card-reconciler reconcile --card Visa --competency 2024-03 --transactions tx.json --allocations alloc.json
  card-reconciler reconcile --card Visa --competency 2024-03 --transactions tx.json --allocations alloc.json --json`,
	Run: runReconcile,
}

func init() {
	reconcileFlags.register(reconcileCmd.Flags(), true)
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Print the full result as JSON")

	for _, name := range []string{"card", "competency", "transactions", "allocations"} {
		reconcileCmd.MarkFlagRequired(name)
	}
}

func runReconcile(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	s := env.openSession(cmd.Context(), &reconcileFlags)
	defer s.Close()

	result := s.Recompute()

	if reconcileJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		exitOnError(enc.Encode(result), "failed to encode result")
		return
	}

	summary := result.Summary()
	fmt.Printf("\n=== %s - %s ===\n", s.CardName(), s.Competency().Label())
	fmt.Printf("Reconciled:              %d\n", summary.Reconciled)
	fmt.Printf("Pending transactions:    %d\n", summary.PendingTransactions)
	fmt.Printf("Pending allocations:     %d\n", summary.PendingAllocations)
	fmt.Printf("Out of period:           %d\n", summary.OutOfPeriod)
	fmt.Printf("Ignored:                 %d\n", summary.IgnoredTransactions+summary.IgnoredAllocations)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if len(result.Reconciled) > 0 {
		fmt.Fprintln(tw, "\nRECONCILED\t\t\t")
		for _, pair := range result.Reconciled {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", pair.Transaction.ID, pair.Transaction.Description, pair.Allocation.Description, render.FormatBRL(pair.Transaction.Amount))
		}
	}
	printItems(tw, "PENDING TRANSACTIONS", model.TransactionItems(result.UnmatchedTransactions))
	printItems(tw, "PENDING ALLOCATIONS", model.AllocationItems(result.UnmatchedAllocations))
	printItems(tw, "OUT OF PERIOD", model.AllocationItems(result.OutOfPeriodAllocations))
	printParameters(tw, s.ParameterUses())
	exitOnError(tw.Flush(), "failed to print result")
	fmt.Println()
}

func printItems(tw *tabwriter.Writer, heading string, items []model.SourceItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(tw, "\n%s\t\t\t\n", heading)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.ID, item.Date, item.Description, render.FormatBRL(item.Amount))
	}
}

func printParameters(tw *tabwriter.Writer, uses []session.ParameterUse) {
	if len(uses) == 0 {
		fmt.Fprintf(tw, "\nNo accounting parameters for this card; exports will be empty\t\t\t\n")
		return
	}
	fmt.Fprintf(tw, "\nPARAMETERS\t\t\t\n")
	for _, use := range uses {
		intents := make([]string, len(use.Intents))
		for i, intent := range use.Intents {
			intents[i] = string(intent)
		}
		if len(intents) == 0 {
			intents = append(intents, "-")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s / %s\t%s\n", use.Parameter.ID, use.Parameter.Motive,
			use.Parameter.DebitAccount, use.Parameter.CreditAccount, strings.Join(intents, ","))
	}
}
