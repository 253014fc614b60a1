package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/ignore"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

var ignoreFlags sessionFlags

// ignoreCmd represents the ignore command.
var ignoreCmd = &cobra.Command{
	Use:   "ignore [id...]",
	Short: "Toggle or list ignored items",
	Long: `Toggle the ignore flag of transaction or allocation ids for a card and
competency. Ignored items are left out of matching and exports in every later
run. Without ids, the current ignore list is printed.

Example:
  card-reconciler ignore --card Visa --competency 2024-03 tx-17 al-4
  card-reconciler ignore --card Visa --competency 2024-03`,
	Run: runIgnore,
}

func init() {
	ignoreFlags.register(ignoreCmd.Flags(), false)
	ignoreCmd.MarkFlagRequired("card")
	ignoreCmd.MarkFlagRequired("competency")
}

func runIgnore(cmd *cobra.Command, args []string) {
	env := openEnvironment()
	defer env.Close()

	ctx := cmd.Context()
	competency := ignoreFlags.parseCompetency()
	registry, err := ignore.Load(ctx, env.ignore, ignoreFlags.card, competency)
	exitOnError(err, "failed to load ignore list")

	for _, id := range args {
		if registry.Toggle(ctx, id) {
			fmt.Printf("ignored    %s\n", id)
		} else {
			fmt.Printf("restored   %s\n", id)
		}
	}
	registry.Wait()

	if len(args) > 0 {
		slog.Info("Ignore list updated", "card", ignoreFlags.card, "toggled", len(args))
		return
	}

	ids := registry.IDs()
	if len(ids) == 0 {
		fmt.Println("No ignored items")
		return
	}
	for _, id := range ids {
		fmt.Println(ignoredLine(env, ignoreFlags.card, competency, id))
	}
}

// ignoredLine adds when the id was ignored if the store keeps that.
func ignoredLine(env *environment, cardName string, competency model.Competency, id string) string {
	if env.bolt == nil {
		return id
	}
	at, found, err := env.bolt.IgnoredAt(cardName, competency, id)
	if err != nil {
		slog.Warn("Failed to read ignore time", "id", id, "error", err)
		return id
	}
	if !found {
		return id
	}
	return fmt.Sprintf("%-20s %s", id, at.Local().Format("02/01/2006 15:04"))
}
