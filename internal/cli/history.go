// Package cli provides the command-line interface for tradelens.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			limit, _ := cmd.Flags().GetInt("limit")

			if app.Store == nil {
				output.Warning("Store unavailable, no run history to show.")
				return nil
			}

			runs, err := app.Store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				output.Info("No stored runs. Run 'tradelens analyze' first.")
				return nil
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}

			output.Bold("🗂  Analysis Runs")
			table := NewTable(output, "ID", "Created", "Period", "Trades", "P&L")
			for _, r := range runs {
				table.AddRow(
					shortID(r.ID),
					FormatDateTime(r.CreatedAt),
					fmt.Sprintf("%s - %s", FormatDate(r.StartDate), FormatDate(r.EndDate)),
					fmt.Sprintf("%d", r.TotalTrades),
					output.FormatPnL(r.TotalPnL),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "maximum number of runs to list")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
