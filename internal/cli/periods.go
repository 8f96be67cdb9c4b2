// Package cli provides the command-line interface for tradelens.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tradelens/internal/analytics"
	"tradelens/internal/models"
	"tradelens/internal/parser"
)

func newPeriodsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Rank intraday session windows by P&L",
		Long: `Rank the named intraday session windows (pre-market, market open,
lunch, power hour, after hours) by total P&L across every processed
file.

Each fill is scored by its own net amount and counted in the window
its timestamp falls in, so entries and exits can land in different
windows.`,
		Example: `  # Rank all session windows
  tradelens periods

  # Show only the top three
  tradelens periods --top 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			top, _ := cmd.Flags().GetInt("top")
			sourceDir, _ := cmd.Flags().GetString("source")
			if sourceDir == "" {
				sourceDir = app.Config.Data.SourceDir
			}

			return runPeriods(ctx, app, output, sourceDir, top)
		},
	}

	cmd.Flags().Int("top", 0, "show only the top N sessions (0 for all)")
	cmd.Flags().String("source", "", "directory with trade CSV files (default: configured source_dir)")

	return cmd
}

func runPeriods(ctx context.Context, app *App, output *Output, sourceDir string, top int) error {
	if app.Store == nil {
		output.Warning("Store unavailable, no processed files to rank.")
		return nil
	}

	names, err := app.Store.ProcessedFiles(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		output.Warning("No processed files. Run 'tradelens analyze' first.")
		return nil
	}

	var all []models.TradeRecord
	for _, name := range names {
		path := filepath.Join(sourceDir, name)
		if _, err := os.Stat(path); err != nil {
			output.Warning("Skipping %s: no longer in %s", name, sourceDir)
			continue
		}
		rows, err := parser.ParseTradesFile(path)
		if err != nil {
			return err
		}
		all = append(all, rows...)
	}

	trades, _ := parser.Dedupe(all)
	if len(trades) == 0 {
		output.Warning("No trade rows found in the processed files.")
		return nil
	}

	periods := analytics.BestTradingPeriods(trades)
	if top > 0 && len(periods) > top {
		periods = periods[:top]
	}

	if output.IsJSON() {
		return output.JSON(periods)
	}

	output.Bold("🏆 Trading Sessions by P&L")
	table := NewTable(output, "Rank", "Session", "Window", "Trades", "P&L", "Win %", "Avg/Trade")
	medals := []string{"🥇", "🥈", "🥉"}
	for i, p := range periods {
		rank := fmt.Sprintf("%d", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		table.AddRow(
			rank,
			p.Name,
			fmt.Sprintf("%02d:00-%02d:00", p.StartHour, p.EndHour),
			fmt.Sprintf("%d", p.TotalTrades),
			output.FormatPnL(p.TotalPnL),
			output.FormatWinRate(p.WinRate),
			output.FormatPnL(p.AvgPnL),
		)
	}
	table.Render()
	return nil
}
