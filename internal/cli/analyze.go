// Package cli provides the command-line interface for tradelens.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradelens/internal/analytics"
	apperrors "tradelens/internal/errors"
	"tradelens/internal/logging"
	"tradelens/internal/models"
	"tradelens/internal/parser"
)

// addAnalyzeCommands adds the analysis pipeline commands.
func addAnalyzeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Parse trade CSVs and compute P&L summaries",
		Long: `Parse broker trade exports from the source directory, reconcile fills
into round trips, and compute daily, hourly, and weekly P&L summaries.

Only files not seen before are processed; results are stored in the
local database and shown immediately. Use --all to reprocess everything.`,
		Example: `  # Analyze new files from the configured source directory
  tradelens analyze

  # Analyze files from a specific directory
  tradelens analyze --source ~/Downloads/fills

  # Reprocess every file, including already-analyzed ones
  tradelens analyze --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			sourceDir, _ := cmd.Flags().GetString("source")
			if sourceDir == "" {
				sourceDir = app.Config.Data.SourceDir
			}
			reprocessAll, _ := cmd.Flags().GetBool("all")

			return runAnalyze(ctx, app, output, sourceDir, reprocessAll)
		},
	}

	cmd.Flags().String("source", "", "directory with trade CSV files (default: configured source_dir)")
	cmd.Flags().Bool("all", false, "reprocess all files, not just new ones")

	return cmd
}

func runAnalyze(ctx context.Context, app *App, output *Output, sourceDir string, reprocessAll bool) error {
	logger := logging.WithOperation(app.Logger, "analyze")

	if _, err := os.Stat(sourceDir); err != nil {
		return fmt.Errorf("source directory %s: %w", sourceDir, err)
	}

	names, err := listCSVFiles(sourceDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		output.Warning("No CSV files found in %s", sourceDir)
		return nil
	}

	fresh := names
	if !reprocessAll && app.Store != nil {
		fresh, err = app.Store.NewFiles(ctx, names)
		if err != nil {
			return err
		}
	}

	if len(fresh) == 0 {
		output.Success("✓ All %d files already processed.", len(names))
		return showStoredReport(ctx, app, output)
	}

	if !output.IsJSON() {
		color.Cyan("📊 Analyzing %d of %d files in %s", len(fresh), len(names), sourceDir)
		output.Println()
	}

	trades, err := parseFiles(output, logger, sourceDir, fresh)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		output.Warning("No trade rows found in the selected files.")
		return nil
	}

	analyzer := analytics.NewAnalyzer(
		analytics.WithWorkers(app.Config.Analysis.Workers),
		analytics.WithSink(analytics.LogSink{Logger: logger}),
	)

	start := time.Now()
	summary, err := analyzer.Analyze(trades)
	if err != nil {
		return err
	}

	run := &models.AnalysisRun{Summary: summary}
	if app.Store != nil {
		if err := persistResults(ctx, app, logger, run, fresh); err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	logging.LogAnalysis(logger, run.ID, len(summary.DailySummaries), summary.TotalTrades,
		summary.TotalPnL.StringFixed(2), elapsed)

	if output.IsJSON() {
		return output.JSON(summary)
	}

	color.Green("✓ Analyzed %d fills across %d days in %s",
		len(trades), len(summary.DailySummaries), FormatDuration(elapsed))
	renderFullReport(output, summary, reportDayCount)
	renderBestPeriods(output, analytics.BestTradingPeriods(trades), 3)
	return nil
}

// listCSVFiles returns the sorted base names of CSV files in dir.
func listCSVFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

// parseFiles parses each trades export and drops duplicate fills, both
// within a file and across overlapping exports.
func parseFiles(output *Output, logger zerolog.Logger, sourceDir string, names []string) ([]models.TradeRecord, error) {
	var all []models.TradeRecord
	for _, name := range names {
		path := filepath.Join(sourceDir, name)

		format, err := parser.DetectFormat(path)
		if err != nil {
			return nil, err
		}
		if format != parser.FormatTrades {
			output.Warning("Skipping %s: not a trades export", name)
			logger.Warn().Str("file", name).Str("format", string(format)).Msg("Skipping file")
			continue
		}

		rows, err := parser.ParseTradesFile(path)
		if err != nil {
			return nil, err
		}
		deduped, dupes := parser.Dedupe(rows)
		logging.LogParse(logger, name, len(rows), dupes)

		if !output.IsJSON() {
			output.Printf("  📄 %s: %d fills", name, len(deduped))
			if dupes > 0 {
				output.Printf(" (%d duplicates removed)", dupes)
			}
			output.Println()
		}
		all = append(all, deduped...)
	}

	trades, crossDupes := parser.Dedupe(all)
	if crossDupes > 0 {
		output.Warning("Removed %d duplicate fills repeated across files", crossDupes)
	}
	return trades, nil
}

// persistResults saves the run, upserts the daily summaries, and marks the
// source files processed.
func persistResults(ctx context.Context, app *App, logger zerolog.Logger, run *models.AnalysisRun, files []string) error {
	start := time.Now()
	err := app.Store.SaveRun(ctx, run)
	logging.LogStore(logger, "save run", time.Since(start), err)
	if err != nil {
		return err
	}

	start = time.Now()
	err = app.Store.SaveDailySummaries(ctx, run.Summary.DailySummaries)
	logging.LogStore(logger, "save dailies", time.Since(start), err)
	if err != nil {
		return err
	}

	start = time.Now()
	err = app.Store.MarkProcessed(ctx, files)
	logging.LogStore(logger, "mark processed", time.Since(start), err)
	return err
}

// showStoredReport renders the most recent stored analysis.
func showStoredReport(ctx context.Context, app *App, output *Output) error {
	if app.Store == nil {
		output.Warning("Store unavailable, nothing to show.")
		return nil
	}

	run, err := app.Store.LatestRun(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoData) {
			output.Warning("No stored analysis found. Run with --all to reprocess.")
			return nil
		}
		return err
	}

	if output.IsJSON() {
		return output.JSON(run.Summary)
	}

	output.Dim("Showing stored results from %s", FormatDateTime(run.CreatedAt))
	output.Println()
	renderFullReport(output, run.Summary, reportDayCount)
	return nil
}

// renderBestPeriods shows the top intraday session windows ranked by P&L.
func renderBestPeriods(output *Output, periods []models.TradingPeriod, top int) {
	active := make([]models.TradingPeriod, 0, len(periods))
	for _, p := range periods {
		if p.TotalTrades > 0 {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return
	}
	if top > 0 && len(active) > top {
		active = active[:top]
	}

	output.Println()
	output.Bold("🏆 Best Trading Periods")
	medals := []string{"🥇", "🥈", "🥉"}
	for i, p := range active {
		medal := "  "
		if i < len(medals) {
			medal = medals[i]
		}
		output.Printf("  %s %s (%02d:00-%02d:00): %s | Win Rate: %.1f%%\n",
			medal, p.Name, p.StartHour, p.EndHour, output.FormatPnL(p.TotalPnL), p.WinRate)
	}
}
