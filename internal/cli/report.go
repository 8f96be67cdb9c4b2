// Package cli provides the command-line interface for tradelens.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
)

// reportDayCount is how many recent days the daily table shows by default.
const reportDayCount = 10

const headerWidth = 60

// addReportCommands adds the reporting commands backed by stored results.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newWeeklyCmd(app))
	rootCmd.AddCommand(newCalendarCmd(app))
	rootCmd.AddCommand(newPeriodsCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the full report for the latest analysis",
		Long: `Render the complete P&L report from the most recent stored analysis:
daily tables, charts, weekly breakdowns, and monthly calendars.`,
		Example: `  # Full report from the latest run
  tradelens report

  # Show the last 20 days in the daily table
  tradelens report --days 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			days, _ := cmd.Flags().GetInt("days")

			summary, err := latestSummary(ctx, app, output)
			if err != nil || summary == nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(summary)
			}
			renderFullReport(output, summary, days)
			return nil
		},
	}

	cmd.Flags().Int("days", reportDayCount, "number of recent days in the daily table")

	return cmd
}

// latestSummary loads the most recent stored run. A nil summary with nil
// error means nothing is stored yet and a hint was already printed.
func latestSummary(ctx context.Context, app *App, output *Output) (*models.TradingSummary, error) {
	if app.Store == nil {
		output.Warning("Store unavailable, no stored results to show.")
		return nil, nil
	}
	run, err := app.Store.LatestRun(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoData) {
			output.Warning("No analysis found. Run 'tradelens analyze' first.")
			return nil, nil
		}
		return nil, err
	}
	return run.Summary, nil
}

// renderFullReport renders every report section in reading order: recent
// daily tables, charts, weekly breakdowns, and the monthly calendars.
func renderFullReport(output *Output, summary *models.TradingSummary, days int) {
	if days <= 0 {
		days = reportDayCount
	}
	renderSummaryTables(output, summary, days)
	renderPnLChart(output, summary.DailySummaries)
	renderDailyBars(output, summary.DailySummaries)
	renderGrossBars(output, summary.DailySummaries)
	renderWinRateChart(output, summary.DailySummaries)
	if last := lastDay(summary); last != nil {
		renderHourlyDistribution(output, last)
	}
	renderWeeklyAnalysis(output, summary)
	renderCombinedCalendars(output, summary.DailySummaries)
}

func lastDay(summary *models.TradingSummary) *models.DailySummary {
	if len(summary.DailySummaries) == 0 {
		return nil
	}
	return &summary.DailySummaries[len(summary.DailySummaries)-1]
}

func renderSummaryTables(output *Output, summary *models.TradingSummary, days int) {
	banner := strings.Repeat("=", headerWidth)
	output.Println(banner)
	output.Bold("%s", Center("📊 TRADELENS TRADE ANALYSIS", headerWidth))
	output.Println(banner)

	dailies := summary.DailySummaries
	if len(dailies) == 0 {
		output.Println()
		output.Warning("No trading days in this analysis.")
		return
	}

	recent := dailies
	if len(recent) > days {
		recent = recent[len(recent)-days:]
	}

	// All but the most recent day go in the brief table; the most recent
	// day gets the detailed block below.
	if len(recent) > 1 {
		output.Println()
		output.Bold("📋 Recent Days")
		table := NewTable(output, "Date", "Trades", "Win %", "Best", "Worst", "Day P&L")
		for _, d := range recent[:len(recent)-1] {
			table.AddRow(
				FormatDate(d.Date),
				fmt.Sprintf("%d", d.TotalTrades),
				output.FormatWinRate(d.WinRate),
				FormatUSD(d.LargestWin),
				FormatUSD(d.LargestLoss),
				output.FormatPnL(d.RealizedPnL),
			)
		}
		table.Render()
	}

	last := recent[len(recent)-1]
	renderDayDetail(output, last)
	renderDayHourlyTable(output, last)
	renderOverallStats(output, summary)
}

func renderDayDetail(output *Output, d models.DailySummary) {
	output.Println()
	output.Bold("📅 %s (%s)", FormatDate(d.Date), d.Date.Weekday())

	printRow := func(label, value string) {
		output.Printf("  %-20s %s\n", label, value)
	}

	printRow("Total Trades:", fmt.Sprintf("%d", d.TotalTrades))
	printRow("Winning Trades:", output.Green(fmt.Sprintf("%d", d.WinningTrades)))
	printRow("Losing Trades:", output.Red(fmt.Sprintf("%d", d.LosingTrades)))
	printRow("Win Rate:", output.FormatWinRate(d.WinRate))
	printRow("Realized P&L:", output.BoldText(output.FormatPnL(d.RealizedPnL)))
	printRow("Gross P&L:", output.FormatPnL(d.GrossPnL))
	printRow("Commission Paid:", FormatUSD(d.TotalCommission))
	printRow("Total $ Traded:", FormatUSD(d.TotalVolume))
	printRow("Average Win:", FormatUSD(d.AvgWin))
	printRow("Average Loss:", FormatUSD(d.AvgLoss))
	printRow("Largest Win:", output.Green(FormatUSD(d.LargestWin)))
	printRow("Largest Loss:", output.Red(FormatUSD(d.LargestLoss)))
	if pf, ok := d.ProfitFactor(); ok {
		printRow("Profit Factor:", pf.StringFixed(2))
	}
	printRow("Symbols Traded:", fmt.Sprintf("%d", len(d.SymbolsTraded)))
}

func renderDayHourlyTable(output *Output, d models.DailySummary) {
	if len(d.TimeSlots) == 0 {
		return
	}

	output.Println()
	output.Bold("🕐 Hourly Breakdown")
	table := NewTable(output, "Hour", "Trades", "Win %", "P&L")
	for _, slot := range d.TimeSlots {
		table.AddRow(
			fmt.Sprintf("%02d:00-%02d:00", slot.Hour, slot.Hour+1),
			fmt.Sprintf("%d", slot.Trades),
			output.FormatWinRate(slot.WinRate),
			output.FormatPnL(slot.PnL),
		)
	}
	table.Render()
}

func renderOverallStats(output *Output, summary *models.TradingSummary) {
	output.Println()
	output.Bold("📈 Overall Statistics")

	printRow := func(label, value string) {
		output.Printf("  %-20s %s\n", label, value)
	}

	printRow("Trading Period:", fmt.Sprintf("%s to %s (%d trading days)",
		FormatDate(summary.StartDate), FormatDate(summary.EndDate), len(summary.DailySummaries)))
	printRow("Total P&L:", output.BoldText(output.FormatPnL(summary.TotalPnL)))
	printRow("Total Volume:", FormatUSD(summary.TotalVolume))
	printRow("Total Trades:", fmt.Sprintf("%d", summary.TotalTrades))
	printRow("Overall Win Rate:", output.FormatWinRate(summary.OverallWinRate))

	if summary.BestDay != nil {
		printRow("Best Day:", fmt.Sprintf("%s (%s)",
			FormatDate(summary.BestDay.Date), output.FormatPnL(summary.BestDay.PnL)))
	}
	if summary.WorstDay != nil {
		printRow("Worst Day:", fmt.Sprintf("%s (%s)",
			FormatDate(summary.WorstDay.Date), output.FormatPnL(summary.WorstDay.PnL)))
	}
	if summary.MostProfitableHour != nil {
		h := summary.MostProfitableHour
		printRow("Best Hour:", fmt.Sprintf("%02d:00-%02d:00 (%s)",
			h.Hour, h.Hour+1, output.FormatPnL(h.PnL)))
	}
	if summary.LeastProfitableHour != nil {
		h := summary.LeastProfitableHour
		printRow("Worst Hour:", fmt.Sprintf("%02d:00-%02d:00 (%s)",
			h.Hour, h.Hour+1, output.FormatPnL(h.PnL)))
	}
}
