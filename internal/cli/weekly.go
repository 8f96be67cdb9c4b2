// Package cli provides the command-line interface for tradelens.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tradelens/internal/models"
)

func newWeeklyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Show the weekly breakdown for the latest analysis",
		Long: `Render week-by-week P&L from the most recent stored analysis: recent
weeks, P&L and win-rate bars, commission impact, and the current week
in detail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			summary, err := latestSummary(ctx, app, output)
			if err != nil || summary == nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(summary.WeeklySummaries)
			}
			renderWeeklyAnalysis(output, summary)
			return nil
		},
	}
}

// renderWeeklyAnalysis renders every weekly section in reading order.
func renderWeeklyAnalysis(output *Output, summary *models.TradingSummary) {
	weeks := summary.WeeklySummaries
	if len(weeks) == 0 {
		return
	}

	output.Println()
	output.Println(strings.Repeat("=", headerWidth))
	output.Bold("%s", Center("📅 WEEKLY ANALYSIS", headerWidth))
	output.Println(strings.Repeat("=", headerWidth))

	renderRecentWeeksTable(output, weeks)
	renderWeeklyPnLBars(output, weeks)
	renderWeeklyWinRates(output, weeks)
	renderWeekExtremes(output, summary)
	renderWeeklyCommissionImpact(output, weeks)
	renderCurrentWeekDetail(output, weeks[len(weeks)-1])
}

func renderRecentWeeksTable(output *Output, weeks []models.WeeklySummary) {
	recent := recentWeeks(weeks, 6)

	output.Println()
	output.Bold("📋 Recent Weeks")
	table := NewTable(output, "Week", "Date Range", "Days", "Win %", "Commission", "Volume", "Trades", "Gross", "Net")
	for _, w := range recent {
		table.AddRow(
			fmt.Sprintf("W%02d", w.WeekNumber),
			fmt.Sprintf("%s - %s", FormatMonthDay(w.StartDate), FormatMonthDay(w.EndDate)),
			fmt.Sprintf("%d", w.TradingDays),
			output.FormatWinRate(w.WinRate),
			FormatUSD(w.TotalCommission),
			FormatUSD(w.TotalVolume),
			fmt.Sprintf("%d", w.TotalTrades),
			output.FormatPnL(w.GrossPnL),
			output.FormatPnL(w.RealizedPnL),
		)
	}
	table.Render()
}

func renderWeeklyPnLBars(output *Output, weeks []models.WeeklySummary) {
	recent := recentWeeks(weeks, 8)

	maxAbs := decimal.Zero
	for _, w := range recent {
		if abs := w.RealizedPnL.Abs(); abs.GreaterThan(maxAbs) {
			maxAbs = abs
		}
	}
	if maxAbs.IsZero() {
		return
	}

	output.Println()
	output.Bold("📊 Weekly Net P&L")
	for _, w := range recent {
		n := barLength(w.RealizedPnL, maxAbs, barChartWidth)
		bar := strings.Repeat("█", n) + strings.Repeat(" ", barChartWidth-n)
		output.Printf("  W%02d %s %s\n",
			w.WeekNumber,
			output.ColoredString(output.PnLColor(w.RealizedPnL), bar),
			output.FormatPnL(w.RealizedPnL))
	}
}

func renderWeeklyWinRates(output *Output, weeks []models.WeeklySummary) {
	recent := make([]models.WeeklySummary, 0, 8)
	for _, w := range recentWeeks(weeks, 8) {
		if w.TotalTrades > 0 {
			recent = append(recent, w)
		}
	}
	if len(recent) == 0 {
		return
	}

	output.Println()
	output.Bold("🎯 Weekly Win Rate")
	for _, w := range recent {
		n := int(w.WinRate / 100 * winRateWidth)
		if n > winRateWidth {
			n = winRateWidth
		}
		bar := strings.Repeat("█", n) + strings.Repeat("░", winRateWidth-n)
		output.Printf("  W%02d %s %s %s\n",
			w.WeekNumber,
			bar,
			output.FormatWinRate(w.WinRate),
			output.DimText(fmt.Sprintf("(%dw/%dl)", w.WinningTrades, w.LosingTrades)))
	}
}

func renderWeekExtremes(output *Output, summary *models.TradingSummary) {
	weeks := summary.WeeklySummaries

	output.Println()
	output.Bold("🏆 Week Records")
	if summary.BestWeek != nil {
		output.Printf("  %-20s Week %d of %d (%s)\n", "Best Week:",
			summary.BestWeek.Week, summary.BestWeek.Year, output.FormatPnL(summary.BestWeek.PnL))
	}
	if summary.WorstWeek != nil {
		output.Printf("  %-20s Week %d of %d (%s)\n", "Worst Week:",
			summary.WorstWeek.Week, summary.WorstWeek.Year, output.FormatPnL(summary.WorstWeek.PnL))
	}

	total := decimal.Zero
	for _, w := range weeks {
		total = total.Add(w.RealizedPnL)
	}
	avg := total.Div(decimal.NewFromInt(int64(len(weeks))))
	output.Printf("  %-20s %s\n", "Avg Weekly P&L:", output.FormatPnL(avg))
}

func renderWeeklyCommissionImpact(output *Output, weeks []models.WeeklySummary) {
	recent := recentWeeks(weeks, 4)

	gross := decimal.Zero
	commission := decimal.Zero
	for _, w := range recent {
		gross = gross.Add(w.GrossPnL)
		commission = commission.Add(w.TotalCommission)
	}
	if commission.IsZero() {
		return
	}

	output.Println()
	output.Bold("💸 Commission Impact (last %d weeks)", len(recent))
	output.Printf("  %-20s %s\n", "Gross P&L:", output.FormatPnL(gross))
	output.Printf("  %-20s %s\n", "Total Commissions:", FormatUSD(commission))
	output.Printf("  %-20s %s\n", "Net P&L:", output.BoldText(output.FormatPnL(gross.Sub(commission))))
}

func renderCurrentWeekDetail(output *Output, w models.WeeklySummary) {
	output.Println()
	output.Bold("📅 Week %d of %d (%s - %s)", w.WeekNumber, w.Year,
		FormatDate(w.StartDate), FormatDate(w.EndDate))

	printRow := func(label, value string) {
		output.Printf("  %-20s %s\n", label, value)
	}

	printRow("Trading Days:", fmt.Sprintf("%d (%d profitable)", w.TradingDays, w.ProfitableDays))
	printRow("Net P&L:", output.BoldText(output.FormatPnL(w.RealizedPnL)))
	printRow("Gross P&L:", output.FormatPnL(w.GrossPnL))
	printRow("Commission Paid:", FormatUSD(w.TotalCommission))
	printRow("Total Trades:", fmt.Sprintf("%d", w.TotalTrades))
	printRow("Win Rate:", fmt.Sprintf("%s %s", output.FormatWinRate(w.WinRate),
		output.DimText(fmt.Sprintf("(%dw/%dl)", w.WinningTrades, w.LosingTrades))))
	if pf, ok := w.ProfitFactor(); ok {
		printRow("Profit Factor:", pf.StringFixed(2))
	}
	printRow("Average Win:", FormatUSD(w.AvgWin))
	printRow("Average Loss:", FormatUSD(w.AvgLoss))
	printRow("Avg Daily P&L:", output.FormatPnL(w.AvgDailyPnL))

	if len(w.DailySummaries) > 0 {
		output.Println()
		output.Bold("  Daily Breakdown")
		for _, d := range w.DailySummaries {
			output.Printf("    %-9s %s  %s %s\n",
				d.Date.Weekday(),
				FormatDate(d.Date),
				output.FormatPnL(d.RealizedPnL),
				output.DimText(fmt.Sprintf("(%d trades)", d.TotalTrades)))
		}
	}
}

// recentWeeks returns up to n of the most recent weeks, oldest first.
func recentWeeks(weeks []models.WeeklySummary, n int) []models.WeeklySummary {
	if len(weeks) > n {
		return weeks[len(weeks)-n:]
	}
	return weeks
}
