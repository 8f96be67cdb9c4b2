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

const calendarCellWidth = 8

func newCalendarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Show the monthly P&L calendar for the latest analysis",
		Long: `Render net and gross P&L calendars side by side for the most recent
month in the stored analysis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			summary, err := latestSummary(ctx, app, output)
			if err != nil || summary == nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(summary.DailySummaries)
			}
			renderCombinedCalendars(output, summary.DailySummaries)
			return nil
		},
	}
}

// renderCombinedCalendars draws net and gross P&L calendars side by side for
// the month of the most recent trading day. Weeks start on Sunday.
func renderCombinedCalendars(output *Output, dailies []models.DailySummary) {
	if len(dailies) == 0 {
		return
	}

	last := dailies[len(dailies)-1].Date
	year, month := last.Year(), last.Month()

	byDay := make(map[int]models.DailySummary)
	for _, d := range dailies {
		if d.Date.Year() == year && d.Date.Month() == month {
			byDay[d.Date.Day()] = d
		}
	}

	calWidth := calendarCellWidth * 7
	totalWidth := calWidth*2 + 4
	gap := strings.Repeat(" ", 4)

	output.Println()
	output.Println(strings.Repeat("=", totalWidth))
	output.Bold("%s", Center(fmt.Sprintf("📆 %s %d", month, year), totalWidth))
	output.Println(strings.Repeat("=", totalWidth))
	output.Printf("%s%s%s\n",
		output.BoldText(Center("Net P&L", calWidth)),
		gap,
		output.BoldText(Center("Gross P&L", calWidth)))

	var header strings.Builder
	for _, name := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		header.WriteString(Center(name, calendarCellWidth))
	}
	output.Printf("%s%s%s\n", output.DimText(header.String()), gap, output.DimText(header.String()))

	for _, week := range calendarWeeks(year, month) {
		var numbers, netCells, grossCells strings.Builder
		for col, day := range week {
			if day == 0 {
				blank := strings.Repeat(" ", calendarCellWidth)
				numbers.WriteString(blank)
				netCells.WriteString(blank)
				grossCells.WriteString(blank)
				continue
			}
			numbers.WriteString(Center(fmt.Sprintf("%d", day), calendarCellWidth))
			netCells.WriteString(calendarCell(output, byDay, day, col,
				func(d models.DailySummary) decimal.Decimal { return d.RealizedPnL }))
			grossCells.WriteString(calendarCell(output, byDay, day, col,
				func(d models.DailySummary) decimal.Decimal { return d.GrossPnL }))
		}
		output.Printf("%s%s%s\n", numbers.String(), gap, numbers.String())
		output.Printf("%s%s%s\n", netCells.String(), gap, grossCells.String())
	}

	renderMonthCommission(output, byDay)
}

// calendarWeeks lays the month out Sunday-first as rows of seven day
// numbers, zero meaning a blank cell outside the month.
func calendarWeeks(year int, month time.Month) [][]int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	cells := make([]int, 0, 42)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, 0)
	}
	for day := 1; day <= daysInMonth; day++ {
		cells = append(cells, day)
	}
	for len(cells)%7 != 0 {
		cells = append(cells, 0)
	}

	weeks := make([][]int, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// calendarCell formats one day's P&L cell. Days without data show a dimmed
// dot on weekends and a dash on weekdays.
func calendarCell(output *Output, byDay map[int]models.DailySummary, day, col int, value func(models.DailySummary) decimal.Decimal) string {
	d, ok := byDay[day]
	if !ok {
		text := "-"
		if col == 0 || col == 6 {
			text = "·"
		}
		return output.DimText(Center(text, calendarCellWidth))
	}

	v := value(d)
	text := FormatUSDWhole(v)
	if v.IsPositive() {
		text = "+" + text
	}
	return output.ColoredString(output.PnLColor(v), Center(text, calendarCellWidth))
}

func renderMonthCommission(output *Output, byDay map[int]models.DailySummary) {
	net := decimal.Zero
	gross := decimal.Zero
	commission := decimal.Zero
	for _, d := range byDay {
		net = net.Add(d.RealizedPnL)
		gross = gross.Add(d.GrossPnL)
		commission = commission.Add(d.TotalCommission)
	}
	if commission.IsZero() && net.IsZero() {
		return
	}

	output.Println()
	output.Bold("💸 Month Commission Impact")
	output.Printf("  %-20s %s\n", "Month Net P&L:", output.BoldText(output.FormatPnL(net)))
	output.Printf("  %-20s %s\n", "Month Gross P&L:", output.FormatPnL(gross))
	output.Printf("  %-20s %s\n", "Total Commissions:", FormatUSD(commission))
	if gross.IsPositive() {
		pct, _ := commission.Div(gross).Mul(decimal.NewFromInt(100)).Float64()
		output.Printf("  %-20s %.1f%%\n", "Commission % Gross:", pct)
	}
}
