// Package cli provides the command-line interface for tradelens.
package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tradelens/internal/models"
)

const (
	chartHeight   = 10
	chartWidth    = 60
	barChartWidth = 30
	winRateWidth  = 50
	hourlyWidth   = 40
)

// renderPnLChart draws the daily P&L trend as an ASCII line chart. Needs at
// least two days and a non-flat range to be worth drawing.
func renderPnLChart(output *Output, dailies []models.DailySummary) {
	if len(dailies) < 2 {
		return
	}

	minVal := dailies[0].RealizedPnL
	maxVal := dailies[0].RealizedPnL
	for _, d := range dailies[1:] {
		if d.RealizedPnL.LessThan(minVal) {
			minVal = d.RealizedPnL
		}
		if d.RealizedPnL.GreaterThan(maxVal) {
			maxVal = d.RealizedPnL
		}
	}
	span := maxVal.Sub(minVal)
	if span.IsZero() {
		return
	}

	grid := make([][]rune, chartHeight)
	for i := range grid {
		grid[i] = make([]rune, chartWidth)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	col := func(i int) int {
		return i * (chartWidth - 1) / (len(dailies) - 1)
	}
	row := func(v decimal.Decimal) int {
		// Row 0 is the top of the chart.
		frac, _ := v.Sub(minVal).Div(span).Float64()
		r := chartHeight - 1 - int(frac*float64(chartHeight-1)+0.5)
		if r < 0 {
			r = 0
		}
		if r >= chartHeight {
			r = chartHeight - 1
		}
		return r
	}

	// Connect consecutive points, then overlay the points themselves.
	for i := 1; i < len(dailies); i++ {
		c0, r0 := col(i-1), row(dailies[i-1].RealizedPnL)
		c1, r1 := col(i), row(dailies[i].RealizedPnL)
		for c := c0 + 1; c < c1; c++ {
			frac := float64(c-c0) / float64(c1-c0)
			r := r0 + int(frac*float64(r1-r0)+0.5)
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}
	for i, d := range dailies {
		grid[row(d.RealizedPnL)][col(i)] = '●'
	}

	output.Println()
	output.Bold("📈 Daily P&L Trend")
	for i, line := range grid {
		label := strings.Repeat(" ", 10)
		switch i {
		case 0:
			label = PadLeft(FormatUSDWhole(maxVal), 10)
		case chartHeight - 1:
			label = PadLeft(FormatUSDWhole(minVal), 10)
		}
		output.Printf("%s │%s\n", label, string(line))
	}
	output.Printf("%s └%s\n", strings.Repeat(" ", 10), strings.Repeat("─", chartWidth))
	output.Printf("%s  %s\n", strings.Repeat(" ", 10), chartAxisLabels(dailies))
}

// chartAxisLabels spaces up to five date labels across the chart width.
func chartAxisLabels(dailies []models.DailySummary) string {
	labelCount := 5
	if len(dailies) < labelCount {
		labelCount = len(dailies)
	}

	line := make([]rune, chartWidth)
	for i := range line {
		line[i] = ' '
	}
	for k := 0; k < labelCount; k++ {
		idx := k * (len(dailies) - 1) / (labelCount - 1)
		pos := idx * (chartWidth - 1) / (len(dailies) - 1)
		label := FormatMonthDay(dailies[idx].Date)
		if pos+len(label) > chartWidth {
			pos = chartWidth - len(label)
		}
		for j, ch := range label {
			line[pos+j] = ch
		}
	}
	return string(line)
}

// renderDailyBars shows net P&L per day as horizontal bars, most recent last.
func renderDailyBars(output *Output, dailies []models.DailySummary) {
	recent := recentDays(dailies, 10)
	if len(recent) == 0 {
		return
	}

	maxAbs := maxAbsPnL(recent, func(d models.DailySummary) decimal.Decimal { return d.RealizedPnL })
	if maxAbs.IsZero() {
		return
	}

	output.Println()
	output.Bold("📊 Daily Net P&L")
	for _, d := range recent {
		// Pad by rune count, not bytes, so the suffix column lines up.
		n := barLength(d.RealizedPnL, maxAbs, barChartWidth)
		bar := strings.Repeat("█", n) + strings.Repeat(" ", barChartWidth-n)
		arrow := "▲"
		if d.RealizedPnL.IsNegative() {
			arrow = "▼"
		}
		output.Printf("  %s %s %s %s\n",
			FormatMonthDay(d.Date),
			output.ColoredString(output.PnLColor(d.RealizedPnL), bar),
			arrow,
			output.FormatPnL(d.RealizedPnL))
	}
}

// renderGrossBars shows gross P&L per day before commissions, with the
// commission drag spelled out underneath.
func renderGrossBars(output *Output, dailies []models.DailySummary) {
	recent := recentDays(dailies, 10)
	if len(recent) == 0 {
		return
	}

	maxAbs := maxAbsPnL(recent, func(d models.DailySummary) decimal.Decimal { return d.GrossPnL })
	if maxAbs.IsZero() {
		return
	}

	output.Println()
	output.Bold("📊 Daily Gross P&L (before commissions)")
	for _, d := range recent {
		n := barLength(d.GrossPnL, maxAbs, barChartWidth)
		bar := strings.Repeat("▓", n) + strings.Repeat(" ", barChartWidth-n)
		output.Printf("  %s %s %s %s\n",
			FormatMonthDay(d.Date),
			output.ColoredString(output.PnLColor(d.GrossPnL), bar),
			output.FormatPnL(d.GrossPnL),
			output.DimText(fmt.Sprintf("(-%s)", FormatUSD(d.TotalCommission))))
	}

	gross := decimal.Zero
	commission := decimal.Zero
	for _, d := range recent {
		gross = gross.Add(d.GrossPnL)
		commission = commission.Add(d.TotalCommission)
	}
	net := gross.Sub(commission)

	output.Println()
	output.Bold("💸 Commission Impact")
	output.Printf("  %-20s %s\n", "Gross P&L:", output.FormatPnL(gross))
	output.Printf("  %-20s %s\n", "Total Commissions:", FormatUSD(commission))
	output.Printf("  %-20s %s\n", "Net P&L:", output.BoldText(output.FormatPnL(net)))
	if gross.IsPositive() {
		pct, _ := commission.Div(gross).Mul(decimal.NewFromInt(100)).Float64()
		output.Printf("  %-20s %.1f%%\n", "Commission % Gross:", pct)
	}
}

// renderWinRateChart shows the win rate per day as horizontal bars.
func renderWinRateChart(output *Output, dailies []models.DailySummary) {
	recent := make([]models.DailySummary, 0, 10)
	for _, d := range recentDays(dailies, 10) {
		if d.TotalTrades > 0 {
			recent = append(recent, d)
		}
	}
	if len(recent) == 0 {
		return
	}

	output.Println()
	output.Bold("🎯 Daily Win Rate")
	for _, d := range recent {
		n := int(d.WinRate / 100 * winRateWidth)
		if n > winRateWidth {
			n = winRateWidth
		}
		bar := strings.Repeat("█", n) + strings.Repeat("░", winRateWidth-n)
		output.Printf("  %s %s %s %s\n",
			FormatMonthDay(d.Date),
			bar,
			output.FormatWinRate(d.WinRate),
			output.DimText(fmt.Sprintf("(%dw/%dl)", d.WinningTrades, d.LosingTrades)))
	}
	output.Dim("  █ win rate   ░ remainder   (green ≥60%%, yellow ≥50%%)")
}

// renderHourlyDistribution shows P&L by hour for one day.
func renderHourlyDistribution(output *Output, day *models.DailySummary) {
	if len(day.TimeSlots) == 0 {
		return
	}

	maxAbs := decimal.Zero
	for _, slot := range day.TimeSlots {
		if abs := slot.PnL.Abs(); abs.GreaterThan(maxAbs) {
			maxAbs = abs
		}
	}
	if maxAbs.IsZero() {
		return
	}

	output.Println()
	output.Bold("🕐 Hourly P&L Distribution (%s)", FormatDate(day.Date))
	for _, slot := range day.TimeSlots {
		n := barLength(slot.PnL, maxAbs, hourlyWidth)
		bar := strings.Repeat("█", n) + strings.Repeat(" ", hourlyWidth-n)
		output.Printf("  %02d:00 %s %s\n",
			slot.Hour,
			output.ColoredString(output.PnLColor(slot.PnL), bar),
			output.FormatPnL(slot.PnL))
	}
}

// recentDays returns up to n of the most recent days, oldest first.
func recentDays(dailies []models.DailySummary, n int) []models.DailySummary {
	if len(dailies) > n {
		return dailies[len(dailies)-n:]
	}
	return dailies
}

func maxAbsPnL(dailies []models.DailySummary, value func(models.DailySummary) decimal.Decimal) decimal.Decimal {
	maxAbs := decimal.Zero
	for _, d := range dailies {
		if abs := value(d).Abs(); abs.GreaterThan(maxAbs) {
			maxAbs = abs
		}
	}
	return maxAbs
}
