package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"tradelens/internal/models"
)

// buildDailySummary reconciles one UTC date's fills into a DailySummary.
// Commission and notional volume are charged for every fill, including
// fills of instruments too sparse to match. Realized P&L is the sum of the
// date's matched amounts minus the date's total commission, so a day of
// lone fills ends up net negative by exactly its commission.
func buildDailySummary(date time.Time, dayTrades []models.TradeRecord, sink Sink) models.DailySummary {
	summary := models.DailySummary{
		Date:            date,
		RealizedPnL:     decimal.Zero,
		GrossPnL:        decimal.Zero,
		TotalCommission: decimal.Zero,
		TotalVolume:     decimal.Zero,
		AvgWin:          decimal.Zero,
		AvgLoss:         decimal.Zero,
		LargestWin:      decimal.Zero,
		LargestLoss:     decimal.Zero,
		SymbolsTraded:   []string{},
	}

	for _, t := range dayTrades {
		summary.TotalCommission = summary.TotalCommission.Add(t.Commission)
		summary.TotalVolume = summary.TotalVolume.Add(t.Notional())
	}

	realizedSum := decimal.Zero
	winSum := decimal.Zero
	lossSum := decimal.Zero

	bySymbol := groupBySymbol(dayTrades)
	for _, symbol := range sortedSymbols(bySymbol) {
		fills := bySymbol[symbol]
		if len(fills) < 2 {
			// A lone fill can never form a round trip. It is excluded
			// from SymbolsTraded but its commission and volume stand.
			fill := fills[0]
			sink.Emit(Diagnostic{
				Kind:     DiagUnmatched,
				Symbol:   symbol,
				Date:     date,
				Side:     fill.Side,
				Quantity: fill.Quantity,
				Price:    fill.FillPrice,
			})
			continue
		}
		summary.SymbolsTraded = append(summary.SymbolsTraded, symbol)

		realized, _ := matchFills(fills, commissionAggregate, sink)
		for _, pnl := range realized {
			realizedSum = realizedSum.Add(pnl)
			switch {
			case pnl.IsPositive():
				summary.WinningTrades++
				winSum = winSum.Add(pnl)
				if pnl.GreaterThan(summary.LargestWin) {
					summary.LargestWin = pnl
				}
			case pnl.IsNegative():
				summary.LosingTrades++
				lossSum = lossSum.Add(pnl)
				if pnl.LessThan(summary.LargestLoss) {
					summary.LargestLoss = pnl
				}
			}
		}
	}

	summary.TotalTrades = summary.WinningTrades + summary.LosingTrades
	summary.RealizedPnL = realizedSum.Sub(summary.TotalCommission)
	summary.GrossPnL = summary.RealizedPnL.Add(summary.TotalCommission)
	if summary.WinningTrades > 0 {
		summary.AvgWin = winSum.Div(decimal.NewFromInt(int64(summary.WinningTrades)))
	}
	if summary.LosingTrades > 0 {
		summary.AvgLoss = lossSum.Div(decimal.NewFromInt(int64(summary.LosingTrades)))
	}
	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.WinningTrades) / float64(summary.TotalTrades) * 100
	}

	summary.TimeSlots = hourlySlots(dayTrades)
	return summary
}
