package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"tradelens/internal/models"
)

// defaultPeriods returns the intraday windows scored by BestTradingPeriods,
// in session order. Hours are half-open: a window covers [start, end).
func defaultPeriods() []models.TradingPeriod {
	return []models.TradingPeriod{
		{Name: "Pre-Market", StartHour: 4, EndHour: 9},
		{Name: "Market Open", StartHour: 9, EndHour: 10},
		{Name: "Morning", StartHour: 10, EndHour: 12},
		{Name: "Lunch", StartHour: 12, EndHour: 13},
		{Name: "Afternoon", StartHour: 13, EndHour: 15},
		{Name: "Power Hour", StartHour: 15, EndHour: 16},
		{Name: "After-Hours", StartHour: 16, EndHour: 20},
	}
}

// BestTradingPeriods scores each intraday window by the per-fill net P&L of
// the fills whose hour falls inside it, ranked best first. This view scores
// individual fills, not matched round trips, so a window can look strong on
// entries whose exits land in another window. Ties keep session order, and
// windows with no fills stay in the result with zero totals.
func BestTradingPeriods(trades []models.TradeRecord) []models.TradingPeriod {
	periods := defaultPeriods()

	for i := range periods {
		p := &periods[i]
		p.TotalPnL = decimal.Zero
		p.AvgPnL = decimal.Zero

		wins, losses := 0, 0
		for _, t := range trades {
			if !p.Contains(t.Hour()) {
				continue
			}
			net := t.NetPnL()
			p.TotalTrades++
			p.TotalPnL = p.TotalPnL.Add(net)
			switch {
			case net.IsPositive():
				wins++
			case net.IsNegative():
				losses++
			}
		}
		if wins+losses > 0 {
			p.WinRate = float64(wins) / float64(wins+losses) * 100
		}
		if p.TotalTrades > 0 {
			p.AvgPnL = p.TotalPnL.Div(decimal.NewFromInt(int64(p.TotalTrades)))
		}
	}

	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].TotalPnL.GreaterThan(periods[j].TotalPnL)
	})
	return periods
}
