package models

import "github.com/shopspring/decimal"

// TradingPeriod is the aggregate performance of one named wall-clock window
// (start hour inclusive, end hour exclusive), computed from each fill's own
// net P&L without position matching. Periods are not date-scoped: a window
// collects fills from every day of the analyzed set.
type TradingPeriod struct {
	Name        string          `json:"name"`
	StartHour   int             `json:"start_hour"`
	EndHour     int             `json:"end_hour"`
	TotalTrades int             `json:"total_trades"`
	TotalPnL    decimal.Decimal `json:"total_pnl"`
	WinRate     float64         `json:"win_rate"`
	AvgPnL      decimal.Decimal `json:"avg_pnl_per_trade"`
}

// Contains reports whether the given hour-of-day falls inside the window.
func (p TradingPeriod) Contains(hour int) bool {
	return hour >= p.StartHour && hour < p.EndHour
}
