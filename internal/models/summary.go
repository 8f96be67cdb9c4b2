package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TimeSlotPerformance is one hour-of-day bucket of a trading day. Trades
// counts every fill whose timestamp falls in the hour, including fills of
// instruments that had no matching partner inside the hour.
type TimeSlotPerformance struct {
	Hour    int             `json:"hour"`
	Trades  int             `json:"trades"`
	PnL     decimal.Decimal `json:"pnl"`
	WinRate float64         `json:"win_rate"`
}

// DayPnL pairs a date with its realized P&L, used for best/worst-day marks.
type DayPnL struct {
	Date time.Time       `json:"date"`
	PnL  decimal.Decimal `json:"pnl"`
}

// WeekPnL pairs an ISO week with its realized P&L.
type WeekPnL struct {
	Year int             `json:"year"`
	Week int             `json:"week"`
	PnL  decimal.Decimal `json:"pnl"`
}

// HourPnL pairs an hour-of-day with its P&L summed across all days.
type HourPnL struct {
	Hour int             `json:"hour"`
	PnL  decimal.Decimal `json:"pnl"`
}

// DailySummary is the reconciled result of one UTC calendar date.
//
// Invariants: GrossPnL == RealizedPnL + TotalCommission exactly, and
// TotalTrades == WinningTrades + LosingTrades (round-trips that realized
// exactly zero count toward neither).
type DailySummary struct {
	Date            time.Time             `json:"date"`
	TotalTrades     int                   `json:"total_trades"`
	WinningTrades   int                   `json:"winning_trades"`
	LosingTrades    int                   `json:"losing_trades"`
	RealizedPnL     decimal.Decimal       `json:"realized_pnl"`
	GrossPnL        decimal.Decimal       `json:"gross_pnl"`
	TotalCommission decimal.Decimal       `json:"total_commission"`
	TotalVolume     decimal.Decimal       `json:"total_volume"`
	WinRate         float64               `json:"win_rate"`
	AvgWin          decimal.Decimal       `json:"avg_win"`
	AvgLoss         decimal.Decimal       `json:"avg_loss"`
	LargestWin      decimal.Decimal       `json:"largest_win"`
	LargestLoss     decimal.Decimal       `json:"largest_loss"`
	SymbolsTraded   []string              `json:"symbols_traded"`
	TimeSlots       []TimeSlotPerformance `json:"time_slot_performance"`
}

// ProfitFactor returns total win amount divided by total loss amount. The
// second return is false when the day had no losses, where the ratio is
// undefined rather than infinite.
func (s *DailySummary) ProfitFactor() (decimal.Decimal, bool) {
	return profitFactor(s.AvgWin, s.AvgLoss, s.WinningTrades, s.LosingTrades)
}

// WeeklySummary folds the daily summaries of one ISO week. StartDate and
// EndDate span Monday 00:00:00 through Sunday 23:59:59 UTC of that week.
type WeeklySummary struct {
	WeekNumber      int             `json:"week_number"`
	Year            int             `json:"year"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	TotalTrades     int             `json:"total_trades"`
	WinningTrades   int             `json:"winning_trades"`
	LosingTrades    int             `json:"losing_trades"`
	RealizedPnL     decimal.Decimal `json:"realized_pnl"`
	GrossPnL        decimal.Decimal `json:"gross_pnl"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TotalVolume     decimal.Decimal `json:"total_volume"`
	WinRate         float64         `json:"win_rate"`
	AvgWin          decimal.Decimal `json:"avg_win"`
	AvgLoss         decimal.Decimal `json:"avg_loss"`
	LargestWin      decimal.Decimal `json:"largest_win"`
	LargestLoss     decimal.Decimal `json:"largest_loss"`
	BestDay         *DayPnL         `json:"best_day,omitempty"`
	WorstDay        *DayPnL         `json:"worst_day,omitempty"`
	TradingDays     int             `json:"trading_days"`
	ProfitableDays  int             `json:"profitable_days"`
	AvgDailyPnL     decimal.Decimal `json:"avg_daily_pnl"`
	SymbolsTraded   []string        `json:"symbols_traded"`
	DailySummaries  []DailySummary  `json:"daily_summaries"`
}

// ProfitFactor returns total win amount divided by total loss amount across
// the week; false when the week had no losses.
func (w *WeeklySummary) ProfitFactor() (decimal.Decimal, bool) {
	return profitFactor(w.AvgWin, w.AvgLoss, w.WinningTrades, w.LosingTrades)
}

// RecomputeFromDailies replaces the week's daily summaries and re-derives
// every aggregate field from them. Average win/loss are volume-weighted
// across days (sum of per-day average × count over total count), not naive
// averages of the daily averages. Best/worst day break P&L ties toward the
// earlier date so the result does not depend on input order.
func (w *WeeklySummary) RecomputeFromDailies(dailies []DailySummary) {
	w.DailySummaries = dailies

	w.TotalTrades = 0
	w.WinningTrades = 0
	w.LosingTrades = 0
	w.RealizedPnL = decimal.Zero
	w.GrossPnL = decimal.Zero
	w.TotalCommission = decimal.Zero
	w.TotalVolume = decimal.Zero
	w.AvgWin = decimal.Zero
	w.AvgLoss = decimal.Zero
	w.LargestWin = decimal.Zero
	w.LargestLoss = decimal.Zero
	w.WinRate = 0
	w.BestDay = nil
	w.WorstDay = nil

	winAmount := decimal.Zero
	lossAmount := decimal.Zero
	symbols := make(map[string]struct{})

	for i := range w.DailySummaries {
		d := &w.DailySummaries[i]

		w.TotalTrades += d.TotalTrades
		w.WinningTrades += d.WinningTrades
		w.LosingTrades += d.LosingTrades
		w.RealizedPnL = w.RealizedPnL.Add(d.RealizedPnL)
		w.GrossPnL = w.GrossPnL.Add(d.GrossPnL)
		w.TotalCommission = w.TotalCommission.Add(d.TotalCommission)
		w.TotalVolume = w.TotalVolume.Add(d.TotalVolume)

		winAmount = winAmount.Add(d.AvgWin.Mul(decimal.NewFromInt(int64(d.WinningTrades))))
		lossAmount = lossAmount.Add(d.AvgLoss.Mul(decimal.NewFromInt(int64(d.LosingTrades))))

		for _, sym := range d.SymbolsTraded {
			symbols[sym] = struct{}{}
		}

		if d.LargestWin.GreaterThan(w.LargestWin) {
			w.LargestWin = d.LargestWin
		}
		if d.LargestLoss.LessThan(w.LargestLoss) {
			w.LargestLoss = d.LargestLoss
		}

		if w.BestDay == nil || d.RealizedPnL.GreaterThan(w.BestDay.PnL) ||
			(d.RealizedPnL.Equal(w.BestDay.PnL) && d.Date.Before(w.BestDay.Date)) {
			w.BestDay = &DayPnL{Date: d.Date, PnL: d.RealizedPnL}
		}
		if w.WorstDay == nil || d.RealizedPnL.LessThan(w.WorstDay.PnL) ||
			(d.RealizedPnL.Equal(w.WorstDay.PnL) && d.Date.Before(w.WorstDay.Date)) {
			w.WorstDay = &DayPnL{Date: d.Date, PnL: d.RealizedPnL}
		}
	}

	if w.WinningTrades > 0 {
		w.AvgWin = winAmount.Div(decimal.NewFromInt(int64(w.WinningTrades)))
	}
	if w.LosingTrades > 0 {
		w.AvgLoss = lossAmount.Div(decimal.NewFromInt(int64(w.LosingTrades)))
	}
	if w.TotalTrades > 0 {
		w.WinRate = float64(w.WinningTrades) / float64(w.TotalTrades) * 100
	}

	w.SymbolsTraded = make([]string, 0, len(symbols))
	for sym := range symbols {
		w.SymbolsTraded = append(w.SymbolsTraded, sym)
	}
	sort.Strings(w.SymbolsTraded)

	w.TradingDays = len(w.DailySummaries)
	w.ProfitableDays = 0
	for i := range w.DailySummaries {
		if w.DailySummaries[i].RealizedPnL.IsPositive() {
			w.ProfitableDays++
		}
	}
	if w.TradingDays > 0 {
		w.AvgDailyPnL = w.RealizedPnL.Div(decimal.NewFromInt(int64(w.TradingDays)))
	} else {
		w.AvgDailyPnL = decimal.Zero
	}
}

// TradingSummary is the full analysis of one trade set: every daily summary
// in date order, every weekly summary in week order, global totals, and the
// extrema across the whole period. The optional marks are nil exactly when
// there is no underlying data to pick from.
type TradingSummary struct {
	StartDate           time.Time       `json:"start_date"`
	EndDate             time.Time       `json:"end_date"`
	DailySummaries      []DailySummary  `json:"daily_summaries"`
	WeeklySummaries     []WeeklySummary `json:"weekly_summaries"`
	TotalPnL            decimal.Decimal `json:"total_pnl"`
	TotalVolume         decimal.Decimal `json:"total_volume"`
	TotalTrades         int             `json:"total_trades"`
	OverallWinRate      float64         `json:"overall_win_rate"`
	BestDay             *DayPnL         `json:"best_day,omitempty"`
	WorstDay            *DayPnL         `json:"worst_day,omitempty"`
	BestWeek            *WeekPnL        `json:"best_week,omitempty"`
	WorstWeek           *WeekPnL        `json:"worst_week,omitempty"`
	MostProfitableHour  *HourPnL        `json:"most_profitable_hour,omitempty"`
	LeastProfitableHour *HourPnL        `json:"least_profitable_hour,omitempty"`
}

func profitFactor(avgWin, avgLoss decimal.Decimal, wins, losses int) (decimal.Decimal, bool) {
	if avgLoss.IsZero() || losses == 0 {
		return decimal.Zero, false
	}
	totalWins := avgWin.Mul(decimal.NewFromInt(int64(wins)))
	totalLosses := avgLoss.Abs().Mul(decimal.NewFromInt(int64(losses)))
	if totalLosses.IsZero() {
		return decimal.Zero, false
	}
	return totalWins.Div(totalLosses), true
}
