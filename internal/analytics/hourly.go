package analytics

import (
	"github.com/shopspring/decimal"

	"tradelens/internal/models"
)

// hourlySlots buckets one day's fills by hour of day and matches each
// instrument within its hour, charging each closing fill's own commission
// against the amount it realized. Trades counts every fill in the hour,
// including lone fills that cannot realize anything. Round trips whose legs
// fall in different hours score zero here; the slot view measures
// intra-hour activity only and raises no diagnostics.
func hourlySlots(dayTrades []models.TradeRecord) []models.TimeSlotPerformance {
	byHour := groupByHour(dayTrades)

	slots := make([]models.TimeSlotPerformance, 0, len(byHour))
	for _, hour := range sortedHours(byHour) {
		hourTrades := byHour[hour]
		slot := models.TimeSlotPerformance{Hour: hour, PnL: decimal.Zero}

		wins, losses := 0, 0
		bySymbol := groupBySymbol(hourTrades)
		for _, symbol := range sortedSymbols(bySymbol) {
			fills := bySymbol[symbol]
			slot.Trades += len(fills)
			if len(fills) < 2 {
				continue
			}
			realized, _ := matchFills(fills, commissionPerFill, NopSink{})
			for _, pnl := range realized {
				slot.PnL = slot.PnL.Add(pnl)
				switch {
				case pnl.IsPositive():
					wins++
				case pnl.IsNegative():
					losses++
				}
			}
		}
		if wins+losses > 0 {
			slot.WinRate = float64(wins) / float64(wins+losses) * 100
		}
		slots = append(slots, slot)
	}
	return slots
}
