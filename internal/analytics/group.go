package analytics

import (
	"sort"
	"time"

	"tradelens/internal/models"
)

// groupByDate partitions trades by UTC calendar date.
func groupByDate(trades []models.TradeRecord) map[time.Time][]models.TradeRecord {
	byDate := make(map[time.Time][]models.TradeRecord)
	for _, t := range trades {
		date := t.DateUTC()
		byDate[date] = append(byDate[date], t)
	}
	return byDate
}

// groupBySymbol partitions trades by instrument.
func groupBySymbol(trades []models.TradeRecord) map[string][]models.TradeRecord {
	bySymbol := make(map[string][]models.TradeRecord)
	for _, t := range trades {
		bySymbol[t.Symbol] = append(bySymbol[t.Symbol], t)
	}
	return bySymbol
}

// groupByHour partitions trades by UTC hour of day.
func groupByHour(trades []models.TradeRecord) map[int][]models.TradeRecord {
	byHour := make(map[int][]models.TradeRecord)
	for _, t := range trades {
		h := t.Hour()
		byHour[h] = append(byHour[h], t)
	}
	return byHour
}

func sortedDates(byDate map[time.Time][]models.TradeRecord) []time.Time {
	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func sortedSymbols(bySymbol map[string][]models.TradeRecord) []string {
	symbols := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

func sortedHours(byHour map[int][]models.TradeRecord) []int {
	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}
