// Package analytics reconciles raw order fills into matched round trips and
// aggregates them into daily, weekly, and whole-period statistics.
//
// Fills are matched per instrument per UTC date using average-price
// position tracking; see matchFills. All monetary arithmetic is decimal
// end to end, and for a fixed input the output is identical regardless of
// input order or worker count.
package analytics

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
	"tradelens/internal/performance"
)

// Analyzer computes trading summaries. Use NewAnalyzer; the zero value has
// no diagnostic sink.
type Analyzer struct {
	sink    Sink
	workers int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSink routes matching diagnostics to sink instead of discarding them.
func WithSink(sink Sink) Option {
	return func(a *Analyzer) {
		if sink != nil {
			a.sink = sink
		}
	}
}

// WithWorkers sets how many goroutines aggregate dates concurrently.
// Values below 2 keep the analyzer sequential.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// NewAnalyzer returns an Analyzer that discards diagnostics and runs
// sequentially unless configured otherwise.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{sink: NopSink{}, workers: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze reconciles fills with a default Analyzer.
func Analyze(trades []models.TradeRecord) (*models.TradingSummary, error) {
	return NewAnalyzer().Analyze(trades)
}

// Analyze groups fills by UTC date, reconciles each date, and folds the
// results into a TradingSummary. The input may arrive in any order and is
// not modified. Any invalid record fails the whole run before matching
// starts. Extrema ties resolve to the earliest date, earliest week, and
// lowest hour.
func (a *Analyzer) Analyze(trades []models.TradeRecord) (*models.TradingSummary, error) {
	if err := validateTrades(trades); err != nil {
		return nil, err
	}

	byDate := groupByDate(trades)
	dates := sortedDates(byDate)

	dailies := make([]models.DailySummary, len(dates))
	if a.workers > 1 && len(dates) > 1 {
		a.buildDailiesParallel(byDate, dates, dailies)
	} else {
		for i, date := range dates {
			dailies[i] = buildDailySummary(date, byDate[date], a.sink)
		}
	}

	summary := &models.TradingSummary{
		DailySummaries:  dailies,
		WeeklySummaries: []models.WeeklySummary{},
		TotalPnL:        decimal.Zero,
		TotalVolume:     decimal.Zero,
	}
	if len(dailies) == 0 {
		now := time.Now().UTC()
		summary.StartDate = now
		summary.EndDate = now
		return summary, nil
	}

	summary.StartDate = dailies[0].Date
	summary.EndDate = dailies[len(dailies)-1].Date

	totalWinning := 0
	for i := range dailies {
		d := &dailies[i]
		summary.TotalPnL = summary.TotalPnL.Add(d.RealizedPnL)
		summary.TotalVolume = summary.TotalVolume.Add(d.TotalVolume)
		summary.TotalTrades += d.TotalTrades
		totalWinning += d.WinningTrades

		if summary.BestDay == nil || d.RealizedPnL.GreaterThan(summary.BestDay.PnL) {
			summary.BestDay = &models.DayPnL{Date: d.Date, PnL: d.RealizedPnL}
		}
		if summary.WorstDay == nil || d.RealizedPnL.LessThan(summary.WorstDay.PnL) {
			summary.WorstDay = &models.DayPnL{Date: d.Date, PnL: d.RealizedPnL}
		}
	}
	if summary.TotalTrades > 0 {
		summary.OverallWinRate = float64(totalWinning) / float64(summary.TotalTrades) * 100
	}

	summary.WeeklySummaries = weeklySummaries(dailies)
	for i := range summary.WeeklySummaries {
		w := &summary.WeeklySummaries[i]
		if summary.BestWeek == nil || w.RealizedPnL.GreaterThan(summary.BestWeek.PnL) {
			summary.BestWeek = &models.WeekPnL{Year: w.Year, Week: w.WeekNumber, PnL: w.RealizedPnL}
		}
		if summary.WorstWeek == nil || w.RealizedPnL.LessThan(summary.WorstWeek.PnL) {
			summary.WorstWeek = &models.WeekPnL{Year: w.Year, Week: w.WeekNumber, PnL: w.RealizedPnL}
		}
	}

	summary.MostProfitableHour, summary.LeastProfitableHour = hourExtrema(dailies)
	return summary, nil
}

// buildDailiesParallel fans one task per date out over a worker pool. Each
// task writes only its own slot of dailies. A rejected Submit runs the task
// inline so every date is aggregated exactly once.
func (a *Analyzer) buildDailiesParallel(byDate map[time.Time][]models.TradeRecord, dates []time.Time, dailies []models.DailySummary) {
	pool := performance.NewWorkerPool(a.workers)
	pool.Start()
	defer pool.Stop()

	var wg sync.WaitGroup
	for i, date := range dates {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			dailies[i] = buildDailySummary(date, byDate[date], a.sink)
		}
		if !pool.Submit(task) {
			task()
		}
	}
	wg.Wait()
}

// hourExtrema sums each hour's slot P&L across all days and returns the
// best and worst hours. Both are nil when no day produced a slot.
func hourExtrema(dailies []models.DailySummary) (best, worst *models.HourPnL) {
	var sums [24]decimal.Decimal
	var seen [24]bool
	for i := range dailies {
		for _, slot := range dailies[i].TimeSlots {
			sums[slot.Hour] = sums[slot.Hour].Add(slot.PnL)
			seen[slot.Hour] = true
		}
	}
	for h := 0; h < 24; h++ {
		if !seen[h] {
			continue
		}
		if best == nil || sums[h].GreaterThan(best.PnL) {
			best = &models.HourPnL{Hour: h, PnL: sums[h]}
		}
		if worst == nil || sums[h].LessThan(worst.PnL) {
			worst = &models.HourPnL{Hour: h, PnL: sums[h]}
		}
	}
	return best, worst
}

func validateTrades(trades []models.TradeRecord) error {
	for i, t := range trades {
		if err := t.Validate(); err != nil {
			return apperrors.NewTradeValidationError(i, t.Symbol, err.Error())
		}
	}
	return nil
}
