package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// fill builds a trade record with NetAmount derived as quantity times price.
func fill(symbol string, side models.Side, qty, price, commission float64, ts string) models.TradeRecord {
	parsed, err := models.ParseTime(ts)
	if err != nil {
		panic(err)
	}
	q := d(qty)
	p := d(price)
	return models.TradeRecord{
		Symbol:     symbol,
		Side:       side,
		Quantity:   q,
		FillPrice:  p,
		Time:       parsed,
		NetAmount:  q.Mul(p),
		Commission: d(commission),
	}
}

func summaryJSON(t *testing.T, s *models.TradingSummary) []byte {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
	return data
}

func TestAnalyzeEmpty(t *testing.T) {
	summary, err := Analyze(nil)
	if err != nil {
		t.Fatalf("Analyze(nil) error: %v", err)
	}

	if summary.TotalTrades != 0 {
		t.Errorf("TotalTrades = %d, want 0", summary.TotalTrades)
	}
	if !summary.TotalPnL.IsZero() {
		t.Errorf("TotalPnL = %s, want 0", summary.TotalPnL)
	}
	if summary.DailySummaries == nil || len(summary.DailySummaries) != 0 {
		t.Errorf("DailySummaries = %v, want empty slice", summary.DailySummaries)
	}
	if summary.WeeklySummaries == nil || len(summary.WeeklySummaries) != 0 {
		t.Errorf("WeeklySummaries = %v, want empty slice", summary.WeeklySummaries)
	}
	if summary.BestDay != nil || summary.WorstDay != nil {
		t.Error("best/worst day should be nil for empty input")
	}
	if summary.BestWeek != nil || summary.WorstWeek != nil {
		t.Error("best/worst week should be nil for empty input")
	}
	if summary.MostProfitableHour != nil || summary.LeastProfitableHour != nil {
		t.Error("hour marks should be nil for empty input")
	}
	if summary.StartDate.IsZero() || summary.EndDate.IsZero() {
		t.Error("start/end dates should be set even for empty input")
	}
}

func TestAnalyzeSingleDay(t *testing.T) {
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 100, 10, 1, "2025-06-02 09:30:00"),
		fill("AAPL", models.SideSell, 100, 12, 1, "2025-06-02 10:15:00"),
	}

	summary, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if !summary.TotalPnL.Equal(d(198)) {
		t.Errorf("TotalPnL = %s, want 198", summary.TotalPnL)
	}
	if !summary.TotalVolume.Equal(d(2200)) {
		t.Errorf("TotalVolume = %s, want 2200", summary.TotalVolume)
	}
	if summary.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1", summary.TotalTrades)
	}
	if summary.OverallWinRate != 100 {
		t.Errorf("OverallWinRate = %f, want 100", summary.OverallWinRate)
	}
	if len(summary.DailySummaries) != 1 {
		t.Fatalf("DailySummaries = %d, want 1", len(summary.DailySummaries))
	}
	if len(summary.WeeklySummaries) != 1 {
		t.Fatalf("WeeklySummaries = %d, want 1", len(summary.WeeklySummaries))
	}

	date := summary.DailySummaries[0].Date
	if summary.BestDay == nil || !summary.BestDay.Date.Equal(date) || !summary.BestDay.PnL.Equal(d(198)) {
		t.Errorf("BestDay = %+v, want %s at 198", summary.BestDay, date)
	}
	if summary.WorstDay == nil || !summary.WorstDay.Date.Equal(date) {
		t.Errorf("WorstDay = %+v, want %s", summary.WorstDay, date)
	}
	if summary.BestWeek == nil || summary.BestWeek.Week != 23 || summary.BestWeek.Year != 2025 {
		t.Errorf("BestWeek = %+v, want week 23 of 2025", summary.BestWeek)
	}

	// Both legs sit in different hours, so each slot nets zero and the
	// hour marks tie down to the lowest hour.
	if summary.MostProfitableHour == nil || summary.MostProfitableHour.Hour != 9 {
		t.Errorf("MostProfitableHour = %+v, want hour 9", summary.MostProfitableHour)
	}
	if summary.LeastProfitableHour == nil || summary.LeastProfitableHour.Hour != 9 {
		t.Errorf("LeastProfitableHour = %+v, want hour 9", summary.LeastProfitableHour)
	}
	if !summary.StartDate.Equal(summary.EndDate) {
		t.Errorf("single-day start %s != end %s", summary.StartDate, summary.EndDate)
	}
}

func TestAnalyzeMultiDay(t *testing.T) {
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 10, 100, 0, "2025-06-02 10:00:00"),
		fill("AAPL", models.SideSell, 10, 110, 0, "2025-06-02 11:00:00"),
		fill("MSFT", models.SideBuy, 10, 200, 0, "2025-06-03 10:00:00"),
		fill("MSFT", models.SideSell, 10, 195, 0, "2025-06-03 11:00:00"),
	}

	summary, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if len(summary.DailySummaries) != 2 {
		t.Fatalf("DailySummaries = %d, want 2", len(summary.DailySummaries))
	}
	first, second := summary.DailySummaries[0], summary.DailySummaries[1]
	if !first.Date.Before(second.Date) {
		t.Errorf("dailies not in date order: %s, %s", first.Date, second.Date)
	}
	if !summary.StartDate.Equal(first.Date) || !summary.EndDate.Equal(second.Date) {
		t.Errorf("range %s..%s does not span dailies", summary.StartDate, summary.EndDate)
	}

	if !summary.TotalPnL.Equal(d(50)) {
		t.Errorf("TotalPnL = %s, want 50", summary.TotalPnL)
	}
	if summary.BestDay == nil || !summary.BestDay.PnL.Equal(d(100)) {
		t.Errorf("BestDay = %+v, want 100", summary.BestDay)
	}
	if summary.WorstDay == nil || !summary.WorstDay.PnL.Equal(d(-50)) {
		t.Errorf("WorstDay = %+v, want -50", summary.WorstDay)
	}
	if summary.OverallWinRate != 50 {
		t.Errorf("OverallWinRate = %f, want 50", summary.OverallWinRate)
	}
}

func TestAnalyzeOrderIndependence(t *testing.T) {
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 100, 10, 1, "2025-06-02 09:30:00"),
		fill("AAPL", models.SideSell, 40, 12, 1, "2025-06-02 10:15:00"),
		fill("AAPL", models.SideSell, 60, 9, 1, "2025-06-02 11:00:00"),
		fill("MSFT", models.SideSell, 50, 200, 2, "2025-06-02 09:45:00"),
		fill("MSFT", models.SideBuy, 50, 190, 2, "2025-06-02 14:30:00"),
		fill("TSLA", models.SideBuy, 5, 300, 1, "2025-06-03 10:00:00"),
		fill("TSLA", models.SideSell, 5, 310, 1, "2025-06-03 15:30:00"),
		fill("NVDA", models.SideBuy, 7, 120, 1, "2025-06-03 12:20:00"),
	}

	want, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	wantJSON := summaryJSON(t, want)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]models.TradeRecord, len(trades))
		copy(shuffled, trades)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got, err := Analyze(shuffled)
		if err != nil {
			t.Fatalf("Analyze(shuffled) error: %v", err)
		}
		if !bytes.Equal(summaryJSON(t, got), wantJSON) {
			t.Fatalf("trial %d: shuffled input changed the summary", trial)
		}
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 100, 10, 1, "2025-06-02 09:30:00"),
		fill("AAPL", models.SideSell, 100, 12, 1, "2025-06-02 10:15:00"),
		fill("MSFT", models.SideSell, 50, 200, 2, "2025-06-03 09:45:00"),
		fill("MSFT", models.SideBuy, 50, 190, 2, "2025-06-03 14:30:00"),
		fill("NVDA", models.SideBuy, 7, 120, 1, "2025-06-03 12:20:00"),
	}

	first, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	second, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze again error: %v", err)
	}

	if !bytes.Equal(summaryJSON(t, first), summaryJSON(t, second)) {
		t.Fatal("repeated analysis of the same trades changed the summary")
	}
}

func TestAnalyzeParallelMatchesSequential(t *testing.T) {
	var trades []models.TradeRecord
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 10; day++ {
		ts := base.AddDate(0, 0, day)
		for _, sym := range []string{"AAPL", "MSFT", "TSLA"} {
			buy := fill(sym, models.SideBuy, 10, 100, 1, ts.Add(10*time.Hour).Format(models.TimeLayout))
			sell := fill(sym, models.SideSell, 10, 101, 1, ts.Add(14*time.Hour).Format(models.TimeLayout))
			trades = append(trades, buy, sell)
		}
	}

	sequential, err := NewAnalyzer().Analyze(trades)
	if err != nil {
		t.Fatalf("sequential Analyze error: %v", err)
	}
	parallel, err := NewAnalyzer(WithWorkers(4)).Analyze(trades)
	if err != nil {
		t.Fatalf("parallel Analyze error: %v", err)
	}

	if !bytes.Equal(summaryJSON(t, sequential), summaryJSON(t, parallel)) {
		t.Fatal("parallel and sequential summaries differ")
	}
}

func TestAnalyzeRejectsInvalidTrade(t *testing.T) {
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 100, 10, 1, "2025-06-02 09:30:00"),
		fill("", models.SideSell, 100, 12, 1, "2025-06-02 10:15:00"),
	}

	_, err := Analyze(trades)
	if err == nil {
		t.Fatal("Analyze accepted a trade with no symbol")
	}
	if !errors.Is(err, apperrors.ErrInvalidTrade) {
		t.Errorf("error %v does not wrap ErrInvalidTrade", err)
	}
	var verr *apperrors.TradeValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %v is not a TradeValidationError", err)
	}
	if verr.Index != 1 {
		t.Errorf("Index = %d, want 1", verr.Index)
	}
}

func TestAnalyzeWeekTieBreaksToEarliest(t *testing.T) {
	// Two weeks with identical P&L: the marks settle on the earlier week.
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 10, 10, 0, "2025-06-03 10:00:00"),
		fill("AAPL", models.SideSell, 10, 20, 0, "2025-06-03 11:00:00"),
		fill("MSFT", models.SideBuy, 10, 10, 0, "2025-06-10 10:00:00"),
		fill("MSFT", models.SideSell, 10, 20, 0, "2025-06-10 11:00:00"),
	}

	summary, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if summary.BestWeek == nil || summary.BestWeek.Week != 23 {
		t.Errorf("BestWeek = %+v, want week 23", summary.BestWeek)
	}
	if summary.WorstWeek == nil || summary.WorstWeek.Week != 23 {
		t.Errorf("WorstWeek = %+v, want week 23", summary.WorstWeek)
	}
}

func TestAnalyzeHourTieBreaksToLowest(t *testing.T) {
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 10, 10, 0, "2025-06-02 09:05:00"),
		fill("AAPL", models.SideSell, 10, 11, 0, "2025-06-02 09:40:00"),
		fill("MSFT", models.SideBuy, 10, 20, 0, "2025-06-02 11:05:00"),
		fill("MSFT", models.SideSell, 10, 21, 0, "2025-06-02 11:40:00"),
	}

	summary, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if summary.MostProfitableHour == nil || summary.MostProfitableHour.Hour != 9 {
		t.Errorf("MostProfitableHour = %+v, want hour 9", summary.MostProfitableHour)
	}
	if !summary.MostProfitableHour.PnL.Equal(d(10)) {
		t.Errorf("MostProfitableHour.PnL = %s, want 10", summary.MostProfitableHour.PnL)
	}
}

func TestAnalyzeHourExtremaAcrossDays(t *testing.T) {
	// Hour 10 wins on day one and loses harder on day two; summed across
	// days it is the worst hour while hour 14 is the best.
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 10, 10, 0, "2025-06-02 10:05:00"),
		fill("AAPL", models.SideSell, 10, 12, 0, "2025-06-02 10:40:00"),
		fill("AAPL", models.SideBuy, 10, 10, 0, "2025-06-03 10:05:00"),
		fill("AAPL", models.SideSell, 10, 5, 0, "2025-06-03 10:40:00"),
		fill("MSFT", models.SideBuy, 10, 20, 0, "2025-06-02 14:05:00"),
		fill("MSFT", models.SideSell, 10, 21, 0, "2025-06-02 14:40:00"),
	}

	summary, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if summary.MostProfitableHour == nil || summary.MostProfitableHour.Hour != 14 {
		t.Errorf("MostProfitableHour = %+v, want hour 14", summary.MostProfitableHour)
	}
	if summary.LeastProfitableHour == nil || summary.LeastProfitableHour.Hour != 10 {
		t.Errorf("LeastProfitableHour = %+v, want hour 10", summary.LeastProfitableHour)
	}
	if !summary.LeastProfitableHour.PnL.Equal(d(-30)) {
		t.Errorf("LeastProfitableHour.PnL = %s, want -30", summary.LeastProfitableHour.PnL)
	}
}

func TestAnalyzeCollectsDiagnostics(t *testing.T) {
	trades := []models.TradeRecord{
		// Lone fill: unmatched.
		fill("AAPL", models.SideBuy, 100, 10, 1, "2025-06-02 09:30:00"),
		// Sell 30 more than owned: overselling.
		fill("MSFT", models.SideBuy, 50, 10, 0, "2025-06-02 10:00:00"),
		fill("MSFT", models.SideSell, 80, 11, 0, "2025-06-02 10:30:00"),
		// Two buys, never closed: unclosed.
		fill("TSLA", models.SideBuy, 10, 300, 0, "2025-06-02 11:00:00"),
		fill("TSLA", models.SideBuy, 10, 310, 0, "2025-06-02 11:30:00"),
	}

	sink := &CollectorSink{}
	if _, err := NewAnalyzer(WithSink(sink)).Analyze(trades); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if got := sink.Count(DiagUnmatched); got != 1 {
		t.Errorf("unmatched diagnostics = %d, want 1", got)
	}
	if got := sink.Count(DiagOverselling); got != 1 {
		t.Errorf("overselling diagnostics = %d, want 1", got)
	}
	if got := sink.Count(DiagUnclosed); got != 1 {
		t.Errorf("unclosed diagnostics = %d, want 1", got)
	}
}

func TestAnalyzeOverallWinRate(t *testing.T) {
	trades := []models.TradeRecord{
		fill("AAPL", models.SideBuy, 10, 10, 0, "2025-06-02 10:00:00"),
		fill("AAPL", models.SideSell, 10, 11, 0, "2025-06-02 11:00:00"),
		fill("MSFT", models.SideBuy, 10, 10, 0, "2025-06-03 10:00:00"),
		fill("MSFT", models.SideSell, 10, 11, 0, "2025-06-03 11:00:00"),
		fill("TSLA", models.SideBuy, 10, 10, 0, "2025-06-03 12:00:00"),
		fill("TSLA", models.SideSell, 10, 9, 0, "2025-06-03 13:00:00"),
	}

	summary, err := Analyze(trades)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if summary.TotalTrades != 3 {
		t.Fatalf("TotalTrades = %d, want 3", summary.TotalTrades)
	}
	want := float64(2) / float64(3) * 100
	if summary.OverallWinRate != want {
		t.Errorf("OverallWinRate = %f, want %f", summary.OverallWinRate, want)
	}
}
