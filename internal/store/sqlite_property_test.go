package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"tradelens/internal/models"
)

// Property: For any batch of daily summaries, saving them and reading them
// back through the date-range filter produces the same summaries. Decimals
// serialize to exact strings, so byte-equal JSON means value-equal data.
func TestProperty_DailySummaryRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "property.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("Daily round-trip: save then load preserves every field", prop.ForAll(
		func(count int, baseCents int64, seed int) bool {
			ctx := context.Background()
			dailies := generateTestDailies(count, baseCents, seed)

			if err := store.SaveDailySummaries(ctx, dailies); err != nil {
				t.Logf("Failed to save dailies: %v", err)
				return false
			}

			loaded, err := store.DailySummaries(ctx, SummaryFilter{
				StartDate: dailies[0].Date,
				EndDate:   dailies[len(dailies)-1].Date,
			})
			if err != nil {
				t.Logf("Failed to load dailies: %v", err)
				return false
			}
			if len(loaded) != len(dailies) {
				t.Logf("Count mismatch: expected %d, got %d", len(dailies), len(loaded))
				return false
			}

			for i := range dailies {
				origJSON, _ := json.Marshal(dailies[i])
				loadedJSON, _ := json.Marshal(loaded[i])
				if string(origJSON) != string(loadedJSON) {
					t.Logf("Daily mismatch at index %d:\noriginal: %s\nloaded:   %s", i, origJSON, loadedJSON)
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 15),
		gen.Int64Range(-500000, 500000),
		gen.IntRange(0, 1000),
	))

	properties.Property("Upsert: saving the same days twice keeps one row per date", prop.ForAll(
		func(count int, baseCents int64, seed int) bool {
			ctx := context.Background()
			dailies := generateTestDailies(count, baseCents, seed)

			if err := store.SaveDailySummaries(ctx, dailies); err != nil {
				return false
			}
			if err := store.SaveDailySummaries(ctx, dailies); err != nil {
				return false
			}

			loaded, err := store.DailySummaries(ctx, SummaryFilter{
				StartDate: dailies[0].Date,
				EndDate:   dailies[len(dailies)-1].Date,
			})
			if err != nil {
				return false
			}
			return len(loaded) == len(dailies)
		},
		gen.IntRange(1, 15),
		gen.Int64Range(-500000, 500000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

// Property: For any summary, SaveRun followed by LatestRun returns that
// summary unchanged. CreatedAt is forced strictly increasing so "latest"
// is always the run just written.
func TestProperty_RunRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs_property.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	clock := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	properties.Property("Run round-trip: LatestRun returns the saved summary", prop.ForAll(
		func(pnlCents int64, trades int, days int) bool {
			ctx := context.Background()
			clock = clock.Add(time.Second)

			start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
			summary := &models.TradingSummary{
				StartDate:       start,
				EndDate:         start.AddDate(0, 0, days),
				DailySummaries:  []models.DailySummary{},
				WeeklySummaries: []models.WeeklySummary{},
				TotalPnL:        decimal.New(pnlCents, -2),
				TotalVolume:     decimal.New(int64(trades)*10000, -2),
				TotalTrades:     trades,
				OverallWinRate:  float64(trades % 101),
			}
			if trades%2 == 0 {
				summary.BestDay = &models.DayPnL{Date: start, PnL: decimal.New(pnlCents, -2)}
			}

			run := &models.AnalysisRun{CreatedAt: clock, Summary: summary}
			if err := store.SaveRun(ctx, run); err != nil {
				t.Logf("Failed to save run: %v", err)
				return false
			}

			latest, err := store.LatestRun(ctx)
			if err != nil {
				t.Logf("Failed to load latest run: %v", err)
				return false
			}
			if latest.ID != run.ID {
				t.Logf("ID mismatch: expected %s, got %s", run.ID, latest.ID)
				return false
			}

			wantJSON, _ := json.Marshal(summary)
			gotJSON, _ := json.Marshal(latest.Summary)
			if string(gotJSON) != string(wantJSON) {
				t.Logf("Summary mismatch:\nsaved:  %s\nloaded: %s", wantJSON, gotJSON)
				return false
			}
			return true
		},
		gen.Int64Range(-10000000, 10000000),
		gen.IntRange(0, 500),
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t)
}

// generateTestDailies builds count consecutive daily summaries starting at a
// fixed Monday, with exact cent-scale decimals derived from the inputs.
func generateTestDailies(count int, baseCents int64, seed int) []models.DailySummary {
	dailies := make([]models.DailySummary, count)
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	symbols := []string{"AAPL", "MSFT", "NVDA"}

	for i := 0; i < count; i++ {
		realized := decimal.New(baseCents+int64(i)*137, -2)
		commission := decimal.New(int64(i+1)*25, -2)
		trades := (seed + i) % 6
		wins := trades / 2
		losses := trades - wins

		winRate := 0.0
		if trades > 0 {
			winRate = float64(wins) / float64(trades) * 100
		}

		dailies[i] = models.DailySummary{
			Date:            base.AddDate(0, 0, i),
			TotalTrades:     trades,
			WinningTrades:   wins,
			LosingTrades:    losses,
			RealizedPnL:     realized,
			GrossPnL:        realized.Add(commission),
			TotalCommission: commission,
			TotalVolume:     decimal.New(int64(1000+i*250), -2),
			WinRate:         winRate,
			AvgWin:          decimal.New(int64(seed%300)+1, -2),
			AvgLoss:         decimal.New(-(int64(seed%200) + 1), -2),
			LargestWin:      decimal.New(int64(seed%900)+1, -2),
			LargestLoss:     decimal.New(-(int64(seed%700) + 1), -2),
			SymbolsTraded:   symbols[:1+i%len(symbols)],
			TimeSlots: []models.TimeSlotPerformance{
				{Hour: 9 + i%7, Trades: trades, PnL: realized, WinRate: winRate},
			},
		}
	}

	return dailies
}
