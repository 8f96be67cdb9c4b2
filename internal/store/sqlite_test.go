package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tradelens.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSummary(start, end string, pnl float64, trades int) *models.TradingSummary {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		panic(err)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		panic(err)
	}
	return &models.TradingSummary{
		StartDate:       startDate,
		EndDate:         endDate,
		DailySummaries:  []models.DailySummary{},
		WeeklySummaries: []models.WeeklySummary{},
		TotalPnL:        decimal.NewFromFloat(pnl),
		TotalVolume:     decimal.NewFromInt(10000),
		TotalTrades:     trades,
		OverallWinRate:  50,
	}
}

func testDaily(date string, realized float64, trades int) models.DailySummary {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.DailySummary{
		Date:            day,
		TotalTrades:     trades,
		WinningTrades:   trades,
		RealizedPnL:     decimal.NewFromFloat(realized),
		GrossPnL:        decimal.NewFromFloat(realized).Add(decimal.NewFromInt(2)),
		TotalCommission: decimal.NewFromInt(2),
		TotalVolume:     decimal.NewFromInt(1000),
		WinRate:         100,
		AvgWin:          decimal.NewFromFloat(realized),
		AvgLoss:         decimal.Zero,
		LargestWin:      decimal.NewFromFloat(realized),
		LargestLoss:     decimal.Zero,
		SymbolsTraded:   []string{"AAPL"},
		TimeSlots:       []models.TimeSlotPerformance{},
	}
}

func TestSaveRunAssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &models.AnalysisRun{Summary: testSummary("2025-06-02", "2025-06-06", 150.25, 12)}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if run.ID == "" {
		t.Error("expected SaveRun to assign an ID")
	}
	if run.CreatedAt.IsZero() {
		t.Error("expected SaveRun to stamp CreatedAt")
	}
}

func TestSaveRunRejectsNilSummary(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveRun(context.Background(), &models.AnalysisRun{})
	if err == nil {
		t.Fatal("expected error for run without summary")
	}
	var storeErr *apperrors.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %T: %v", err, err)
	}
	if storeErr.Op != "save run" {
		t.Errorf("Op = %q, want %q", storeErr.Op, "save run")
	}
}

func TestLatestRunRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &models.AnalysisRun{Summary: testSummary("2025-06-02", "2025-06-06", 150.25, 12)}
	run.Summary.BestDay = &models.DayPnL{
		Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		PnL:  decimal.NewFromFloat(99.99),
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("ID = %q, want %q", got.ID, run.ID)
	}

	wantJSON, _ := json.Marshal(run.Summary)
	gotJSON, _ := json.Marshal(got.Summary)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("summary mismatch\ngot:  %s\nwant: %s", gotJSON, wantJSON)
	}
	if !got.Summary.TotalPnL.Equal(decimal.NewFromFloat(150.25)) {
		t.Errorf("TotalPnL = %s, want 150.25", got.Summary.TotalPnL)
	}
}

func TestLatestRunEmptyStore(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LatestRun(context.Background())
	if !errors.Is(err, apperrors.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestLatestRunPicksNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	old := &models.AnalysisRun{
		ID:        "run-old",
		CreatedAt: base,
		Summary:   testSummary("2025-06-02", "2025-06-03", 10, 2),
	}
	fresh := &models.AnalysisRun{
		ID:        "run-new",
		CreatedAt: base.Add(time.Hour),
		Summary:   testSummary("2025-06-02", "2025-06-06", 20, 4),
	}
	if err := store.SaveRun(ctx, old); err != nil {
		t.Fatalf("SaveRun old: %v", err)
	}
	if err := store.SaveRun(ctx, fresh); err != nil {
		t.Fatalf("SaveRun fresh: %v", err)
	}

	got, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if got.ID != "run-new" {
		t.Errorf("ID = %q, want run-new", got.ID)
	}
}

func TestListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	for i, pnl := range []float64{10.5, -20.25, 30} {
		run := &models.AnalysisRun{
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Summary:   testSummary("2025-06-02", "2025-06-06", pnl, i+1),
		}
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
	}

	infos, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("len(infos) = %d, want 3", len(infos))
	}
	if !infos[0].TotalPnL.Equal(decimal.NewFromInt(30)) {
		t.Errorf("newest TotalPnL = %s, want 30", infos[0].TotalPnL)
	}
	if infos[0].TotalTrades != 3 {
		t.Errorf("newest TotalTrades = %d, want 3", infos[0].TotalTrades)
	}
	wantStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !infos[0].StartDate.Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", infos[0].StartDate, wantStart)
	}
	for i := 1; i < len(infos); i++ {
		if infos[i].CreatedAt.After(infos[i-1].CreatedAt) {
			t.Errorf("runs not newest-first at index %d", i)
		}
	}

	limited, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("len(limited) = %d, want 2", len(limited))
	}
	if !limited[0].TotalPnL.Equal(decimal.NewFromInt(30)) {
		t.Errorf("limit kept wrong runs, newest TotalPnL = %s", limited[0].TotalPnL)
	}
}

func TestSaveDailySummariesUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testDaily("2025-06-02", 100, 2)
	if err := store.SaveDailySummaries(ctx, []models.DailySummary{first}); err != nil {
		t.Fatalf("SaveDailySummaries: %v", err)
	}

	second := testDaily("2025-06-02", 250.75, 5)
	if err := store.SaveDailySummaries(ctx, []models.DailySummary{second}); err != nil {
		t.Fatalf("SaveDailySummaries update: %v", err)
	}

	dailies, err := store.DailySummaries(ctx, SummaryFilter{})
	if err != nil {
		t.Fatalf("DailySummaries: %v", err)
	}
	if len(dailies) != 1 {
		t.Fatalf("len(dailies) = %d, want 1", len(dailies))
	}
	if !dailies[0].RealizedPnL.Equal(decimal.NewFromFloat(250.75)) {
		t.Errorf("RealizedPnL = %s, want 250.75", dailies[0].RealizedPnL)
	}
	if dailies[0].TotalTrades != 5 {
		t.Errorf("TotalTrades = %d, want 5", dailies[0].TotalTrades)
	}
}

func TestDailySummariesAscendingAndFiltered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Deliberately unsorted insert order.
	dailies := []models.DailySummary{
		testDaily("2025-06-04", 30, 1),
		testDaily("2025-06-02", 10, 1),
		testDaily("2025-06-06", 50, 1),
		testDaily("2025-06-03", 20, 1),
		testDaily("2025-06-05", 40, 1),
	}
	if err := store.SaveDailySummaries(ctx, dailies); err != nil {
		t.Fatalf("SaveDailySummaries: %v", err)
	}

	all, err := store.DailySummaries(ctx, SummaryFilter{})
	if err != nil {
		t.Fatalf("DailySummaries: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len(all) = %d, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i].Date.After(all[i-1].Date) {
			t.Errorf("dates not ascending at index %d: %v then %v", i, all[i-1].Date, all[i].Date)
		}
	}

	ranged, err := store.DailySummaries(ctx, SummaryFilter{
		StartDate: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("DailySummaries ranged: %v", err)
	}
	if len(ranged) != 3 {
		t.Fatalf("len(ranged) = %d, want 3", len(ranged))
	}
	if !ranged[0].Date.Equal(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ranged[0].Date = %v, want 2025-06-03", ranged[0].Date)
	}

	// Limit keeps the most recent days, still returned oldest first.
	recent, err := store.DailySummaries(ctx, SummaryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("DailySummaries limit: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	if !recent[0].Date.Equal(time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("recent[0].Date = %v, want 2025-06-05", recent[0].Date)
	}
	if !recent[1].Date.Equal(time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("recent[1].Date = %v, want 2025-06-06", recent[1].Date)
	}
}

func TestDailySummariesEmptyStore(t *testing.T) {
	store := newTestStore(t)

	dailies, err := store.DailySummaries(context.Background(), SummaryFilter{})
	if err != nil {
		t.Fatalf("DailySummaries: %v", err)
	}
	if len(dailies) != 0 {
		t.Errorf("len(dailies) = %d, want 0", len(dailies))
	}
}

func TestMarkProcessedAndNewFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.MarkProcessed(ctx, []string{"b.csv", "a.csv"}); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	names, err := store.ProcessedFiles(ctx)
	if err != nil {
		t.Fatalf("ProcessedFiles: %v", err)
	}
	if len(names) != 2 || names[0] != "a.csv" || names[1] != "b.csv" {
		t.Fatalf("ProcessedFiles = %v, want [a.csv b.csv]", names)
	}

	fresh, err := store.NewFiles(ctx, []string{"c.csv", "a.csv", "d.csv", "b.csv"})
	if err != nil {
		t.Fatalf("NewFiles: %v", err)
	}
	if len(fresh) != 2 || fresh[0] != "c.csv" || fresh[1] != "d.csv" {
		t.Fatalf("NewFiles = %v, want [c.csv d.csv]", fresh)
	}

	// Re-marking a known file is a no-op, not an error.
	if err := store.MarkProcessed(ctx, []string{"a.csv"}); err != nil {
		t.Fatalf("MarkProcessed again: %v", err)
	}
	names, err = store.ProcessedFiles(ctx)
	if err != nil {
		t.Fatalf("ProcessedFiles: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("len(names) = %d after re-mark, want 2", len(names))
	}
}

func TestNewFilesOnEmptyStore(t *testing.T) {
	store := newTestStore(t)

	fresh, err := store.NewFiles(context.Background(), []string{"x.csv", "y.csv"})
	if err != nil {
		t.Fatalf("NewFiles: %v", err)
	}
	if len(fresh) != 2 || fresh[0] != "x.csv" || fresh[1] != "y.csv" {
		t.Fatalf("NewFiles = %v, want [x.csv y.csv]", fresh)
	}
}

func TestMarkProcessedEmptySlice(t *testing.T) {
	store := newTestStore(t)

	if err := store.MarkProcessed(context.Background(), nil); err != nil {
		t.Fatalf("MarkProcessed(nil): %v", err)
	}
}
