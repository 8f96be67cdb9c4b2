// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tradelens/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Runs
	SaveRun(ctx context.Context, run *models.AnalysisRun) error
	LatestRun(ctx context.Context) (*models.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)

	// Daily summaries
	SaveDailySummaries(ctx context.Context, dailies []models.DailySummary) error
	DailySummaries(ctx context.Context, filter SummaryFilter) ([]models.DailySummary, error)

	// Processed source files
	MarkProcessed(ctx context.Context, names []string) error
	ProcessedFiles(ctx context.Context) ([]string, error)
	NewFiles(ctx context.Context, candidates []string) ([]string, error)

	// Lifecycle
	Close() error
}

// RunInfo is the listing projection of a stored run, shown in history views
// without unmarshaling the full summary.
type RunInfo struct {
	ID          string
	CreatedAt   time.Time
	StartDate   time.Time
	EndDate     time.Time
	TotalPnL    decimal.Decimal
	TotalTrades int
}

// SummaryFilter restricts a daily-summary query. Zero dates mean unbounded;
// a positive Limit keeps only the most recent days. Results are always
// returned in ascending date order.
type SummaryFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
