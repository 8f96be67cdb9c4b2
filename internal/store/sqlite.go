package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
)

const dateLayout = "2006-01-02"

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Analysis runs: one row per completed analysis, full summary as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		total_pnl TEXT NOT NULL,
		total_trades INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	-- Daily summaries, keyed by UTC date; decimals stored as exact text
	CREATE TABLE IF NOT EXISTS daily_summaries (
		date TEXT PRIMARY KEY,
		total_trades INTEGER NOT NULL,
		winning_trades INTEGER NOT NULL,
		losing_trades INTEGER NOT NULL,
		realized_pnl TEXT NOT NULL,
		gross_pnl TEXT NOT NULL,
		total_commission TEXT NOT NULL,
		total_volume TEXT NOT NULL,
		win_rate REAL NOT NULL,
		summary_json TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Source files already folded into the store
	CREATE TABLE IF NOT EXISTS processed_files (
		file_name TEXT PRIMARY KEY,
		processed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists a completed analysis. A missing ID is assigned and a
// missing creation time is stamped, so callers can pass a bare summary.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *models.AnalysisRun) error {
	if run == nil || run.Summary == nil {
		return apperrors.NewStoreError("save run", fmt.Errorf("nil run or summary"))
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return apperrors.NewStoreError("save run", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, start_date, end_date, total_pnl, total_trades, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt,
		run.Summary.StartDate.Format(dateLayout),
		run.Summary.EndDate.Format(dateLayout),
		run.Summary.TotalPnL.String(),
		run.Summary.TotalTrades,
		string(summaryJSON),
	)
	if err != nil {
		return apperrors.NewStoreError("save run", err)
	}
	return nil
}

// LatestRun returns the most recently created run, or ErrNoData when the
// store has never seen one.
func (s *SQLiteStore) LatestRun(ctx context.Context) (*models.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, summary_json
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)

	var run models.AnalysisRun
	var summaryJSON string
	if err := row.Scan(&run.ID, &run.CreatedAt, &summaryJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNoData
		}
		return nil, apperrors.NewStoreError("latest run", err)
	}

	run.Summary = &models.TradingSummary{}
	if err := json.Unmarshal([]byte(summaryJSON), run.Summary); err != nil {
		return nil, apperrors.NewStoreError("latest run", err)
	}
	return &run, nil
}

// ListRuns returns run listings newest first. A non-positive limit returns
// every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	query := `
		SELECT id, created_at, start_date, end_date, total_pnl, total_trades
		FROM runs
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("list runs", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		var startDate, endDate, totalPnL string
		if err := rows.Scan(&info.ID, &info.CreatedAt, &startDate, &endDate, &totalPnL, &info.TotalTrades); err != nil {
			return nil, apperrors.NewStoreError("list runs", err)
		}
		if info.StartDate, err = time.ParseInLocation(dateLayout, startDate, time.UTC); err != nil {
			return nil, apperrors.NewStoreError("list runs", err)
		}
		if info.EndDate, err = time.ParseInLocation(dateLayout, endDate, time.UTC); err != nil {
			return nil, apperrors.NewStoreError("list runs", err)
		}
		if info.TotalPnL, err = decimal.NewFromString(totalPnL); err != nil {
			return nil, apperrors.NewStoreError("list runs", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// SaveDailySummaries upserts daily summaries keyed by date, so re-running
// an analysis over an overlapping range replaces rather than duplicates.
func (s *SQLiteStore) SaveDailySummaries(ctx context.Context, dailies []models.DailySummary) error {
	if len(dailies) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("save daily summaries", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_summaries (
			date, total_trades, winning_trades, losing_trades,
			realized_pnl, gross_pnl, total_commission, total_volume,
			win_rate, summary_json, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			total_trades = excluded.total_trades,
			winning_trades = excluded.winning_trades,
			losing_trades = excluded.losing_trades,
			realized_pnl = excluded.realized_pnl,
			gross_pnl = excluded.gross_pnl,
			total_commission = excluded.total_commission,
			total_volume = excluded.total_volume,
			win_rate = excluded.win_rate,
			summary_json = excluded.summary_json,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return apperrors.NewStoreError("save daily summaries", err)
	}
	defer stmt.Close()

	for i := range dailies {
		d := &dailies[i]
		summaryJSON, err := json.Marshal(d)
		if err != nil {
			return apperrors.NewStoreError("save daily summaries", err)
		}
		_, err = stmt.ExecContext(ctx,
			d.Date.Format(dateLayout),
			d.TotalTrades,
			d.WinningTrades,
			d.LosingTrades,
			d.RealizedPnL.String(),
			d.GrossPnL.String(),
			d.TotalCommission.String(),
			d.TotalVolume.String(),
			d.WinRate,
			string(summaryJSON),
		)
		if err != nil {
			return apperrors.NewStoreError("save daily summaries", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("save daily summaries", err)
	}
	return nil
}

// DailySummaries returns stored dailies in ascending date order. With a
// positive Limit only the most recent days inside the range are kept.
func (s *SQLiteStore) DailySummaries(ctx context.Context, filter SummaryFilter) ([]models.DailySummary, error) {
	query := "SELECT summary_json FROM daily_summaries WHERE 1=1"
	args := []interface{}{}

	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate.Format(dateLayout))
	}
	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate.Format(dateLayout))
	}

	query += " ORDER BY date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("daily summaries", err)
	}
	defer rows.Close()

	var dailies []models.DailySummary
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, apperrors.NewStoreError("daily summaries", err)
		}
		var d models.DailySummary
		if err := json.Unmarshal([]byte(summaryJSON), &d); err != nil {
			return nil, apperrors.NewStoreError("daily summaries", err)
		}
		dailies = append(dailies, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first query order flips back to ascending for callers.
	for i, j := 0, len(dailies)-1; i < j; i, j = i+1, j-1 {
		dailies[i], dailies[j] = dailies[j], dailies[i]
	}
	return dailies, nil
}

// MarkProcessed records source files as folded into the store. Re-marking
// a known file is a no-op.
func (s *SQLiteStore) MarkProcessed(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("mark processed", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO processed_files (file_name, processed_at) VALUES (?, ?)
	`)
	if err != nil {
		return apperrors.NewStoreError("mark processed", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, name, now); err != nil {
			return apperrors.NewStoreError("mark processed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("mark processed", err)
	}
	return nil
}

// ProcessedFiles returns every recorded file name in lexical order.
func (s *SQLiteStore) ProcessedFiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_name FROM processed_files ORDER BY file_name ASC
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("processed files", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewStoreError("processed files", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// NewFiles filters candidates down to those not yet processed, preserving
// the candidates' order.
func (s *SQLiteStore) NewFiles(ctx context.Context, candidates []string) ([]string, error) {
	processed, err := s.ProcessedFiles(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(processed))
	for _, name := range processed {
		seen[name] = struct{}{}
	}

	var fresh []string
	for _, name := range candidates {
		if _, ok := seen[name]; !ok {
			fresh = append(fresh, name)
		}
	}
	return fresh, nil
}
